package subscription

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"matreshka-vpn/internal/database"
)

func setupSubscriptionTest(t *testing.T) (*database.Database, *Manager, *database.User) {
	db, err := database.New(":memory:")
	require.NoError(t, err)

	user := &database.User{TelegramID: 100, Username: "alice", LastLogin: time.Now()}
	require.NoError(t, db.CreateUser(user))

	return db, NewManager(db, zap.NewNop()), user
}

func TestManager_Activate(t *testing.T) {
	t.Run("should activate monthly plan for thirty days", func(t *testing.T) {
		db, mgr, user := setupSubscriptionTest(t)

		until, err := mgr.Activate(user, "monthly")
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), until, 5*time.Second)

		stored, err := db.GetUserByTelegramID(user.TelegramID)
		require.NoError(t, err)
		assert.True(t, stored.IsPremium)
		require.NotNil(t, stored.SubscriptionUntil)
		assert.WithinDuration(t, until, *stored.SubscriptionUntil, time.Second)
	})

	t.Run("should activate yearly plan for a year", func(t *testing.T) {
		_, mgr, user := setupSubscriptionTest(t)

		until, err := mgr.Activate(user, "yearly")
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(365*24*time.Hour), until, 5*time.Second)
	})

	t.Run("should overwrite the previous expiry, not extend it", func(t *testing.T) {
		db, mgr, user := setupSubscriptionTest(t)

		_, err := mgr.Activate(user, "yearly")
		require.NoError(t, err)
		until, err := mgr.Activate(user, "monthly")
		require.NoError(t, err)

		// A yearly followed by a monthly leaves only the monthly window.
		assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), until, 5*time.Second)

		stored, err := db.GetUserByTelegramID(user.TelegramID)
		require.NoError(t, err)
		require.NotNil(t, stored.SubscriptionUntil)
		assert.WithinDuration(t, until, *stored.SubscriptionUntil, time.Second)
	})

	t.Run("should reject unknown plan without mutating the user", func(t *testing.T) {
		db, mgr, user := setupSubscriptionTest(t)

		_, err := mgr.Activate(user, "weekly")
		assert.ErrorIs(t, err, ErrInvalidPlan)

		stored, err := db.GetUserByTelegramID(user.TelegramID)
		require.NoError(t, err)
		assert.False(t, stored.IsPremium)
		assert.Nil(t, stored.SubscriptionUntil)
	})
}
