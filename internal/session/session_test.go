package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"matreshka-vpn/internal/database"
	"matreshka-vpn/internal/policy"
)

func setupSessionTest(t *testing.T) (*database.Database, *Manager) {
	db, err := database.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Seed())

	return db, NewManager(db, policy.NewEngine(), zap.NewNop())
}

func createTestUser(t *testing.T, db *database.Database, telegramID int64, premium bool) *database.User {
	user := &database.User{
		TelegramID: telegramID,
		Username:   fmt.Sprintf("user%d", telegramID),
		IsPremium:  premium,
		LastLogin:  time.Now(),
	}
	if premium {
		until := time.Now().Add(30 * 24 * time.Hour)
		user.SubscriptionUntil = &until
	}
	require.NoError(t, db.CreateUser(user))
	return user
}

func countActive(t *testing.T, db *database.Database, userID uint) int64 {
	var count int64
	err := db.Model(&database.Connection{}).
		Where("user_id = ? AND disconnected_at IS NULL", userID).
		Count(&count).Error
	require.NoError(t, err)
	return count
}

func TestManager_Connect(t *testing.T) {
	t.Run("should create an active session", func(t *testing.T) {
		db, mgr := setupSessionTest(t)
		user := createTestUser(t, db, 100, false)

		server, err := db.GetActiveServer("minsk-1")
		require.NoError(t, err)
		require.NoError(t, mgr.Connect(user, server))

		conn, err := db.GetActiveConnection(user.ID)
		require.NoError(t, err)
		assert.Equal(t, "minsk-1", conn.ServerID)
		assert.Nil(t, conn.DisconnectedAt)
		assert.Nil(t, conn.Duration)
	})

	t.Run("should supersede the previous session leaving exactly one active", func(t *testing.T) {
		db, mgr := setupSessionTest(t)
		user := createTestUser(t, db, 101, false)

		minsk, err := db.GetActiveServer("minsk-1")
		require.NoError(t, err)
		almaty, err := db.GetActiveServer("almaty-1")
		require.NoError(t, err)

		require.NoError(t, mgr.Connect(user, minsk))
		first, err := db.GetActiveConnection(user.ID)
		require.NoError(t, err)

		require.NoError(t, mgr.Connect(user, almaty))

		assert.EqualValues(t, 1, countActive(t, db, user.ID))

		active, err := db.GetActiveConnection(user.ID)
		require.NoError(t, err)
		assert.Equal(t, "almaty-1", active.ServerID)

		// The superseded session is closed with duration 0, not elapsed time.
		var closed database.Connection
		require.NoError(t, db.First(&closed, first.ID).Error)
		require.NotNil(t, closed.DisconnectedAt)
		require.NotNil(t, closed.Duration)
		assert.EqualValues(t, 0, *closed.Duration)
	})

	t.Run("should deny free user on premium server without touching state", func(t *testing.T) {
		db, mgr := setupSessionTest(t)
		user := createTestUser(t, db, 102, false)

		london, err := db.GetActiveServer("london-1")
		require.NoError(t, err)

		err = mgr.Connect(user, london)
		var denied *AccessDeniedError
		require.ErrorAs(t, err, &denied)
		assert.Equal(t, "Premium subscription required", denied.Reason)

		assert.EqualValues(t, 0, countActive(t, db, user.ID))
	})

	t.Run("should allow premium user on premium server", func(t *testing.T) {
		db, mgr := setupSessionTest(t)
		user := createTestUser(t, db, 103, true)

		london, err := db.GetActiveServer("london-1")
		require.NoError(t, err)
		require.NoError(t, mgr.Connect(user, london))
		assert.EqualValues(t, 1, countActive(t, db, user.ID))
	})

	t.Run("should keep exactly one active session under racing connects", func(t *testing.T) {
		db, mgr := setupSessionTest(t)
		user := createTestUser(t, db, 104, false)

		serverIDs := []string{"minsk-1", "almaty-1", "tashkent-1", "yerevan-1", "tbilisi-1"}
		servers := make([]*database.Server, len(serverIDs))
		for i, id := range serverIDs {
			server, err := db.GetActiveServer(id)
			require.NoError(t, err)
			servers[i] = server
		}

		const racers = 20
		errs := make(chan error, racers)
		var wg sync.WaitGroup
		for i := 0; i < racers; i++ {
			wg.Add(1)
			go func(server *database.Server) {
				defer wg.Done()
				errs <- mgr.Connect(user, server)
			}(servers[i%len(servers)])
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			require.NoError(t, err)
		}
		assert.EqualValues(t, 1, countActive(t, db, user.ID))

		// Every superseded session must have been closed on the way.
		var closed int64
		require.NoError(t, db.Model(&database.Connection{}).
			Where("user_id = ? AND disconnected_at IS NOT NULL", user.ID).
			Count(&closed).Error)
		assert.EqualValues(t, racers-1, closed)
	})
}

func TestManager_Disconnect(t *testing.T) {
	t.Run("should close the active session with a non-negative duration", func(t *testing.T) {
		db, mgr := setupSessionTest(t)
		user := createTestUser(t, db, 110, false)

		minsk, err := db.GetActiveServer("minsk-1")
		require.NoError(t, err)
		require.NoError(t, mgr.Connect(user, minsk))

		require.NoError(t, mgr.Disconnect(user))

		assert.EqualValues(t, 0, countActive(t, db, user.ID))

		var conns []database.Connection
		require.NoError(t, db.Where("user_id = ?", user.ID).Find(&conns).Error)
		require.Len(t, conns, 1)
		require.NotNil(t, conns[0].DisconnectedAt)
		require.NotNil(t, conns[0].Duration)
		assert.GreaterOrEqual(t, *conns[0].Duration, int64(0))
	})

	t.Run("should be a no-op without an active session", func(t *testing.T) {
		db, mgr := setupSessionTest(t)
		user := createTestUser(t, db, 111, false)

		require.NoError(t, mgr.Disconnect(user))

		var count int64
		require.NoError(t, db.Model(&database.Connection{}).Where("user_id = ?", user.ID).Count(&count).Error)
		assert.EqualValues(t, 0, count)
	})

	t.Run("should be idempotent after a real disconnect", func(t *testing.T) {
		db, mgr := setupSessionTest(t)
		user := createTestUser(t, db, 112, false)

		minsk, err := db.GetActiveServer("minsk-1")
		require.NoError(t, err)
		require.NoError(t, mgr.Connect(user, minsk))
		require.NoError(t, mgr.Disconnect(user))

		var before database.Connection
		require.NoError(t, db.Where("user_id = ?", user.ID).First(&before).Error)

		require.NoError(t, mgr.Disconnect(user))

		var after database.Connection
		require.NoError(t, db.Where("user_id = ?", user.ID).First(&after).Error)
		assert.Equal(t, before.DisconnectedAt.Unix(), after.DisconnectedAt.Unix())
	})
}

func TestManager_Stats(t *testing.T) {
	t.Run("should count open sessions as zero duration", func(t *testing.T) {
		db, mgr := setupSessionTest(t)
		user := createTestUser(t, db, 120, false)

		now := time.Now()
		closedAt := now.Add(-time.Minute)
		sixty := int64(60)
		require.NoError(t, db.CreateConnection(&database.Connection{
			UserID:         user.ID,
			ServerID:       "minsk-1",
			ConnectedAt:    now.Add(-2 * time.Minute),
			DisconnectedAt: &closedAt,
			Duration:       &sixty,
		}))
		require.NoError(t, db.CreateConnection(&database.Connection{
			UserID:      user.ID,
			ServerID:    "almaty-1",
			ConnectedAt: now.Add(-time.Minute),
		}))

		stats, err := mgr.Stats(user)
		require.NoError(t, err)
		assert.EqualValues(t, 2, stats.TotalConnections)
		assert.EqualValues(t, 60, stats.TotalTime)
		assert.EqualValues(t, 2, stats.ServersUsed)
	})

	t.Run("should return at most five recent sessions, newest first", func(t *testing.T) {
		db, mgr := setupSessionTest(t)
		user := createTestUser(t, db, 121, false)

		base := time.Now().Add(-time.Hour)
		for i := 0; i < 7; i++ {
			connectedAt := base.Add(time.Duration(i) * time.Minute)
			closedAt := connectedAt.Add(30 * time.Second)
			thirty := int64(30)
			require.NoError(t, db.CreateConnection(&database.Connection{
				UserID:         user.ID,
				ServerID:       "minsk-1",
				ConnectedAt:    connectedAt,
				DisconnectedAt: &closedAt,
				Duration:       &thirty,
			}))
		}

		stats, err := mgr.Stats(user)
		require.NoError(t, err)
		assert.EqualValues(t, 7, stats.TotalConnections)
		require.Len(t, stats.RecentConnections, 5)

		for i := 1; i < len(stats.RecentConnections); i++ {
			assert.True(t, !stats.RecentConnections[i-1].ConnectedAt.Before(stats.RecentConnections[i].ConnectedAt))
		}
		assert.Equal(t, "Minsk #1", stats.RecentConnections[0].ServerName)
		assert.Equal(t, "Belarus", stats.RecentConnections[0].Country)
	})
}

func TestManager_Active(t *testing.T) {
	db, mgr := setupSessionTest(t)
	user := createTestUser(t, db, 130, false)

	conn, err := mgr.Active(user)
	require.NoError(t, err)
	assert.Nil(t, conn)

	minsk, err := db.GetActiveServer("minsk-1")
	require.NoError(t, err)
	require.NoError(t, mgr.Connect(user, minsk))

	conn, err = mgr.Active(user)
	require.NoError(t, err)
	require.NotNil(t, conn)
	assert.Equal(t, "minsk-1", conn.ServerID)
	assert.Equal(t, "Minsk #1", conn.Server.Name)
}
