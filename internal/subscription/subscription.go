// Package subscription manages premium subscription state: plan validation
// and activation with an expiry timestamp.
package subscription

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"matreshka-vpn/internal/database"
)

// ErrInvalidPlan is returned when the requested plan name is unknown.
// Nothing is mutated in that case.
var ErrInvalidPlan = errors.New("invalid plan")

// Plan describes a purchasable subscription tier.
type Plan struct {
	Name string // Plan identifier used on the wire
	Days int    // Subscription length in days
}

// plans is the fixed plan catalog.
var plans = map[string]Plan{
	"monthly": {Name: "monthly", Days: 30},
	"yearly":  {Name: "yearly", Days: 365},
}

// Manager handles subscription activation for users.
type Manager struct {
	db     *database.Database
	logger *zap.Logger
}

// NewManager creates a subscription manager backed by the given database.
// Returns a pointer to the newly created Manager.
func NewManager(db *database.Database, logger *zap.Logger) *Manager {
	return &Manager{db: db, logger: logger}
}

// Activate marks the user premium until now plus the plan duration.
//
// An existing expiry is overwritten, not extended: renewing mid-term restarts
// the clock from now rather than stacking. Inherited product behavior that
// keeps the free/premium gate a plain boolean-plus-date check.
// Returns the new expiry, or ErrInvalidPlan for an unknown plan name.
func (m *Manager) Activate(user *database.User, planName string) (time.Time, error) {
	plan, ok := plans[planName]
	if !ok {
		return time.Time{}, ErrInvalidPlan
	}

	until := time.Now().Add(time.Duration(plan.Days) * 24 * time.Hour)
	if err := m.db.SetSubscription(user.ID, until); err != nil {
		return time.Time{}, fmt.Errorf("failed to activate subscription: %w", err)
	}

	m.logger.Info("subscription activated",
		zap.Int64("telegram_id", user.TelegramID),
		zap.String("plan", plan.Name),
		zap.Time("until", until))
	return until, nil
}
