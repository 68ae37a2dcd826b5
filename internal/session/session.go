// Package session manages the connection-session lifecycle: opening sessions
// subject to access policy, closing them, and aggregating usage statistics.
// It owns the invariant that a user has at most one active session.
package session

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"matreshka-vpn/internal/database"
	"matreshka-vpn/internal/policy"
)

// AccessDeniedError is returned by Connect when the access policy rejects
// the user/server combination. The reason is safe to surface to the client.
type AccessDeniedError struct {
	Reason string
}

func (e *AccessDeniedError) Error() string {
	return e.Reason
}

// Manager coordinates connection sessions for all users.
// Per-user mutexes serialize the close-then-open sequence so racing connect
// requests cannot leave two active sessions behind.
type Manager struct {
	db     *database.Database
	policy *policy.Engine
	logger *zap.Logger
	locks  *userLocks
}

// NewManager creates a session manager backed by the given database and
// policy engine.
// Returns a pointer to the newly created Manager.
func NewManager(db *database.Database, engine *policy.Engine, logger *zap.Logger) *Manager {
	return &Manager{
		db:     db,
		policy: engine,
		logger: logger,
		locks:  newUserLocks(),
	}
}

// Connect opens a session for the user on the server.
//
// The access policy is consulted first; a denial is returned as
// AccessDeniedError without touching any state. On approval, any existing
// active session is closed and a new one inserted, under the user's lock and
// inside one transaction.
func (m *Manager) Connect(user *database.User, server *database.Server) error {
	decision := m.policy.CanConnect(user, server, time.Now())
	if !decision.Allowed {
		m.logger.Info("connect denied",
			zap.Int64("telegram_id", user.TelegramID),
			zap.String("server_id", server.ID),
			zap.String("reason", decision.Reason))
		return &AccessDeniedError{Reason: decision.Reason}
	}

	lock := m.locks.forUser(user.ID)
	lock.Lock()
	defer lock.Unlock()

	now := time.Now()
	err := m.db.Transaction(func(tx *database.Database) error {
		// A superseded session is recorded with duration 0, not elapsed
		// time. Inherited product behavior; disconnect computes the real
		// duration.
		if err := tx.CloseActiveConnections(user.ID, now, 0); err != nil {
			return fmt.Errorf("failed to close previous session: %w", err)
		}
		return tx.CreateConnection(&database.Connection{
			UserID:      user.ID,
			ServerID:    server.ID,
			ConnectedAt: now,
		})
	})
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}

	m.logger.Info("connected",
		zap.Int64("telegram_id", user.TelegramID),
		zap.String("server_id", server.ID))
	return nil
}

// Disconnect closes the user's active session, recording the elapsed whole
// seconds as its duration. A user with no active session is a successful
// no-op, so repeated disconnects are harmless.
func (m *Manager) Disconnect(user *database.User) error {
	lock := m.locks.forUser(user.ID)
	lock.Lock()
	defer lock.Unlock()

	conn, err := m.db.GetActiveConnection(user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to look up active session: %w", err)
	}

	now := time.Now()
	duration := int64(now.Sub(conn.ConnectedAt).Seconds())
	if duration < 0 {
		duration = 0
	}
	if err := m.db.CloseConnection(conn.ID, now, duration); err != nil {
		return fmt.Errorf("failed to close session: %w", err)
	}

	m.logger.Info("disconnected",
		zap.Int64("telegram_id", user.TelegramID),
		zap.String("server_id", conn.ServerID),
		zap.Int64("duration", duration))
	return nil
}

// Active returns the user's active session, or nil when there is none.
func (m *Manager) Active(user *database.User) (*database.Connection, error) {
	conn, err := m.db.GetActiveConnection(user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up active session: %w", err)
	}
	return conn, nil
}

// RecentConnection is one entry of the recent-session history in Stats.
type RecentConnection struct {
	ServerName  string    `json:"server_name"`
	Country     string    `json:"country"`
	ConnectedAt time.Time `json:"connected_at"`
	Duration    int64     `json:"duration"` // Seconds, 0 while the session is still open
}

// Stats aggregates a user's connection history.
type Stats struct {
	TotalConnections  int64              `json:"total_connections"`
	TotalTime         int64              `json:"total_time"` // Summed seconds across closed sessions
	ServersUsed       int64              `json:"servers_used"`
	RecentConnections []RecentConnection `json:"recent_connections"`
}

// recentLimit is how many history entries Stats returns.
const recentLimit = 5

// Stats computes the user's aggregate usage and their most recent sessions,
// newest first. Sessions without a recorded duration count as 0 seconds.
func (m *Manager) Stats(user *database.User) (*Stats, error) {
	usage, err := m.db.GetUsageStats(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate usage: %w", err)
	}

	conns, err := m.db.GetRecentConnections(user.ID, recentLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent sessions: %w", err)
	}

	recent := make([]RecentConnection, 0, len(conns))
	for _, conn := range conns {
		var duration int64
		if conn.Duration != nil {
			duration = *conn.Duration
		}
		recent = append(recent, RecentConnection{
			ServerName:  conn.Server.Name,
			Country:     conn.Server.Country,
			ConnectedAt: conn.ConnectedAt,
			Duration:    duration,
		})
	}

	return &Stats{
		TotalConnections:  usage.TotalConnections,
		TotalTime:         usage.TotalTime,
		ServersUsed:       usage.ServersUsed,
		RecentConnections: recent,
	}, nil
}
