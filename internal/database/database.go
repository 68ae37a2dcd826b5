package database

import (
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database wraps a GORM database instance and provides high-level operations
// for the VPN backend's data. It encapsulates all database interactions for
// users, the server catalog, and connection sessions.
type Database struct {
	*gorm.DB
}

// New creates a new Database instance and establishes a connection to SQLite.
// It automatically runs database migrations for all defined models.
// The dbPath parameter specifies the path to the SQLite database file;
// ":memory:" gives an in-memory database for tests.
// Returns a Database instance or an error if connection or migration fails.
func New(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&User{}, &Server{}, &Connection{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Database{DB: db}, nil
}

// Transaction runs fn inside a single database transaction. The Database
// passed to fn is scoped to that transaction; returning an error rolls
// everything back.
func (db *Database) Transaction(fn func(tx *Database) error) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		return fn(&Database{DB: tx})
	})
}

// CreateUser inserts a new user record into the database.
// Returns an error if the creation fails due to validation or database constraints.
func (db *Database) CreateUser(user *User) error {
	return db.Create(user).Error
}

// GetUserByTelegramID retrieves a user by their Telegram account identifier.
// This is the lookup used by every API operation, since requests carry the
// Telegram ID rather than the internal primary key.
// Returns the user record and an error if the user is not found or query fails.
func (db *Database) GetUserByTelegramID(telegramID int64) (*User, error) {
	var user User
	err := db.Where("telegram_id = ?", telegramID).First(&user).Error
	return &user, err
}

// UpdateUserLastLogin updates the last login timestamp for a user.
// This is called after every successful authentication.
// Returns an error if the update fails.
func (db *Database) UpdateUserLastLogin(userID uint, at time.Time) error {
	return db.Model(&User{}).Where("id = ?", userID).Update("last_login", at).Error
}

// SetSubscription marks a user as premium with the given expiry timestamp.
// Any previous expiry is overwritten, not extended.
// Returns an error if the update fails.
func (db *Database) SetSubscription(userID uint, until time.Time) error {
	return db.Model(&User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"is_premium":         true,
		"subscription_until": until,
	}).Error
}

// ListActiveServers retrieves all active catalog entries ordered for display:
// recommended servers first, then by ascending ping.
// Returns the ordered slice and an error if the query fails.
func (db *Database) ListActiveServers() ([]Server, error) {
	var servers []Server
	err := db.Where("is_active = ?", true).
		Order("is_recommended desc").
		Order("ping asc").
		Find(&servers).Error
	return servers, err
}

// GetActiveServer retrieves an active server by its catalog slug.
// Inactive servers are treated the same as unknown ones.
// Returns the server record and gorm.ErrRecordNotFound when no active server matches.
func (db *Database) GetActiveServer(id string) (*Server, error) {
	var server Server
	err := db.Where("id = ? AND is_active = ?", id, true).First(&server).Error
	return &server, err
}

// GetActiveConnection retrieves the user's active session, the single
// connection row with no disconnect timestamp.
// Returns gorm.ErrRecordNotFound when the user has no active session.
func (db *Database) GetActiveConnection(userID uint) (*Connection, error) {
	var conn Connection
	err := db.Preload("Server").
		Where("user_id = ? AND disconnected_at IS NULL", userID).
		First(&conn).Error
	return &conn, err
}

// CreateConnection inserts a new connection session record.
// Returns an error if the creation fails.
func (db *Database) CreateConnection(conn *Connection) error {
	return db.Create(conn).Error
}

// CloseActiveConnections closes every active session of the user, stamping
// the given disconnect time and duration on all of them. Used when a new
// connect supersedes whatever was open.
// Returns an error if the update fails.
func (db *Database) CloseActiveConnections(userID uint, at time.Time, duration int64) error {
	return db.Model(&Connection{}).
		Where("user_id = ? AND disconnected_at IS NULL", userID).
		Updates(map[string]interface{}{
			"disconnected_at": at,
			"duration":        duration,
		}).Error
}

// CloseConnection closes a single session by id with the given disconnect
// time and duration.
// Returns an error if the update fails.
func (db *Database) CloseConnection(connID uint, at time.Time, duration int64) error {
	return db.Model(&Connection{}).Where("id = ?", connID).
		Updates(map[string]interface{}{
			"disconnected_at": at,
			"duration":        duration,
		}).Error
}

// UsageStats holds aggregate connection statistics for one user.
type UsageStats struct {
	TotalConnections int64 `json:"total_connections"` // All sessions ever opened
	TotalTime        int64 `json:"total_time"`        // Summed duration in seconds, open sessions counted as 0
	ServersUsed      int64 `json:"servers_used"`      // Distinct servers connected to
}

// GetUsageStats computes the aggregate statistics for a user across all of
// their connection sessions. Sessions without a duration contribute zero to
// the total time.
// Returns the aggregates and an error if the query fails.
func (db *Database) GetUsageStats(userID uint) (*UsageStats, error) {
	var stats UsageStats
	err := db.Model(&Connection{}).
		Select("COUNT(*) AS total_connections, COALESCE(SUM(COALESCE(duration, 0)), 0) AS total_time, COUNT(DISTINCT server_id) AS servers_used").
		Where("user_id = ?", userID).
		Scan(&stats).Error
	return &stats, err
}

// GetRecentConnections retrieves the user's most recent sessions, newest
// first, with the catalog entry preloaded for display.
// The limit parameter controls the maximum number of records to return.
// Returns a slice of connections and an error if the query fails.
func (db *Database) GetRecentConnections(userID uint, limit int) ([]Connection, error) {
	var conns []Connection
	err := db.Preload("Server").
		Where("user_id = ?", userID).
		Order("connected_at desc").
		Limit(limit).
		Find(&conns).Error
	return conns, err
}
