// Package database provides data models and the database access layer for the
// VPN backend. It defines the schema using GORM and includes models for users,
// the server catalog, and connection sessions.
package database

import (
	"time"
)

// User represents a Telegram user of the VPN service.
// Users are created on first authentication and identified by their
// Telegram ID across all API operations.
type User struct {
	ID                uint       `gorm:"primaryKey" json:"id"`                    // Unique identifier for the user
	TelegramID        int64      `gorm:"uniqueIndex;not null" json:"telegram_id"` // Telegram account identifier (unique)
	Username          string     `json:"username"`                                // Telegram username, may be empty
	FirstName         string     `json:"first_name"`                              // First name from the Telegram profile
	LastName          string     `json:"last_name"`                               // Last name from the Telegram profile
	IsPremium         bool       `gorm:"default:false" json:"is_premium"`         // Whether the user has a paid subscription
	SubscriptionUntil *time.Time `json:"subscription_until,omitempty"`            // Subscription expiry, nil when never subscribed
	CreatedAt         time.Time  `json:"created_at"`                              // Account creation timestamp
	LastLogin         time.Time  `json:"last_login"`                              // Last authentication timestamp
}

// Server represents a VPN server in the catalog.
// Catalog entries are reference data seeded at startup; user actions never
// mutate them.
type Server struct {
	ID             string `gorm:"primaryKey" json:"id"`                // Catalog slug, e.g. "minsk-1"
	Name           string `gorm:"not null" json:"name"`                // Human-readable name
	Country        string `gorm:"not null" json:"country"`             // Country the server is located in
	City           string `json:"city"`                                // City the server is located in
	Flag           string `json:"flag"`                                // Flag emoji for the frontend
	Ping           int    `json:"ping"`                                // Informational latency in milliseconds
	LoadPercentage int    `json:"load_percentage"`                     // Informational load percentage
	IsPremium      bool   `gorm:"default:false" json:"is_premium"`     // Whether a paid subscription is required
	IsRecommended  bool   `gorm:"default:false" json:"is_recommended"` // Whether the frontend should highlight it
	IsActive       bool   `gorm:"default:true" json:"is_active"`       // Whether the server is available at all
}

// Connection represents a connection session between a user and a server.
// A row with a nil DisconnectedAt is the user's active session; at most one
// such row may exist per user.
type Connection struct {
	ID             uint       `gorm:"primaryKey" json:"id"`              // Unique identifier for the session
	UserID         uint       `gorm:"not null;index" json:"user_id"`     // Foreign key reference to User
	ServerID       string     `gorm:"not null" json:"server_id"`         // Foreign key reference to Server
	Server         Server     `gorm:"foreignKey:ServerID" json:"server"` // Associated catalog entry
	ConnectedAt    time.Time  `json:"connected_at"`                      // When the session was opened
	DisconnectedAt *time.Time `json:"disconnected_at,omitempty"`         // When the session was closed, nil while active
	Duration       *int64     `json:"duration,omitempty"`                // Session length in whole seconds, nil while active
}

// TableName returns the database table name for the User model.
func (User) TableName() string {
	return "users"
}

// TableName returns the database table name for the Server model.
func (Server) TableName() string {
	return "servers"
}

// TableName returns the database table name for the Connection model.
func (Connection) TableName() string {
	return "connections"
}
