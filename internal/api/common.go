// Package api provides the REST endpoints of the VPN backend: Telegram
// authentication, the server catalog, connection sessions, subscriptions, and
// usage statistics, implemented as Gin handler groups.
package api

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
