package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"matreshka-vpn/internal/database"
	"matreshka-vpn/internal/session"
	"matreshka-vpn/internal/utils"
)

// ConnectionAPI exposes the session lifecycle endpoints: connect, disconnect,
// usage statistics, and the connection profile for the external VPN client.
type ConnectionAPI struct {
	db       *database.Database
	sessions *session.Manager
	qr       *utils.QRCodeGenerator
}

// ConnectRequest asks to open a session on a server.
type ConnectRequest struct {
	TelegramID int64  `json:"telegram_id" binding:"required"`
	ServerID   string `json:"server_id" binding:"required"`
}

// DisconnectRequest asks to close the active session.
type DisconnectRequest struct {
	TelegramID int64 `json:"telegram_id" binding:"required"`
}

// MessageResponse is the generic success payload for session mutations.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ProfileResponse carries the active connection profile, optionally rendered
// as a QR code.
type ProfileResponse struct {
	ServerID string `json:"server_id"`
	Profile  string `json:"profile"`
	QRCode   string `json:"qr_code,omitempty"`
}

// NewConnectionAPI creates a new connection API instance.
// Returns a pointer to the newly created ConnectionAPI.
func NewConnectionAPI(db *database.Database, sessions *session.Manager) *ConnectionAPI {
	return &ConnectionAPI{
		db:       db,
		sessions: sessions,
		qr:       utils.NewQRCodeGenerator(),
	}
}

// RegisterRoutes registers the connection API routes.
func (api *ConnectionAPI) RegisterRoutes(router *gin.Engine) {
	apiGroup := router.Group("/api")
	{
		apiGroup.POST("/connect", api.Connect)
		apiGroup.POST("/disconnect", api.Disconnect)
		apiGroup.GET("/user/:telegram_id/stats", api.Stats)
		apiGroup.GET("/user/:telegram_id/profile", api.Profile)
	}
}

// Connect opens a session for the user on the requested server.
// Responds 404 for unknown users or servers, 403 with the policy's reason
// when access is denied, and 200 on success.
func (api *ConnectionAPI) Connect(c *gin.Context) {
	var req ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: "Missing required fields"})
		return
	}

	user, err := api.db.GetUserByTelegramID(req.TelegramID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Detail: "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Detail: "Failed to look up user"})
		return
	}

	server, err := api.db.GetActiveServer(req.ServerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Detail: "Server not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Detail: "Failed to look up server"})
		return
	}

	if err := api.sessions.Connect(user, server); err != nil {
		var denied *session.AccessDeniedError
		if errors.As(err, &denied) {
			c.JSON(http.StatusForbidden, ErrorResponse{Detail: denied.Reason})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Detail: "Failed to connect"})
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "Connected successfully"})
}

// Disconnect closes the user's active session. Disconnecting with no active
// session still reports success.
func (api *ConnectionAPI) Disconnect(c *gin.Context) {
	var req DisconnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: "Missing telegram_id"})
		return
	}

	user, err := api.db.GetUserByTelegramID(req.TelegramID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Detail: "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Detail: "Failed to look up user"})
		return
	}

	if err := api.sessions.Disconnect(user); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Detail: "Failed to disconnect"})
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "Disconnected successfully"})
}

// Stats returns the user's aggregate usage and recent session history.
func (api *ConnectionAPI) Stats(c *gin.Context) {
	telegramID, err := strconv.ParseInt(c.Param("telegram_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: "Invalid telegram_id"})
		return
	}

	user, err := api.db.GetUserByTelegramID(telegramID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Detail: "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Detail: "Failed to look up user"})
		return
	}

	stats, err := api.sessions.Stats(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Detail: "Failed to compute stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// Profile returns the connection profile URI of the user's active session,
// with ?format=qr adding a QR rendering. Responds 404 when no session is
// active.
func (api *ConnectionAPI) Profile(c *gin.Context) {
	telegramID, err := strconv.ParseInt(c.Param("telegram_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: "Invalid telegram_id"})
		return
	}

	user, err := api.db.GetUserByTelegramID(telegramID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Detail: "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Detail: "Failed to look up user"})
		return
	}

	conn, err := api.sessions.Active(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Detail: "Failed to look up session"})
		return
	}
	if conn == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Detail: "No active connection"})
		return
	}

	profile := utils.ProfileURI(conn.ServerID, conn.Server.Name, conn.Server.Country)
	response := ProfileResponse{
		ServerID: conn.ServerID,
		Profile:  profile,
	}

	if c.Query("format") == "qr" {
		qrData, err := api.qr.GenerateBase64(profile)
		if err != nil {
			c.JSON(http.StatusInternalServerError, ErrorResponse{Detail: "Failed to render QR code"})
			return
		}
		response.QRCode = qrData
	}

	c.JSON(http.StatusOK, response)
}
