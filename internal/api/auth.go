package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"matreshka-vpn/internal/auth"
	"matreshka-vpn/internal/database"
)

// AuthAPI provides the authentication endpoints. It verifies Telegram WebApp
// identities, upserts the user record, and issues API session tokens.
type AuthAPI struct {
	db       *database.Database // Database interface for user persistence
	verifier *auth.Verifier     // Telegram init-data signature verification
	tokens   *auth.TokenManager // Session token issuing and validation
}

// AuthRequest carries either raw signed WebApp init data or, on the trusted
// path, the identity fields directly.
type AuthRequest struct {
	InitData   string `json:"init_data,omitempty"`
	TelegramID int64  `json:"telegram_id,omitempty"`
	Username   string `json:"username,omitempty"`
	FirstName  string `json:"first_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`
}

// UserInfo is the user snapshot returned by authentication and profile
// endpoints.
type UserInfo struct {
	TelegramID        int64      `json:"telegram_id"`
	Username          string     `json:"username"`
	FirstName         string     `json:"first_name"`
	LastName          string     `json:"last_name"`
	IsPremium         bool       `json:"is_premium"`
	SubscriptionUntil *time.Time `json:"subscription_until"`
}

// AuthResponse is the successful authentication payload.
type AuthResponse struct {
	Success bool     `json:"success"`
	Token   string   `json:"token"`
	User    UserInfo `json:"user"`
}

// NewAuthAPI creates a new authentication API instance.
// Returns a pointer to the newly created AuthAPI.
func NewAuthAPI(db *database.Database, verifier *auth.Verifier, tokens *auth.TokenManager) *AuthAPI {
	return &AuthAPI{
		db:       db,
		verifier: verifier,
		tokens:   tokens,
	}
}

// RegisterRoutes registers the authentication API routes.
func (api *AuthAPI) RegisterRoutes(router *gin.Engine, middleware *auth.Middleware) {
	apiGroup := router.Group("/api")
	{
		apiGroup.POST("/auth", api.Authenticate)

		protected := apiGroup.Group("")
		protected.Use(middleware.RequireAuth())
		{
			protected.GET("/me", api.Me)
		}
	}
}

// Authenticate handles user login from the Telegram WebApp.
//
// When init_data is present it is verified against the bot token and the
// identity is taken from the signed payload; otherwise the identity fields of
// the request body are used directly. The user is created on first sight,
// last_login is updated on every call, and a session token is issued.
func (api *AuthAPI) Authenticate(c *gin.Context) {
	var req AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: err.Error()})
		return
	}

	identity := auth.TelegramUser{
		ID:        req.TelegramID,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if req.InitData != "" {
		verified, err := api.verifier.Verify(req.InitData)
		if err != nil {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Detail: err.Error()})
			return
		}
		identity = *verified
	}

	if identity.ID == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: "Missing telegram_id"})
		return
	}

	now := time.Now()
	user, err := api.db.GetUserByTelegramID(identity.ID)
	switch {
	case err == nil:
		if err := api.db.UpdateUserLastLogin(user.ID, now); err != nil {
			c.JSON(http.StatusInternalServerError, ErrorResponse{Detail: "Failed to update user"})
			return
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = &database.User{
			TelegramID: identity.ID,
			Username:   identity.Username,
			FirstName:  identity.FirstName,
			LastName:   identity.LastName,
			LastLogin:  now,
		}
		if err := api.db.CreateUser(user); err != nil {
			c.JSON(http.StatusInternalServerError, ErrorResponse{Detail: "Failed to create user"})
			return
		}
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Detail: "Failed to look up user"})
		return
	}

	// Re-read so the response reflects what was actually stored.
	user, err = api.db.GetUserByTelegramID(identity.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Detail: "Failed to load user"})
		return
	}

	token, err := api.tokens.Generate(user.TelegramID, user.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Detail: "Failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		Success: true,
		Token:   token,
		User:    userInfo(user),
	})
}

// Me returns the snapshot of the user identified by the bearer token.
func (api *AuthAPI) Me(c *gin.Context) {
	telegramID, ok := auth.TelegramIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Detail: "Not authenticated"})
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

	c.JSON(http.StatusOK, userInfo(user))
}

func userInfo(user *database.User) UserInfo {
	return UserInfo{
		TelegramID:        user.TelegramID,
		Username:          user.Username,
		FirstName:         user.FirstName,
		LastName:          user.LastName,
		IsPremium:         user.IsPremium,
		SubscriptionUntil: user.SubscriptionUntil,
	}
}
