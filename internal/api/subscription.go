package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"matreshka-vpn/internal/database"
	"matreshka-vpn/internal/subscription"
)

// SubscriptionAPI exposes premium subscription activation.
type SubscriptionAPI struct {
	db            *database.Database
	subscriptions *subscription.Manager
}

// SubscribeRequest asks to activate a subscription plan.
type SubscribeRequest struct {
	TelegramID int64  `json:"telegram_id" binding:"required"`
	Plan       string `json:"plan" binding:"required"`
}

// SubscribeResponse confirms activation with the new expiry.
type SubscribeResponse struct {
	Success           bool      `json:"success"`
	Message           string    `json:"message"`
	SubscriptionUntil time.Time `json:"subscription_until"`
}

// NewSubscriptionAPI creates a new subscription API instance.
// Returns a pointer to the newly created SubscriptionAPI.
func NewSubscriptionAPI(db *database.Database, subscriptions *subscription.Manager) *SubscriptionAPI {
	return &SubscriptionAPI{
		db:            db,
		subscriptions: subscriptions,
	}
}

// RegisterRoutes registers the subscription API routes.
func (api *SubscriptionAPI) RegisterRoutes(router *gin.Engine) {
	router.Group("/api").POST("/subscribe", api.Subscribe)
}

// Subscribe activates a premium plan for the user.
// Responds 400 for a missing or unknown plan, 404 for an unknown user.
func (api *SubscriptionAPI) Subscribe(c *gin.Context) {
	var req SubscribeRequest
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

	until, err := api.subscriptions.Activate(user, req.Plan)
	if err != nil {
		if errors.Is(err, subscription.ErrInvalidPlan) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Detail: "Invalid plan"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Detail: "Failed to activate subscription"})
		return
	}

	c.JSON(http.StatusOK, SubscribeResponse{
		Success:           true,
		Message:           "Subscription activated",
		SubscriptionUntil: until,
	})
}
