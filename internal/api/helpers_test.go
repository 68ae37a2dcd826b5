package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"matreshka-vpn/internal/database"
	"matreshka-vpn/internal/policy"
	"matreshka-vpn/internal/session"
)

func setupTestDB(t *testing.T) *database.Database {
	db, err := database.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Seed())
	return db
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func newSessionManager(db *database.Database) *session.Manager {
	return session.NewManager(db, policy.NewEngine(), zap.NewNop())
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

func performJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	var response ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}
