package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenManager handles JWT session tokens issued to WebApp clients after
// their Telegram identity has been verified.
type TokenManager struct {
	jwtSecret   string        // Secret key for token signing and verification
	tokenExpiry time.Duration // Duration for which tokens remain valid
}

// Claims represents the JWT claims structure for authenticated users.
type Claims struct {
	TelegramID int64  `json:"telegram_id"` // Telegram account identifier
	Username   string `json:"username"`    // Username for display and identification
	jwt.RegisteredClaims
}

// NewTokenManager creates a token manager with the given secret and expiry.
// Returns a pointer to the newly created TokenManager.
func NewTokenManager(jwtSecret string, tokenExpiry time.Duration) *TokenManager {
	return &TokenManager{
		jwtSecret:   jwtSecret,
		tokenExpiry: tokenExpiry,
	}
}

// Generate creates a new JWT token for the specified user.
// The token includes identification claims and is signed with the manager's
// secret, expiring after the configured duration.
// Returns the signed token string or an error if signing fails.
func (tm *TokenManager) Generate(telegramID int64, username string) (string, error) {
	claims := &Claims{
		TelegramID: telegramID,
		Username:   username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tm.tokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    "matreshka-vpn",
			Subject:   fmt.Sprintf("tg-%d", telegramID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(tm.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// Validate parses and validates a JWT token string.
// It verifies the signature, expiration, and other registered claims.
// Returns the parsed claims if the token is valid, or an error otherwise.
func (tm *TokenManager) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(tm.jwtSecret), nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token claims")
}

// GenerateSecureSecret creates a cryptographically secure random secret for
// token signing. Used at startup when no secret is configured; tokens then
// only survive for the lifetime of the process.
// Returns a base64-encoded secret string or an error if random generation fails.
func GenerateSecureSecret() (string, error) {
	bytes := make([]byte, 32) // 256 bits
	_, err := rand.Read(bytes)
	if err != nil {
		return "", fmt.Errorf("failed to generate secure secret: %w", err)
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}
