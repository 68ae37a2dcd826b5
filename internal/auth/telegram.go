// Package auth provides authentication for the VPN backend: verification of
// Telegram WebApp init data and JWT-based API session tokens with gin
// middleware integration.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/url"
	"sort"
	"strings"
)

// Verification failure reasons. All of them map to HTTP 401 at the API layer.
var (
	ErrMalformedInitData = errors.New("malformed init data")
	ErrMissingHash       = errors.New("missing hash")
	ErrInvalidSignature  = errors.New("invalid signature")
	ErrMalformedUser     = errors.New("malformed user payload")
)

// TelegramUser holds the identity fields embedded in verified init data.
type TelegramUser struct {
	ID        int64  `json:"id"`         // Telegram account identifier
	Username  string `json:"username"`   // Telegram username, may be empty
	FirstName string `json:"first_name"` // First name from the Telegram profile
	LastName  string `json:"last_name"`  // Last name from the Telegram profile
}

// Verifier validates Telegram WebApp init data signatures.
// The signing key is derived once from the bot token as SHA-256(token),
// per the Telegram WebApp specification.
type Verifier struct {
	secret []byte // HMAC key: SHA-256 digest of the bot token
}

// NewVerifier creates a Verifier for the given bot token.
// Returns a pointer to the newly created Verifier.
func NewVerifier(botToken string) *Verifier {
	secret := sha256.Sum256([]byte(botToken))
	return &Verifier{secret: secret[:]}
}

// Verify checks the signature of raw WebApp init data and returns the
// embedded user identity on success.
//
// The check string is built from every key=value pair except "hash", sorted
// lexicographically by key and joined with newlines. Its HMAC-SHA256 under
// the derived secret must equal the supplied hash; the comparison is
// constant-time. Verification is pure: no state is read or written.
func (v *Verifier) Verify(initData string) (*TelegramUser, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, ErrMalformedInitData
	}

	suppliedHash := values.Get("hash")
	if suppliedHash == "" {
		return nil, ErrMissingHash
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		if key != "hash" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		lines = append(lines, key+"="+values.Get(key))
	}
	checkString := strings.Join(lines, "\n")

	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(checkString))
	computed := mac.Sum(nil)

	supplied, err := hex.DecodeString(suppliedHash)
	if err != nil || !hmac.Equal(computed, supplied) {
		return nil, ErrInvalidSignature
	}

	var user TelegramUser
	if err := json.Unmarshal([]byte(values.Get("user")), &user); err != nil {
		return nil, ErrMalformedUser
	}
	return &user, nil
}
