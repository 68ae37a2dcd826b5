// Package policy implements the access control rules deciding whether a user
// may connect to a given server. The engine is pure: decisions depend only on
// the user and server snapshots passed in, never on stored state.
package policy

import (
	"time"

	"matreshka-vpn/internal/database"
)

// Denial reasons returned to clients in the 403 detail field.
const (
	ReasonServerNotFound  = "Server not found"
	ReasonPremiumRequired = "Premium subscription required"
	ReasonPremiumCountry  = "Premium subscription required for this country"
)

// restrictedCountries limits free-tier users to the CIS-region server set.
// A free user may not connect to any server in these countries even when the
// server itself is not flagged premium.
var restrictedCountries = map[string]struct{}{
	"USA":            {},
	"United Kingdom": {},
	"Germany":        {},
	"France":         {},
	"Switzerland":    {},
	"Japan":          {},
	"Australia":      {},
	"Canada":         {},
	"Sweden":         {},
	"Norway":         {},
	"Denmark":        {},
	"Finland":        {},
	"Austria":        {},
	"Netherlands":    {},
	"Singapore":      {},
	"South Korea":    {},
	"UAE":            {},
	"Hong Kong":      {},
	"India":          {},
	"Brazil":         {},
	"Mexico":         {},
	"New Zealand":    {},
	"South Africa":   {},
	"Czech Republic": {},
	"Poland":         {},
}

// Decision is the outcome of an access check. A denied decision carries the
// human-readable reason surfaced to the client.
type Decision struct {
	Allowed bool
	Reason  string
}

// Allowed is the positive decision.
var Allowed = Decision{Allowed: true}

// Denied constructs a negative decision with the given reason.
func Denied(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Engine evaluates connection access rules.
type Engine struct{}

// NewEngine creates a new access policy engine.
// Returns a pointer to the newly created Engine.
func NewEngine() *Engine {
	return &Engine{}
}

// CanConnect decides whether the user may open a session on the server at
// the given instant. Rules are evaluated in order: the server must be
// active; premium servers require premium status; free-tier users are
// limited to non-restricted countries.
func (e *Engine) CanConnect(user *database.User, server *database.Server, now time.Time) Decision {
	if !server.IsActive {
		return Denied(ReasonServerNotFound)
	}

	premium := IsPremiumAt(user, now)

	if server.IsPremium && !premium {
		return Denied(ReasonPremiumRequired)
	}

	if !premium {
		if _, restricted := restrictedCountries[server.Country]; restricted {
			return Denied(ReasonPremiumCountry)
		}
	}

	return Allowed
}

// IsPremiumAt reports whether the user counts as premium at the given
// instant. The stored flag alone is not trusted: a subscription_until in the
// past means the user is treated as free tier, with no background job needed
// to flip the flag. A premium user with no expiry set stays premium.
func IsPremiumAt(user *database.User, now time.Time) bool {
	if !user.IsPremium {
		return false
	}
	if user.SubscriptionUntil == nil {
		return true
	}
	return !now.After(*user.SubscriptionUntil)
}

// IsRestrictedCountry reports whether the country is off-limits to free-tier
// users.
func IsRestrictedCountry(country string) bool {
	_, ok := restrictedCountries[country]
	return ok
}
