package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// CredentialClass separates cache entries for anonymous and authenticated
// callers. Authenticated responses carry richer fields, so the two classes
// must never share entries even for identical query parameters.
type CredentialClass string

const (
	// WithKey marks responses fetched with a caller-supplied token.
	WithKey CredentialClass = "with-key"

	// NoKey marks responses fetched anonymously via the shared server token.
	NoKey CredentialClass = "no-key"
)

// ClassForToken returns the credential class for a caller-supplied token.
func ClassForToken(token string) CredentialClass {
	if token != "" {
		return WithKey
	}
	return NoKey
}

// Keyer generates cache keys for the aggregator's result types.
type Keyer interface {
	// SearchKey keys one page of aggregated search output. The cursor is
	// "none" when absent so that cursor-less and cursor-bearing requests
	// for the same page never collide.
	SearchKey(query, sort string, page int, cursor string, class CredentialClass) string

	// UserKey keys a single user-detail result.
	UserKey(login string, class CredentialClass) string

	// SuggestionKey keys a location-suggestion response.
	SuggestionKey(query string) string
}

// DefaultKeyer hashes the key components, keeping keys backend-safe
// regardless of what characters appear in a location query.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// SearchKey generates the composite search-page key.
func (k *DefaultKeyer) SearchKey(query, sort string, page int, cursor string, class CredentialClass) string {
	if cursor == "" {
		cursor = "none"
	}
	return hashKey("search", query, sort, page, cursor, string(class))
}

// UserKey generates a user-detail key.
func (k *DefaultKeyer) UserKey(login string, class CredentialClass) string {
	return hashKey("user", login, string(class))
}

// SuggestionKey generates a location-suggestion key.
func (k *DefaultKeyer) SuggestionKey(query string) string {
	return hashKey("location", query)
}

// ScopedKeyer wraps a Keyer with a prefix, giving separate namespaces to
// instances that share one redis database.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// SearchKey generates a prefixed search-page key.
func (k *ScopedKeyer) SearchKey(query, sort string, page int, cursor string, class CredentialClass) string {
	return k.prefix + k.inner.SearchKey(query, sort, page, cursor, class)
}

// UserKey generates a prefixed user-detail key.
func (k *ScopedKeyer) UserKey(login string, class CredentialClass) string {
	return k.prefix + k.inner.UserKey(login, class)
}

// SuggestionKey generates a prefixed location-suggestion key.
func (k *ScopedKeyer) SuggestionKey(query string) string {
	return k.prefix + k.inner.SuggestionKey(query)
}

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	// Full SHA-256 (64 hex chars) to prevent collisions.
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}
