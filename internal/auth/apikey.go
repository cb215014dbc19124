// Package auth provides simple API-key authentication for the server's
// endpoints.
package auth

// APIKeyAuth validates requests against a set of known keys. An empty set
// means auth is disabled.
type APIKeyAuth struct {
	validKeys map[string]struct{}
}

// NewAPIKeyAuth creates the validator from the configured key list.
func NewAPIKeyAuth(keys []string) *APIKeyAuth {
	validKeys := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		validKeys[key] = struct{}{}
	}
	return &APIKeyAuth{validKeys: validKeys}
}

// Enabled reports whether any keys are configured.
func (a *APIKeyAuth) Enabled() bool {
	return len(a.validKeys) > 0
}

// IsValidKey checks if a key is valid.
func (a *APIKeyAuth) IsValidKey(key string) bool {
	_, valid := a.validKeys[key]
	return valid
}
