package token

import (
	"context"
	"time"
)

// Source binds a Manager to one credential file so it can hand bearer tokens
// to API clients.
type Source struct {
	manager *Manager
	path    string
	skew    time.Duration
	now     func() time.Time
}

// NewSource creates a Source for the credential file at path.
func NewSource(m *Manager, path string, skew time.Duration) *Source {
	return &Source{manager: m, path: path, skew: skew, now: time.Now}
}

// AccessToken resolves the current token, refreshing it if needed.
func (s *Source) AccessToken(ctx context.Context) (string, error) {
	return s.manager.ResolveAccessToken(ctx, s.path, s.now(), s.skew)
}
