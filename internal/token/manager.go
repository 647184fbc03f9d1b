// Package token maintains a cached OAuth access token shared by every process
// that reads the same credential file.
package token

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/claude/liftsync/internal/transport"
)

// DefaultTokenURI is used when the credential file has no token_uri.
const DefaultTokenURI = "https://oauth2.googleapis.com/token"

// defaultExpiresIn applies when the token endpoint omits expires_in.
const defaultExpiresIn = time.Hour

var (
	ErrInvalidTokenFile     = errors.New("invalid token file")
	ErrMissingRefreshFields = errors.New("token file missing refresh_token, client_id or client_secret")
	ErrInvalidTokenURI      = errors.New("invalid token_uri")
	ErrRefreshFailed        = errors.New("token refresh failed")
)

// Manager resolves access tokens from a credential file, refreshing them
// through the token endpoint when they are missing or about to expire.
type Manager struct {
	client transport.Doer
	log    *slog.Logger
}

// NewManager creates a Manager that sends refresh requests through client.
func NewManager(client transport.Doer, log *slog.Logger) *Manager {
	return &Manager{client: client, log: log}
}

type refreshResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    json.Number `json:"expires_in"`
}

// ResolveAccessToken returns a usable access token from the file at path.
// The whole read-refresh-write sequence runs under an exclusive lock, so a
// caller that waited for the lock sees a token another process just refreshed.
// An expiry that is missing or unparseable is treated as non-expiring.
func (m *Manager) ResolveAccessToken(ctx context.Context, path string, now time.Time, skew time.Duration) (string, error) {
	unlock := m.lock(path)
	defer unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidTokenFile, err)
	}
	rec, err := ParseRecord(data)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidTokenFile, err)
	}

	current := rec.AccessToken()
	if !needsRefresh(rec, current, now, skew) {
		return current, nil
	}

	refreshToken := rec.String("refresh_token")
	clientID := rec.String("client_id")
	clientSecret := rec.String("client_secret")
	if refreshToken == "" || clientID == "" || clientSecret == "" {
		if current != "" {
			m.log.Warn("token needs refresh but refresh fields are missing, using cached token", "path", path)
			return current, nil
		}
		return "", ErrMissingRefreshFields
	}

	endpoint, err := tokenEndpoint(rec.String("token_uri"))
	if err != nil {
		return "", err
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	form.Set("client_id", clientID)
	form.Set("client_secret", clientSecret)

	resp, err := m.refresh(ctx, endpoint, form)
	if err != nil {
		return "", err
	}

	expiresIn := defaultExpiresIn
	if resp.ExpiresIn != "" {
		if secs, err := resp.ExpiresIn.Float64(); err == nil {
			expiresIn = time.Duration(secs * float64(time.Second))
		}
	}

	updated := rec.Refreshed(resp.AccessToken, resp.RefreshToken, now.Add(expiresIn))
	out, err := updated.Marshal()
	if err != nil {
		return "", fmt.Errorf("encoding token file: %w", err)
	}
	if err := writeAtomic(path, out); err != nil {
		return "", fmt.Errorf("writing token file: %w", err)
	}

	m.log.Info("access token refreshed", "path", path, "expires_in", expiresIn.String())
	return resp.AccessToken, nil
}

func needsRefresh(rec Record, current string, now time.Time, skew time.Duration) bool {
	if current == "" {
		return true
	}
	expiry, ok := rec.Expiry()
	if !ok {
		return false
	}
	return !expiry.After(now.Add(skew))
}

func tokenEndpoint(raw string) (string, error) {
	if raw == "" {
		return DefaultTokenURI, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidTokenURI, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidTokenURI, raw)
	}
	return u.String(), nil
}

func (m *Manager) refresh(ctx context.Context, endpoint string, form url.Values) (refreshResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return refreshResponse{}, fmt.Errorf("%w: %w", ErrInvalidTokenURI, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	body, err := transport.Send(m.client, req)
	if err != nil {
		return refreshResponse{}, fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}

	var resp refreshResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return refreshResponse{}, fmt.Errorf("%w: decoding response: %w", ErrRefreshFailed, err)
	}
	if strings.TrimSpace(resp.AccessToken) == "" {
		return refreshResponse{}, fmt.Errorf("%w: response missing access_token", ErrRefreshFailed)
	}
	return resp, nil
}

// lock takes the advisory lock on a sidecar file next to path. The token file
// itself is replaced by rename, so it cannot carry the lock. When the lock
// cannot be taken the caller proceeds unlocked.
func (m *Manager) lock(path string) func() {
	f, err := os.OpenFile(path+".lock", os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		m.log.Warn("token lock unavailable, continuing without it", "path", path, "error", err)
		return func() {}
	}
	if err := lockFile(f); err != nil {
		_ = f.Close()
		m.log.Warn("token lock failed, continuing without it", "path", path, "error", err)
		return func() {}
	}
	return func() {
		_ = unlockFile(f)
		_ = f.Close()
	}
}

// writeAtomic replaces path with data via a temp file in the same directory.
func writeAtomic(path string, data []byte) error {
	mode := os.FileMode(0o600)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Chmod(mode); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return err
	}
	return nil
}
