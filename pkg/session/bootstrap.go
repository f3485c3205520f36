// Package session performs the handshake that every scan starts with:
// one get_session_data call that yields the session cookies, the
// anti-forgery token and the entity types the session can see.
package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"xasscan/pkg/core"
	"xasscan/pkg/credential"
	"xasscan/pkg/xas"
)

var (
	// ErrAuthRequired is returned when the handshake is answered with 401.
	ErrAuthRequired = errors.New("authentication required")
	// ErrTokenMissing is returned when the handshake succeeds but carries
	// no anti-forgery token.
	ErrTokenMissing = errors.New("token missing")
)

// StatusError is returned for any other unexpected handshake status.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// Bootstrapper establishes a session with the target.
type Bootstrapper struct {
	transport core.Transport
	logger    *slog.Logger
}

// NewBootstrapper creates a Bootstrapper.
func NewBootstrapper(transport core.Transport, logger *slog.Logger) *Bootstrapper {
	return &Bootstrapper{transport: transport, logger: logger}
}

// Bootstrap sends a single get_session_data request to url, carrying
// cookie when one was supplied. It is never retried.
func (b *Bootstrapper) Bootstrap(url, cookie string) (*core.Session, error) {
	headers := xas.Headers(credential.Normalize(cookie), "")
	b.logger.Debug("requesting session data", "url", url, "with_cookie", cookie != "")

	resp, err := b.transport.PostJSON(url, headers, xas.SessionDataRequest())
	if err != nil {
		return nil, fmt.Errorf("session request: %w", err)
	}

	switch {
	case resp.Status == 401:
		return nil, ErrAuthRequired
	case resp.Status != 200:
		return nil, &StatusError{Code: resp.Status}
	}

	jar := credential.Merge(cookie, resp.SetCookies)
	b.logger.Debug("merged session cookies", "cookies", jar.Len(), "server_cookies", len(resp.SetCookies))

	token, entities, err := ParseSessionData(resp.Body)
	if err != nil {
		return nil, err
	}

	return &core.Session{
		URL:         url,
		Cookies:     jar,
		CSRFToken:   token,
		EntityTypes: entities,
	}, nil
}

// ParseSessionData extracts the anti-forgery token and the entity type
// names from a get_session_data response body. Metadata entries without
// a string objectType are skipped; repeated types are listed once.
func ParseSessionData(body []byte) (string, []string, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return "", nil, fmt.Errorf("decode session data: %w", err)
	}

	var token string
	if raw, ok := fields["csrftoken"]; ok {
		_ = json.Unmarshal(raw, &token)
	}
	if token == "" {
		return "", nil, ErrTokenMissing
	}

	var metadata []json.RawMessage
	if raw, ok := fields["metadata"]; ok {
		_ = json.Unmarshal(raw, &metadata)
	}

	seen := make(map[string]bool, len(metadata))
	entities := make([]string, 0, len(metadata))
	for _, raw := range metadata {
		if len(raw) == 0 || !bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{")) {
			continue
		}
		var entry struct {
			ObjectType *string `json:"objectType"`
		}
		if err := json.Unmarshal(raw, &entry); err != nil || entry.ObjectType == nil {
			continue
		}
		if seen[*entry.ObjectType] {
			continue
		}
		seen[*entry.ObjectType] = true
		entities = append(entities, *entry.ObjectType)
	}

	return token, entities, nil
}
