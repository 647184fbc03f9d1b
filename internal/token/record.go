package token

import (
	"encoding/json"
	"fmt"
	"maps"
	"strings"
	"time"
)

// expiryLayouts are tried in order. Layouts without a zone are read as UTC.
var expiryLayouts = []string{
	"2006-01-02T15:04:05.000000Z07:00",
	"2006-01-02T15:04:05.000000",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
}

// Record is a read-only view of a cached credential file. Unknown keys are
// preserved across refreshes.
type Record struct {
	fields map[string]any
}

// ParseRecord decodes a credential file.
func ParseRecord(data []byte) (Record, error) {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return Record{}, err
	}
	if fields == nil {
		return Record{}, fmt.Errorf("credential file is not a JSON object")
	}
	return Record{fields: fields}, nil
}

// String returns the trimmed string value of key, or "".
func (r Record) String(key string) string {
	s, _ := r.fields[key].(string)
	return strings.TrimSpace(s)
}

// AccessToken returns access_token, falling back to the legacy token key.
func (r Record) AccessToken() string {
	if t := r.String("access_token"); t != "" {
		return t
	}
	return r.String("token")
}

// Expiry parses the expiry field. ok is false when it is absent or unparseable.
func (r Record) Expiry() (time.Time, bool) {
	raw := r.String("expiry")
	if raw == "" {
		return time.Time{}, false
	}
	return parseExpiry(raw)
}

func parseExpiry(s string) (time.Time, bool) {
	for _, layout := range expiryLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// Refreshed returns a copy with the new access token written under both keys
// and the expiry recomputed. A non-empty refreshToken replaces the stored one.
func (r Record) Refreshed(accessToken, refreshToken string, expiry time.Time) Record {
	fields := maps.Clone(r.fields)
	fields["access_token"] = accessToken
	fields["token"] = accessToken
	fields["expiry"] = expiry.UTC().Format(time.RFC3339)
	if refreshToken != "" {
		fields["refresh_token"] = refreshToken
	}
	return Record{fields: fields}
}

// Marshal encodes the record as indented JSON with sorted keys.
func (r Record) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(r.fields, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
