package backend

import (
	"encoding/json"
	"strings"
	"time"
)

// AuthStatus is the body of GET /api/auth/check.
type AuthStatus struct {
	LoggedIn bool   `json:"loggedIn"`
	Username string `json:"username,omitempty"`
}

// ManagedClient is one VPN client endpoint managed by the server.
type ManagedClient struct {
	ID        string    `json:"client_id"`
	CreatedAt Timestamp `json:"created_at"`
	Online    bool      `json:"online"`
}

// Timestamp accepts both RFC 3339 and SQLite's "YYYY-MM-DD HH:MM:SS".
type Timestamp struct {
	time.Time
	raw string
}

const sqliteLayout = "2006-01-02 15:04:05"

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// null or a non-string: treat as unknown rather than failing the list.
		*t = Timestamp{}
		return nil
	}
	*t = ParseTimestamp(s)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.raw != "" {
		return json.Marshal(t.raw)
	}
	if t.IsZero() {
		return json.Marshal("")
	}
	return json.Marshal(t.UTC().Format(time.RFC3339))
}

// ParseTimestamp parses s, keeping the raw text when no layout matches.
func ParseTimestamp(s string) Timestamp {
	for _, layout := range []string{time.RFC3339Nano, sqliteLayout} {
		if tt, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: tt, raw: s}
		}
	}
	return Timestamp{raw: s}
}

// Display renders the timestamp as "YYYY-MM-DD HH:MM:SS".
func (t Timestamp) Display() string {
	if !t.IsZero() {
		return t.Format(sqliteLayout)
	}
	s := strings.Replace(t.raw, "T", " ", 1)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	return s
}

// CreateParams are the inputs of the create-client form.
type CreateParams struct {
	ServerAddr string `toml:"server_addr"`
	ServerName string `toml:"server_name"`
	MTU        string `toml:"mtu"`
	TunName    string `toml:"tun_name"`
}

// Artifact is a downloaded client configuration file.
type Artifact struct {
	ClientID string
	Filename string
	Data     []byte
}

// ServerConfig is the server's default connection profile.
type ServerConfig struct {
	ServerAddr string `json:"server_addr"`
	ServerName string `json:"server_name"`
	MTU        int    `json:"mtu"`
}

// CAStatus is the body of GET /api/ca_status.
type CAStatus struct {
	Exists bool `json:"exists"`
}
