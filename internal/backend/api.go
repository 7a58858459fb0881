package backend

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"net/url"
	"strings"
)

// MTU bounds accepted by the server.
const (
	MinMTU     = 576
	MaxMTU     = 9000
	DefaultMTU = 1413
)

// Login posts credentials. On success the server sets the session cookie in
// the client's jar. Login is quiet: a 401 here means bad credentials, not an
// expired session.
func (c *Client) Login(ctx context.Context, username, password string) error {
	_, err := c.Send(ctx, &Request{
		Method:   http.MethodPost,
		Path:     "/api/login",
		Endpoint: "login",
		Body: struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}{username, password},
		Quiet: true,
	})
	return err
}

// Logout tells the server to drop the session. Quiet: callers decide what a
// failure means.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.Send(ctx, &Request{
		Method:   http.MethodPost,
		Path:     "/api/logout",
		Endpoint: "logout",
		Quiet:    true,
	})
	return err
}

// AuthCheck checks whether the ambient session is still valid. Quiet.
func (c *Client) AuthCheck(ctx context.Context) (AuthStatus, error) {
	var st AuthStatus
	_, err := c.Send(ctx, &Request{
		Method:   http.MethodGet,
		Path:     "/api/auth/check",
		Endpoint: "auth_check",
		Out:      &st,
		Quiet:    true,
	})
	if err != nil {
		return AuthStatus{}, err
	}
	return st, nil
}

// ListClients returns every managed client with its online state.
func (c *Client) ListClients(ctx context.Context) ([]ManagedClient, error) {
	var list []ManagedClient
	_, err := c.Send(ctx, &Request{
		Method:   http.MethodGet,
		Path:     "/api/clients",
		Endpoint: "list_clients",
		Out:      &list,
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// CreateClient asks the server to issue a new client certificate and
// configuration. It returns the new client's id, which may be empty if the
// server did not report one.
func (c *Client) CreateClient(ctx context.Context, p CreateParams) (string, error) {
	q := url.Values{}
	q.Set("server_addr", p.ServerAddr)
	q.Set("server_name", p.ServerName)
	q.Set("mtu", p.MTU)
	if p.TunName != "" {
		q.Set("tun_name", p.TunName)
	}
	var out struct {
		ClientID string `json:"client_id"`
	}
	_, err := c.Send(ctx, &Request{
		Method:   http.MethodGet,
		Path:     "/api/gen_client",
		Query:    q,
		Endpoint: "create_client",
		Out:      &out,
	})
	if err != nil {
		return "", err
	}
	return out.ClientID, nil
}

// DeleteClient removes a client and disconnects it if online.
func (c *Client) DeleteClient(ctx context.Context, id string) error {
	_, err := c.Send(ctx, &Request{
		Method:   http.MethodGet,
		Path:     "/api/delete_client",
		Query:    url.Values{"id": {id}},
		Endpoint: "delete_client",
	})
	return err
}

// DownloadClient fetches the client's configuration file.
func (c *Client) DownloadClient(ctx context.Context, id string) (Artifact, error) {
	resp, err := c.Send(ctx, &Request{
		Method:   http.MethodGet,
		Path:     "/api/download_client",
		Query:    url.Values{"id": {id}},
		Endpoint: "download_client",
	})
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{
		ClientID: id,
		Filename: attachmentName(resp.Header.Get("Content-Disposition")),
		Data:     resp.Body,
	}, nil
}

// CAStatus reports whether the server has a CA to sign client certificates.
func (c *Client) CAStatus(ctx context.Context) (CAStatus, error) {
	var st CAStatus
	_, err := c.Send(ctx, &Request{
		Method:   http.MethodGet,
		Path:     "/api/ca_status",
		Endpoint: "ca_status",
		Out:      &st,
	})
	if err != nil {
		return CAStatus{}, err
	}
	return st, nil
}

// GenerateCA asks the server to create its CA and server certificate.
func (c *Client) GenerateCA(ctx context.Context) error {
	_, err := c.Send(ctx, &Request{
		Method:   http.MethodPost,
		Path:     "/api/gen_ca_server",
		Endpoint: "generate_ca",
	})
	return err
}

// GetServerConfig returns the server's default connection profile.
func (c *Client) GetServerConfig(ctx context.Context) (ServerConfig, error) {
	var cfg ServerConfig
	_, err := c.Send(ctx, &Request{
		Method:   http.MethodGet,
		Path:     "/api/server_config",
		Endpoint: "get_server_config",
		Out:      &cfg,
	})
	if err != nil {
		return ServerConfig{}, err
	}
	return cfg, nil
}

// ErrMTURange is returned before any request when an MTU is out of bounds.
var ErrMTURange = errors.New("mtu must be between 576 and 9000")

// SetServerConfig stores the server's default connection profile.
func (c *Client) SetServerConfig(ctx context.Context, cfg ServerConfig) error {
	if cfg.MTU < MinMTU || cfg.MTU > MaxMTU {
		return clientError("set_server_config", ErrMTURange)
	}
	_, err := c.Send(ctx, &Request{
		Method:   http.MethodPost,
		Path:     "/api/server_config",
		Body:     cfg,
		Endpoint: "set_server_config",
	})
	return err
}

func attachmentName(disposition string) string {
	if disposition == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(params["filename"])
}
