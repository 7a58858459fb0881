package backend

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// classifyStatus turns a non-2xx response into a classified error. The
// message comes from a JSON {"error": "..."} body when present, else from the
// status line.
func classifyStatus(endpoint string, resp *http.Response, body []byte) *Error {
	e := &Error{
		Kind:     KindServer,
		Status:   resp.StatusCode,
		Body:     strings.TrimSpace(string(body)),
		Endpoint: endpoint,
	}
	if resp.StatusCode == http.StatusUnauthorized {
		e.Kind = KindUnauthorized
	}

	e.Message = serverErrorField(body)
	if e.Message == "" {
		e.Message = statusText(resp)
	}
	if e.Message == "" {
		e.Message = "Server error"
	}
	return e
}

func serverErrorField(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.Error)
}

// statusText returns the reason phrase of the status line ("Not Found").
func statusText(resp *http.Response) string {
	if resp.Status != "" {
		code := strconv.Itoa(resp.StatusCode)
		if text := strings.TrimSpace(strings.TrimPrefix(resp.Status, code)); text != "" {
			return text
		}
	}
	return http.StatusText(resp.StatusCode)
}

// decodeJSON decodes a successful response body into out. A 2xx body that
// does not match the expected shape is the server's fault, not the caller's.
func decodeJSON(endpoint string, status int, body []byte, out any) *Error {
	if err := json.Unmarshal(body, out); err != nil {
		return &Error{
			Kind:     KindServer,
			Message:  "invalid response from server",
			Status:   status,
			Endpoint: endpoint,
			Err:      fmt.Errorf("decode %s: %w", endpoint, err),
		}
	}
	return nil
}
