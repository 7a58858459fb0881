package backend

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies why a request failed.
type Kind int

const (
	// KindClient means the request never left the process (bad URL, unencodable body).
	KindClient Kind = iota
	// KindNetwork means the request was dispatched but no response came back.
	KindNetwork
	// KindServer means a non-2xx, non-401 response (or an unreadable 2xx body).
	KindServer
	// KindUnauthorized means the server answered 401.
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindServer:
		return "server_error"
	case KindNetwork:
		return "network_error"
	default:
		return "client_error"
	}
}

// NetworkMessage is the message carried by every KindNetwork error.
const NetworkMessage = "No response from server. Please check your network connection."

// Error is the classified failure returned by Client.Send and every API method.
type Error struct {
	Kind     Kind
	Message  string
	Status   int    // 0 unless a response was received
	Body     string // raw response body, trimmed
	Endpoint string
	Err      error
}

func (e *Error) Error() string {
	if e.Endpoint != "" {
		return fmt.Sprintf("%s: %s", e.Endpoint, e.Message)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Reason prefers the plain-text body the server sent (e.g. a login failure
// reason) over the classified message.
func (e *Error) Reason() string {
	if e.Body != "" && len(e.Body) <= 200 && !strings.HasPrefix(e.Body, "{") {
		return e.Body
	}
	return e.Message
}

// AsError extracts the classified error from err, if there is one.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the classification of err. Unclassified errors report KindClient.
func KindOf(err error) Kind {
	if e, ok := AsError(err); ok {
		return e.Kind
	}
	return KindClient
}

// IsUnauthorized reports whether err is a 401 from the server.
func IsUnauthorized(err error) bool {
	e, ok := AsError(err)
	return ok && e.Kind == KindUnauthorized
}

func clientError(endpoint string, err error) *Error {
	return &Error{Kind: KindClient, Message: err.Error(), Endpoint: endpoint, Err: err}
}

func networkError(endpoint string, err error) *Error {
	return &Error{Kind: KindNetwork, Message: NetworkMessage, Endpoint: endpoint, Err: err}
}
