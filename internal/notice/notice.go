// Package notice holds the user-visible notifications raised by the panel.
package notice

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Severity orders notices from informational to failure.
type Severity int

const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeveritySuccess:
		return "success"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "info"
	}
}

// Default lifetimes.
const (
	InfoTTL    = 3 * time.Second
	WarningTTL = 3 * time.Second
	ErrorTTL   = 5 * time.Second
)

// SessionExpired is shown when any call is answered with 401.
const SessionExpired = "Session expired or unauthorized. Please login again."

// Notice is one toast line.
type Notice struct {
	ID       ulid.ULID
	Severity Severity
	Message  string
	TTL      time.Duration
}

func newNotice(sev Severity, msg string, ttl time.Duration) Notice {
	return Notice{ID: ulid.Make(), Severity: sev, Message: msg, TTL: ttl}
}

// Info returns an informational notice.
func Info(msg string) Notice { return newNotice(SeverityInfo, msg, InfoTTL) }

// Success returns a notice confirming a finished operation.
func Success(msg string) Notice { return newNotice(SeveritySuccess, msg, InfoTTL) }

// Warning returns a warning notice, used for session expiry.
func Warning(msg string) Notice { return newNotice(SeverityWarning, msg, WarningTTL) }

// Error returns an error notice carrying a failure's message.
func Error(msg string) Notice { return newNotice(SeverityError, msg, ErrorTTL) }

// Notifier receives notices.
type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

// Notify calls f.
func (f NotifierFunc) Notify(n Notice) { f(n) }
