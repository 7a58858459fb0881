package notice

import (
	"testing"
	"time"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		n        Notice
		severity string
		ttl      time.Duration
	}{
		{"info", Info("m"), "info", InfoTTL},
		{"success", Success("m"), "success", InfoTTL},
		{"warning", Warning(SessionExpired), "warning", 3 * time.Second},
		{"error", Error("m"), "error", 5 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.n.Severity.String(); got != tt.severity {
				t.Errorf("Severity = %q, want %q", got, tt.severity)
			}
			if tt.n.TTL != tt.ttl {
				t.Errorf("TTL = %v, want %v", tt.n.TTL, tt.ttl)
			}
		})
	}

	if a, b := Info("a"), Info("a"); a.ID == b.ID {
		t.Error("two notices share an id")
	}
}
