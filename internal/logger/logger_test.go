package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		env, level string
		wantErr    bool
	}{
		{"prod", "", false},
		{"local", "", false},
		{"local", "debug", false},
		{"prod", "warn", false},
		{"local", "loud", true},
	}
	for _, tc := range tests {
		l, err := NewLogger(tc.env, tc.level)
		if (err != nil) != tc.wantErr {
			t.Errorf("NewLogger(%q, %q) error = %v, wantErr %v", tc.env, tc.level, err, tc.wantErr)
			continue
		}
		if err == nil && l == nil {
			t.Errorf("NewLogger(%q, %q) returned nil logger", tc.env, tc.level)
		}
	}
}

func TestContext_RoundTrip(t *testing.T) {
	l := zap.NewNop()
	ctx := ContextWithLogger(context.Background(), l)
	if FromContext(ctx) != l {
		t.Error("logger not carried through context")
	}
}

func TestContext_FallbackIsNoop(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Error("expected no-op logger, got nil")
	}
}
