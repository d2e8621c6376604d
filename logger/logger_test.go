package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"WARN", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew(t *testing.T) {
	for _, env := range []string{"production", "development"} {
		log, err := New(Config{Level: "debug", Environment: env, ServiceName: "test"})
		if err != nil {
			t.Fatalf("%s: %v", env, err)
		}
		if !log.Core().Enabled(zapcore.DebugLevel) {
			t.Errorf("%s: debug should be enabled", env)
		}
	}
}
