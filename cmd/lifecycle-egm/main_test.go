package main

import (
	"testing"

	"github.com/iwvelando/lifecycle-egm/internal/config"
	"go.uber.org/zap/zapcore"
)

func TestInitializeLogger(t *testing.T) {
	tests := []struct {
		name      string
		config    config.LoggingConfig
		override  string
		wantError bool
	}{
		{
			name:      "Defaults",
			config:    config.LoggingConfig{},
			wantError: false,
		},
		{
			name:      "Console debug",
			config:    config.LoggingConfig{Level: "debug", Format: "console"},
			wantError: false,
		},
		{
			name:      "Override wins",
			config:    config.LoggingConfig{Level: "bogus"},
			override:  "warn",
			wantError: false,
		},
		{
			name:      "Invalid level",
			config:    config.LoggingConfig{Level: "trace"},
			wantError: true,
		},
		{
			name:      "Invalid format",
			config:    config.LoggingConfig{Format: "xml"},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := initializeLogger(tt.config, tt.override)
			if tt.wantError {
				if err == nil {
					t.Errorf("initializeLogger() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("initializeLogger() error = %v", err)
				return
			}
			if logger == nil {
				t.Errorf("initializeLogger() returned nil logger")
			}
		})
	}
}

func TestInitializeLoggerLevels(t *testing.T) {
	logger, err := initializeLogger(config.LoggingConfig{Level: "warn"}, "")
	if err != nil {
		t.Fatalf("initializeLogger() error = %v", err)
	}
	if logger.Core().Enabled(zapcore.DebugLevel) {
		t.Errorf("debug enabled at warn level")
	}
	if !logger.Core().Enabled(zapcore.WarnLevel) {
		t.Errorf("warn disabled at warn level")
	}
}

func TestParsePeriods(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		horizon   int
		expected  []int
		wantError bool
	}{
		{"Empty defaults to first", "", 60, []int{0}, false},
		{"Single", "5", 60, []int{5}, false},
		{"List with spaces", "0, 5, 59", 60, []int{0, 5, 59}, false},
		{"All", "all", 3, []int{0, 1, 2}, false},
		{"Garbage", "0,x", 60, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePeriods(tt.value, tt.horizon)
			if tt.wantError {
				if err == nil {
					t.Errorf("parsePeriods(%q) expected error but got none", tt.value)
				}
				return
			}
			if err != nil {
				t.Fatalf("parsePeriods(%q) error = %v", tt.value, err)
			}
			if len(got) != len(tt.expected) {
				t.Fatalf("parsePeriods(%q) = %v, expected %v", tt.value, got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("parsePeriods(%q)[%d] = %d, expected %d", tt.value, i, got[i], tt.expected[i])
				}
			}
		})
	}
}
