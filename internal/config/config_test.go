package config

import "testing"

func TestIsProduction(t *testing.T) {
	tests := []struct {
		environment string
		want        bool
	}{
		{"production", true},
		{"development", false},
		{"staging", false},
		{"", false},
	}
	for _, tt := range tests {
		cfg := Config{Environment: tt.environment}
		if got := cfg.IsProduction(); got != tt.want {
			t.Errorf("IsProduction() with environment %q = %v, want %v", tt.environment, got, tt.want)
		}
	}
}
