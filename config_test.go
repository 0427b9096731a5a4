package cacheprobe

import (
	"errors"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.MinSizeBytes != 8*KiB || cfg.MaxSizeBytes != 256*KiB {
		t.Errorf("sweep = %d..%d, want 8 KiB..256 KiB", cfg.MinSizeBytes, cfg.MaxSizeBytes)
	}
	if cfg.Hops != 1000000 || cfg.WindowSize != 3 || cfg.Alignment != 4*KiB {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"min below slot", func(c *Config) { c.MinSizeBytes = PointerWidth - 1 }},
		{"max below min", func(c *Config) { c.MaxSizeBytes = c.MinSizeBytes - 1 }},
		{"zero hops", func(c *Config) { c.Hops = 0 }},
		{"window of one", func(c *Config) { c.WindowSize = 1 }},
		{"ratio of one", func(c *Config) { c.CollapseRatio = 1 }},
		{"odd alignment", func(c *Config) { c.Alignment = 3000 }},
		{"tiny alignment", func(c *Config) { c.Alignment = 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			if err := cfg.Validate(); !IsInvalidArgError(err) {
				t.Errorf("Validate() = %v, want invalid argument", err)
			}
		})
	}

	cfg := DefaultConfig()
	cfg.WindowSize = 0
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidWindow) {
		t.Errorf("Validate() = %v, want ErrInvalidWindow", err)
	}
}
