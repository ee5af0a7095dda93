package morse

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

// TestDefaultConfig tests that default configuration is valid.
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}
	if cfg.TempoDuration() != DefaultTempo {
		t.Errorf("Expected default tempo %v, got %v", DefaultTempo, cfg.TempoDuration())
	}
	if cfg.Driver != "oto" {
		t.Errorf("Default driver should be oto, got %s", cfg.Driver)
	}
	if !cfg.Sanitize {
		t.Error("Sanitize should be enabled by default")
	}
}

// TestConfigValidation tests configuration validation.
func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid config",
			modify: func(c *Config) {},
		},
		{
			name:    "zero tempo",
			modify:  func(c *Config) { c.Tempo = 0 },
			wantErr: true,
			errMsg:  "tempo must be between",
		},
		{
			name: "zero tempo with wpm",
			modify: func(c *Config) {
				c.Tempo = 0
				c.WPM = 20
			},
		},
		{
			name:    "wpm too high",
			modify:  func(c *Config) { c.WPM = 500 },
			wantErr: true,
			errMsg:  "wpm must be between",
		},
		{
			name:    "invalid driver",
			modify:  func(c *Config) { c.Driver = "kazoo" },
			wantErr: true,
			errMsg:  "driver must be one of",
		},
		{
			name:    "frequency too low",
			modify:  func(c *Config) { c.Frequency = 5 },
			wantErr: true,
			errMsg:  "frequency must be between",
		},
		{
			name:    "volume too high",
			modify:  func(c *Config) { c.Volume = 1.5 },
			wantErr: true,
			errMsg:  "volume must be between",
		},
		{
			name:    "odd sample rate",
			modify:  func(c *Config) { c.SampleRate = 22050 },
			wantErr: true,
			errMsg:  "sample rate must be",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error but got none")
				}
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("Expected ErrInvalidConfig, got %v", err)
				}
				if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("Expected error containing %q, got %q", tt.errMsg, err.Error())
				}
				return
			}
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

// TestTempoDuration tests that wpm overrides tempo.
func TestTempoDuration(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tempo = 75
	if got := cfg.TempoDuration(); got != 75*time.Millisecond {
		t.Errorf("Expected 75ms, got %v", got)
	}

	cfg.WPM = 20
	if got := cfg.ToSchedulerConfig().Tempo; got != 60*time.Millisecond {
		t.Errorf("Expected 60ms, got %v", got)
	}
}

// TestLoadConfig tests loading from Viper.
func TestLoadConfig(t *testing.T) {
	v := viper.New()
	v.Set("tempo", 40)
	v.Set("driver", "bell")
	v.Set("volume", 0.25)
	v.Set("sanitize", false)

	cfg, err := LoadConfig(v)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Tempo != 40 || cfg.Driver != "bell" || cfg.Volume != 0.25 || cfg.Sanitize {
		t.Errorf("Unexpected config: %+v", cfg)
	}
	if cfg.Frequency != 880 {
		t.Errorf("Expected default frequency to survive, got %v", cfg.Frequency)
	}

	v.Set("sample_rate", 8000)
	if _, err := LoadConfig(v); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}
