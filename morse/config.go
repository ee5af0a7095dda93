package morse

import (
	"fmt"
	"strings"
	"time"
)

// DefaultTempo is the length of one unit when nothing else is configured.
const DefaultTempo = 100 * time.Millisecond

// Drivers that can be named in the configuration.
var Drivers = []string{"oto", "beep", "bell", "mock"}

// Config contains all playback configuration options.
type Config struct {
	// Timing
	Tempo int `yaml:"tempo" env:"MORSE_TEMPO" envDefault:"100"` // Unit length in milliseconds
	WPM   int `yaml:"wpm" env:"MORSE_WPM" envDefault:"0"`       // Words per minute, overrides Tempo when set

	// Tone settings
	Driver     string  `yaml:"driver" env:"MORSE_DRIVER" envDefault:"oto"`
	Frequency  float64 `yaml:"frequency" env:"MORSE_FREQUENCY" envDefault:"880"`
	Volume     float64 `yaml:"volume" env:"MORSE_VOLUME" envDefault:"0.5"`
	SampleRate int     `yaml:"sample_rate" env:"MORSE_SAMPLE_RATE" envDefault:"44100"`

	// Input handling
	Sanitize bool `yaml:"sanitize" env:"MORSE_SANITIZE" envDefault:"true"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Tempo:      int(DefaultTempo / time.Millisecond),
		WPM:        0,
		Driver:     "oto",
		Frequency:  880,
		Volume:     0.5,
		SampleRate: 44100,
		Sanitize:   true,
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	var errs []string

	if c.WPM < 0 || c.WPM > 100 {
		errs = append(errs, fmt.Sprintf("wpm must be between 0 and 100, got %d", c.WPM))
	}
	if c.WPM == 0 && (c.Tempo < 1 || c.Tempo > 10000) {
		errs = append(errs, fmt.Sprintf("tempo must be between 1 and 10000 ms, got %d", c.Tempo))
	}

	if !validDriver(c.Driver) {
		errs = append(errs, fmt.Sprintf("driver must be one of %s, got %q", strings.Join(Drivers, ", "), c.Driver))
	}
	if c.Frequency < 20 || c.Frequency > 20000 {
		errs = append(errs, fmt.Sprintf("frequency must be between 20 and 20000 Hz, got %.1f", c.Frequency))
	}
	if c.Volume < 0 || c.Volume > 1 {
		errs = append(errs, fmt.Sprintf("volume must be between 0.0 and 1.0, got %.2f", c.Volume))
	}
	if c.SampleRate != 44100 && c.SampleRate != 48000 {
		errs = append(errs, fmt.Sprintf("sample rate must be 44100 or 48000, got %d", c.SampleRate))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(errs, "; "))
	}
	return nil
}

func validDriver(name string) bool {
	for _, d := range Drivers {
		if d == name {
			return true
		}
	}
	return false
}

// TempoDuration returns the unit length, derived from WPM when it is set.
func (c *Config) TempoDuration() time.Duration {
	if c.WPM > 0 {
		return TempoFromWPM(c.WPM)
	}
	return time.Duration(c.Tempo) * time.Millisecond
}

// ToSchedulerConfig converts the configuration for NewScheduler.
func (c *Config) ToSchedulerConfig() SchedulerConfig {
	cfg := DefaultSchedulerConfig()
	cfg.Tempo = c.TempoDuration()
	return cfg
}
