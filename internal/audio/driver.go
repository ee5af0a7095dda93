package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// ErrDriverUnavailable is returned when a driver cannot be used in this
// build or on this machine.
var ErrDriverUnavailable = errors.New("tone driver unavailable")

// Driver is a tone actuator that owns a device and must be closed.
type Driver interface {
	Engage() error
	Disengage() error
	Close() error
}

// DriverConfig selects and configures a tone driver.
type DriverConfig struct {
	Name       string        // oto, beep, bell or mock
	Frequency  float64       // Tone pitch in Hz
	Volume     float64       // 0.0 to 1.0
	SampleRate int           // 44100 or 48000 Hz
	BufferSize time.Duration // Device buffer; small values keep the keying crisp
	Output     io.Writer     // Terminal for the bell driver, defaults to stdout
}

// DefaultDriverConfig returns the configuration used when nothing is set.
func DefaultDriverConfig() DriverConfig {
	return DriverConfig{
		Name:       "oto",
		Frequency:  880,
		Volume:     0.5,
		SampleRate: 44100,
		BufferSize: 20 * time.Millisecond,
	}
}

// NewDriver creates the driver named in cfg.
func NewDriver(cfg DriverConfig) (Driver, error) {
	if cfg.SampleRate != 44100 && cfg.SampleRate != 48000 {
		return nil, fmt.Errorf("sample rate must be 44100 or 48000 Hz, got %d", cfg.SampleRate)
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultDriverConfig().BufferSize
	}

	log.Debug("Creating tone driver",
		"driver", cfg.Name,
		"frequency", cfg.Frequency,
		"volume", cfg.Volume,
		"sample_rate", cfg.SampleRate)

	switch cfg.Name {
	case "oto":
		return NewOtoDriver(cfg)
	case "beep":
		return NewBeepDriver(cfg)
	case "bell":
		out := cfg.Output
		if out == nil {
			out = os.Stdout
		}
		return NewBellDriver(out), nil
	case "mock":
		return NewMockDriver(), nil
	default:
		return nil, fmt.Errorf("unknown tone driver: %q", cfg.Name)
	}
}
