//go:build !nocgo
// +build !nocgo

package audio

import (
	"fmt"
	"math"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
)

// BeepDriver keys a sine tone through the beep speaker.
type BeepDriver struct {
	osc  *Oscillator
	ctrl *beep.Ctrl

	mu     sync.Mutex
	closed bool
}

// NewBeepDriver initializes the speaker and starts the tone stream. The
// speaker is process wide, so only one BeepDriver should be open at a time.
func NewBeepDriver(cfg DriverConfig) (*BeepDriver, error) {
	sr := beep.SampleRate(cfg.SampleRate)
	if err := speaker.Init(sr, sr.N(cfg.BufferSize)); err != nil {
		return nil, fmt.Errorf("failed to initialize speaker: %w", err)
	}

	osc := NewOscillator(cfg.Frequency, cfg.SampleRate, 1)
	ctrl := &beep.Ctrl{Streamer: osc}
	speaker.Play(&effects.Volume{
		Streamer: ctrl,
		Base:     2,
		Volume:   gain(cfg.Volume),
		Silent:   cfg.Volume <= 0,
	})

	log.Debug("Beep tone driver ready", "buffer", cfg.BufferSize)

	return &BeepDriver{osc: osc, ctrl: ctrl}, nil
}

// gain converts a linear volume to the exponent used by effects.Volume.
func gain(volume float64) float64 {
	if volume <= 0 {
		return 0
	}
	return math.Log2(volume)
}

// Engage turns the tone on.
func (d *BeepDriver) Engage() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrDriverUnavailable
	}
	d.osc.SetGate(true)
	return nil
}

// Disengage turns the tone off.
func (d *BeepDriver) Disengage() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.osc.SetGate(false)
	if d.closed {
		return ErrDriverUnavailable
	}
	return nil
}

// Close stops the stream and releases the speaker.
func (d *BeepDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true

	speaker.Lock()
	d.ctrl.Streamer = nil
	speaker.Unlock()

	speaker.Clear()
	speaker.Close()
	return nil
}
