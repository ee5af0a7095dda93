//go:build !nocgo
// +build !nocgo

package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"
)

// readyTimeout bounds how long we wait for the audio device.
const readyTimeout = 5 * time.Second

// OtoDriver keys a sine tone through an oto context. The player streams
// the oscillator for the lifetime of the driver; Engage and Disengage only
// flip the gate, so keying never waits on the device.
type OtoDriver struct {
	context *oto.Context
	player  *oto.Player
	osc     *Oscillator

	mu     sync.Mutex
	closed bool
}

// NewOtoDriver opens the default audio device.
func NewOtoDriver(cfg DriverConfig) (*OtoDriver, error) {
	options := &oto.NewContextOptions{
		SampleRate:   cfg.SampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   cfg.BufferSize,
	}

	context, readyChan, err := oto.NewContext(options)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio context: %w", err)
	}

	select {
	case <-readyChan:
	case <-time.After(readyTimeout):
		return nil, fmt.Errorf("%w: audio context not ready after %v", ErrDriverUnavailable, readyTimeout)
	}

	osc := NewOscillator(cfg.Frequency, cfg.SampleRate, cfg.Volume)
	player := context.NewPlayer(osc)
	// 16-bit mono: two bytes per sample
	player.SetBufferSize(int(cfg.BufferSize.Seconds()*float64(cfg.SampleRate)) * 2)
	player.Play()

	log.Debug("Oto tone driver ready", "buffer", cfg.BufferSize)

	return &OtoDriver{
		context: context,
		player:  player,
		osc:     osc,
	}, nil
}

// Engage turns the tone on.
func (d *OtoDriver) Engage() error {
	if err := d.check(); err != nil {
		return err
	}
	d.osc.SetGate(true)
	return nil
}

// Disengage turns the tone off.
func (d *OtoDriver) Disengage() error {
	d.osc.SetGate(false)
	return d.check()
}

func (d *OtoDriver) check() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrDriverUnavailable
	}
	if err := d.player.Err(); err != nil {
		return err
	}
	return d.context.Err()
}

// Close stops the stream and suspends the device.
func (d *OtoDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true
	d.osc.SetGate(false)

	if err := d.player.Close(); err != nil {
		return err
	}
	return d.context.Suspend()
}
