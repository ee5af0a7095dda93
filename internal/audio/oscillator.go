package audio

import (
	"encoding/binary"
	"math"
	"sync/atomic"
)

// rampDuration is how long the envelope takes to go from silence to full
// level, in seconds. Without it every key press clicks.
const rampDuration = 0.005

// Oscillator is an endless sine source whose output is gated on and off.
// It can be read as 16-bit little endian mono PCM or streamed as beep
// stereo samples. Only one goroutine may read from it; the gate may be
// switched from any goroutine.
type Oscillator struct {
	frequency  float64
	sampleRate int
	volume     float64

	gate atomic.Bool

	// Owned by the reading goroutine
	phase float64
	gain  float64
	step  float64
}

// NewOscillator creates a silent oscillator.
func NewOscillator(frequency float64, sampleRate int, volume float64) *Oscillator {
	step := 1.0
	if n := rampDuration * float64(sampleRate); n > 1 {
		step = 1 / n
	}
	return &Oscillator{
		frequency:  frequency,
		sampleRate: sampleRate,
		volume:     volume,
		step:       step,
	}
}

// SetGate turns the tone on or off. The level follows within the ramp time.
func (o *Oscillator) SetGate(on bool) {
	o.gate.Store(on)
}

// Gate reports whether the tone is switched on.
func (o *Oscillator) Gate() bool {
	return o.gate.Load()
}

// next returns the next sample in [-volume, volume].
func (o *Oscillator) next() float64 {
	target := 0.0
	if o.gate.Load() {
		target = 1
	}
	switch {
	case o.gain < target:
		o.gain = math.Min(target, o.gain+o.step)
	case o.gain > target:
		o.gain = math.Max(target, o.gain-o.step)
	}

	v := math.Sin(2*math.Pi*o.phase) * o.gain * o.volume
	o.phase += o.frequency / float64(o.sampleRate)
	if o.phase >= 1 {
		o.phase--
	}
	return v
}

// Read fills p with whole 16-bit samples. It never returns an error.
func (o *Oscillator) Read(p []byte) (int, error) {
	n := len(p) &^ 1
	for i := 0; i < n; i += 2 {
		s := int16(o.next() * math.MaxInt16)
		binary.LittleEndian.PutUint16(p[i:], uint16(s))
	}
	return n, nil
}

// Stream implements beep.Streamer. The stream never drains.
func (o *Oscillator) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		v := o.next()
		samples[i][0] = v
		samples[i][1] = v
	}
	return len(samples), true
}

// Err implements beep.Streamer.
func (o *Oscillator) Err() error {
	return nil
}
