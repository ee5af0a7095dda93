//go:build nocgo
// +build nocgo

package audio

// BeepDriver stub for nocgo builds
type BeepDriver struct{}

// NewBeepDriver always fails in nocgo builds.
func NewBeepDriver(cfg DriverConfig) (*BeepDriver, error) {
	return nil, ErrDriverUnavailable
}

func (d *BeepDriver) Engage() error    { return ErrDriverUnavailable }
func (d *BeepDriver) Disengage() error { return ErrDriverUnavailable }
func (d *BeepDriver) Close() error     { return nil }
