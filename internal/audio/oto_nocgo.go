//go:build nocgo
// +build nocgo

package audio

// Stub implementations for builds without CGO

// OtoDriver stub for nocgo builds
type OtoDriver struct{}

// NewOtoDriver always fails in nocgo builds.
func NewOtoDriver(cfg DriverConfig) (*OtoDriver, error) {
	return nil, ErrDriverUnavailable
}

func (d *OtoDriver) Engage() error    { return ErrDriverUnavailable }
func (d *OtoDriver) Disengage() error { return ErrDriverUnavailable }
func (d *OtoDriver) Close() error     { return nil }
