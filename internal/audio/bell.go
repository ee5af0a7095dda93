package audio

import (
	"io"
	"sync"
)

// BellDriver rings the terminal bell at the start of every tone. The bell
// has no length, so Long and Short only differ in the silence after them.
type BellDriver struct {
	mu  sync.Mutex
	out io.Writer
}

// NewBellDriver creates a driver that writes BEL to out.
func NewBellDriver(out io.Writer) *BellDriver {
	return &BellDriver{out: out}
}

// Engage rings the bell.
func (d *BellDriver) Engage() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, err := io.WriteString(d.out, "\a")
	return err
}

// Disengage is a no-op.
func (d *BellDriver) Disengage() error {
	return nil
}

// Close is a no-op.
func (d *BellDriver) Close() error {
	return nil
}
