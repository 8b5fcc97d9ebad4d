// Package device defines the emit capability a claimed slot drives.
// The actual OS virtual-input backend is an external collaborator and
// plugs in through Factory; the null implementation here discards
// events and exists for wiring and tests.
package device

import (
	"errors"
	"sync"
)

// ErrClosed is returned by Emit after the pad has been closed, which
// happens when its slot is released or force-cleared.
var ErrClosed = errors.New("device closed")

// Pad is one virtual gamepad device.
type Pad interface {
	// Emit applies one button change to the device.
	Emit(button int, pressed bool) error
	Close() error
}

// Factory opens the device backing a slot. The name is unique per slot
// and stable for the registry's lifetime.
type Factory func(name string) (Pad, error)

// NullFactory builds pads that accept and discard all events.
func NullFactory(name string) (Pad, error) {
	return &nullPad{name: name}, nil
}

type nullPad struct {
	mu     sync.Mutex
	name   string
	closed bool
}

func (p *nullPad) Emit(button int, pressed bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	return nil
}

func (p *nullPad) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}
