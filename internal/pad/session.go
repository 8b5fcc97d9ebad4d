package pad

import (
	"time"

	"github.com/google/uuid"

	"github.com/virtualpad/server/internal/device"
)

// Session is the live binding between one connection and one claimed
// slot. It is owned exclusively by the connection handler that claimed
// it; only Emit may be called without holding the registry lock, and
// only by that handler.
type Session struct {
	ID       string
	Slot     int
	Nickname string
	Mode     int
	Remote   string

	dev        device.Pad
	lastActive time.Time
}

func newSession(slot int, nickname string, mode int, remote string, dev device.Pad) *Session {
	return &Session{
		ID:         uuid.NewString(),
		Slot:       slot,
		Nickname:   nickname,
		Mode:       mode,
		Remote:     remote,
		dev:        dev,
		lastActive: time.Now(),
	}
}

// Emit forwards one button change to the slot's device. After a force
// clear the device is closed and Emit reports device.ErrClosed, which
// tells the handler its slot is gone.
func (s *Session) Emit(button int, pressed bool) error {
	return s.dev.Emit(button, pressed)
}
