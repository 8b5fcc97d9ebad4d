// Package pad owns the eight gamepad slots: authentication and claim,
// release, administrative clears, password resets and status
// snapshots. The registry is the only state shared between connection
// handlers and the admin channel; one mutex serializes every mutation.
package pad

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/virtualpad/server/internal/device"
)

// SlotCount is the fixed slot population.
const SlotCount = 8

const (
	StatusIdle   = "idle"
	StatusActive = "active"
)

var (
	ErrPadInvalid   = errors.New("pad index out of range")
	ErrPadBusy      = errors.New("pad in use")
	ErrLoginFailure = errors.New("login failed")
)

// Notifier receives slot lifecycle notifications. Implementations must
// not call back into the registry from the notification path.
type Notifier interface {
	SlotClaimed(index int, nickname string)
	SlotCleared(index int)
	AllCleared()
	SlotTimedOut(index int)
}

type noopNotifier struct{}

func (noopNotifier) SlotClaimed(int, string) {}
func (noopNotifier) SlotCleared(int)         {}
func (noopNotifier) AllCleared()             {}
func (noopNotifier) SlotTimedOut(int)        {}

// SlotInfo is one slot's entry in a status snapshot. Nickname, Mode
// and Session are meaningful only while the slot is active.
type SlotInfo struct {
	Index    int    `json:"index"`
	Status   string `json:"status"`
	Nickname string `json:"nickname,omitempty"`
	Mode     int    `json:"mode"`
	Session  string `json:"session,omitempty"`
}

type slot struct {
	password string
	session  *Session
}

// Registry holds the fixed population of slots.
type Registry struct {
	mu         sync.Mutex
	slots      [SlotCount]slot
	devices    device.Factory
	deviceName string
	notifier   Notifier
}

// New builds a registry with freshly generated passwords. A nil
// factory falls back to the null device; a nil notifier is allowed.
func New(devices device.Factory, deviceName string, notifier Notifier) *Registry {
	if devices == nil {
		devices = device.NullFactory
	}
	if notifier == nil {
		notifier = noopNotifier{}
	}
	r := &Registry{
		devices:    devices,
		deviceName: deviceName,
		notifier:   notifier,
	}
	for i := range r.slots {
		r.slots[i].password = newPassword()
	}
	return r
}

// AuthenticateAndClaim validates the credentials and, in the same
// critical section, transitions the slot to active. Two concurrent
// claims on the same idle slot cannot both succeed.
func (r *Registry) AuthenticateAndClaim(index int, password, nickname string, mode int, remote string) (*Session, error) {
	if index < 0 || index >= SlotCount {
		return nil, ErrPadInvalid
	}
	// Encode clamps, but raw frames can carry anything.
	if mode != 0 && mode != 1 {
		return nil, ErrLoginFailure
	}
	if !ValidPassword(password) {
		return nil, ErrLoginFailure
	}

	r.mu.Lock()
	s := &r.slots[index]
	if s.session != nil {
		r.mu.Unlock()
		return nil, ErrPadBusy
	}
	if password != s.password {
		r.mu.Unlock()
		return nil, ErrLoginFailure
	}
	dev, err := r.devices(fmt.Sprintf("%s-%d", r.deviceName, index))
	if err != nil {
		r.mu.Unlock()
		return nil, fmt.Errorf("opening device for pad %d: %w", index, err)
	}
	sess := newSession(index, nickname, mode, remote, dev)
	s.session = sess
	r.mu.Unlock()

	r.notifier.SlotClaimed(index, nickname)
	return sess, nil
}

// Release returns the session's slot to idle and closes its device.
// Releasing a session that was already released or force-cleared is a
// no-op.
func (r *Registry) Release(sess *Session) {
	if sess == nil {
		return
	}
	r.mu.Lock()
	s := &r.slots[sess.Slot]
	if s.session != sess {
		r.mu.Unlock()
		return
	}
	s.session = nil
	r.mu.Unlock()

	sess.dev.Close()
	r.notifier.SlotCleared(sess.Slot)
}

// Touch refreshes the session's last-activity stamp if it still owns
// its slot.
func (r *Registry) Touch(sess *Session) {
	if sess == nil {
		return
	}
	r.mu.Lock()
	if r.slots[sess.Slot].session == sess {
		sess.lastActive = time.Now()
	}
	r.mu.Unlock()
}

// Clear idles a slot. An active slot is only disturbed when force is
// set; without it the call fails with ErrPadBusy and the session stays
// intact.
func (r *Registry) Clear(index int, force bool) error {
	if index < 0 || index >= SlotCount {
		return ErrPadInvalid
	}
	r.mu.Lock()
	s := &r.slots[index]
	if s.session == nil {
		r.mu.Unlock()
		return nil
	}
	if !force {
		r.mu.Unlock()
		return ErrPadBusy
	}
	sess := s.session
	s.session = nil
	r.mu.Unlock()

	sess.dev.Close()
	r.notifier.SlotCleared(index)
	return nil
}

// ClearAll force-clears every slot.
func (r *Registry) ClearAll() {
	r.mu.Lock()
	var dropped []*Session
	for i := range r.slots {
		if sess := r.slots[i].session; sess != nil {
			dropped = append(dropped, sess)
			r.slots[i].session = nil
		}
	}
	r.mu.Unlock()

	for _, sess := range dropped {
		sess.dev.Close()
	}
	r.notifier.AllCleared()
}

// ResetPasswords assigns fresh passwords to the given slots (none
// means all) and returns the full password list. Active sessions are
// left running; only future authentications see the new passwords.
func (r *Registry) ResetPasswords(indices []int) ([]string, error) {
	for _, i := range indices {
		if i < 0 || i >= SlotCount {
			return nil, ErrPadInvalid
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(indices) == 0 {
		for i := range r.slots {
			r.slots[i].password = newPassword()
		}
	} else {
		for _, i := range indices {
			r.slots[i].password = newPassword()
		}
	}
	return r.passwordsLocked(), nil
}

// Passwords returns the current password list. This is only ever
// exposed over the privileged admin channel.
func (r *Registry) Passwords() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.passwordsLocked()
}

func (r *Registry) passwordsLocked() []string {
	out := make([]string, SlotCount)
	for i := range r.slots {
		out[i] = r.slots[i].password
	}
	return out
}

// Status returns a consistent snapshot of every slot.
func (r *Registry) Status() []SlotInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]SlotInfo, SlotCount)
	for i := range r.slots {
		info := SlotInfo{Index: i, Status: StatusIdle}
		if sess := r.slots[i].session; sess != nil {
			info.Status = StatusActive
			info.Nickname = sess.Nickname
			info.Mode = sess.Mode
			info.Session = sess.ID
		}
		out[i] = info
	}
	return out
}

// TimedOut reports a keepalive expiry for the session's slot and
// releases it. The notification fires only if the session still owned
// its slot.
func (r *Registry) TimedOut(sess *Session) {
	if sess == nil {
		return
	}
	r.mu.Lock()
	owned := r.slots[sess.Slot].session == sess
	r.mu.Unlock()
	if owned {
		r.notifier.SlotTimedOut(sess.Slot)
	}
	r.Release(sess)
}
