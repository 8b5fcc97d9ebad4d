package protocol

import (
	"fmt"
	"io"
)

// FrameKind discriminates the session frames that follow a successful
// handshake.
type FrameKind int

const (
	FrameButtons FrameKind = iota
	FramePing
	FrameClose
)

// ButtonEvent is one button delta inside a button frame. Any nonzero
// wire value decodes as pressed.
type ButtonEvent struct {
	Button  int
	Pressed bool
}

// Frame is one decoded session frame. Events is populated only for
// FrameButtons.
type Frame struct {
	Kind   FrameKind
	Events []ButtonEvent
}

// ReadFrame decodes the next session frame. The leading byte is a
// single decode table: 0..14 declare a button-delta count, 15..17 are
// reserved, 18 closes the session, 19 is a keepalive ping, and
// anything above is an invalid count. Read errors (including EOF on a
// frame boundary) pass through untouched so callers can tell a closed
// peer from a protocol violation.
func ReadFrame(r io.Reader) (Frame, error) {
	var head [1]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return Frame{}, err
	}

	lead := head[0]
	switch {
	case lead == OpClose:
		return Frame{Kind: FrameClose}, nil
	case lead == OpPing:
		return Frame{Kind: FramePing}, nil
	case lead > MaxButtons && lead < OpClose:
		return Frame{}, fmt.Errorf("%w: %d", ErrReservedOpcode, lead)
	case lead > OpPing:
		return Frame{}, fmt.Errorf("%w: %d", ErrInvalidButtonCount, lead)
	}

	count := int(lead)
	buf := make([]byte, count*2)
	if _, err := io.ReadFull(r, buf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return Frame{}, ErrFrameTooShort
		}
		return Frame{}, err
	}

	events := make([]ButtonEvent, 0, count)
	for i := 0; i < count; i++ {
		button := int(buf[2*i])
		if button >= MaxButtons {
			return Frame{}, fmt.Errorf("%w: %d", ErrInvalidButton, button)
		}
		events = append(events, ButtonEvent{Button: button, Pressed: buf[2*i+1] != 0})
	}
	return Frame{Kind: FrameButtons, Events: events}, nil
}

// EncodeButtons renders a button frame for up to MaxButtons deltas.
func EncodeButtons(events []ButtonEvent) ([]byte, error) {
	if len(events) > MaxButtons {
		return nil, fmt.Errorf("%w: %d", ErrTooManyEvents, len(events))
	}
	buf := make([]byte, 0, 1+2*len(events))
	buf = append(buf, byte(len(events)))
	for _, ev := range events {
		if ev.Button < 0 || ev.Button >= MaxButtons {
			return nil, fmt.Errorf("%w: %d", ErrInvalidButton, ev.Button)
		}
		state := byte(0)
		if ev.Pressed {
			state = 1
		}
		buf = append(buf, byte(ev.Button), state)
	}
	return buf, nil
}

// EncodeClose renders the close-connection control frame.
func EncodeClose() []byte { return []byte{OpClose} }

// EncodePing renders the keepalive control frame.
func EncodePing() []byte { return []byte{OpPing} }
