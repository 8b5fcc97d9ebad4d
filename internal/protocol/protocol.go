// Package protocol implements the binary wire format spoken on the pad
// session socket: the fixed 22-byte authentication frame a client sends
// once after connecting, and the variable session frames (button-delta
// batches, ping, close) that follow.
package protocol

import "errors"

const (
	// HandshakeLen is the size of the authentication frame.
	HandshakeLen = 22

	// handshakePayloadLen is the password+nickname portion of the frame.
	handshakePayloadLen = 20

	// PasswordLen is the exact length of a slot password.
	PasswordLen = 4

	// MaxNicknameLen caps the nickname carried in the handshake.
	MaxNicknameLen = 16

	// MaxPads is the number of addressable slots.
	MaxPads = 8

	// MaxButtons is the number of mappable buttons. Leading bytes 0 to
	// MaxButtons on a session frame declare a button-delta count.
	MaxButtons = 14

	// padByte fills the unused tail of the handshake payload.
	padByte = 0x08
)

// Session frame opcodes. Leading bytes between MaxButtons+1 and
// OpClose-1 are reserved and rejected.
const (
	OpClose byte = 18
	OpPing  byte = 19
)

// Handshake reply codes. These four are the whole wire contract; the
// server writes exactly one of them after reading the handshake.
const (
	ReplyOK          byte = 0
	ReplyLoginFailed byte = 1
	ReplyPadInvalid  byte = 2
	ReplyPadBusy     byte = 3
)

var (
	ErrFrameTooShort      = errors.New("frame too short")
	ErrReservedOpcode     = errors.New("reserved opcode")
	ErrInvalidButtonCount = errors.New("invalid button count")
	ErrInvalidButton      = errors.New("invalid button index")
	ErrTooManyEvents      = errors.New("too many button events for one frame")
)

var buttonNames = [MaxButtons]string{
	"north", "east", "south", "west",
	"l1", "r1", "l2", "r2",
	"select", "start",
	"up", "down", "left", "right",
}

// ButtonName returns the fixed name for a button index, or "" when the
// index is outside the button table.
func ButtonName(index int) string {
	if index < 0 || index >= MaxButtons {
		return ""
	}
	return buttonNames[index]
}
