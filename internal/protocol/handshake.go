package protocol

import (
	"bytes"
	"io"
	"strings"
)

// Handshake is the first frame on a new pad connection: the requested
// slot, the input-mapping mode, the password candidate and the
// nickname.
type Handshake struct {
	Index    int
	Mode     int
	Password string
	Nickname string
}

// DecodeHandshake reads exactly one authentication frame. The slot
// index is returned as sent; range validation belongs to the registry.
func DecodeHandshake(r io.Reader) (Handshake, error) {
	var buf [HandshakeLen]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return Handshake{}, ErrFrameTooShort
		}
		return Handshake{}, err
	}

	payload := string(bytes.TrimRight(buf[2:], "\x08"))
	password := payload
	nickname := ""
	if len(payload) > PasswordLen {
		password = payload[:PasswordLen]
		nickname = payload[PasswordLen:]
	}
	nickname = strings.TrimSpace(nickname)
	if len(nickname) > MaxNicknameLen {
		nickname = nickname[:MaxNicknameLen]
	}

	return Handshake{
		Index:    int(buf[0]),
		Mode:     int(buf[1]),
		Password: password,
		Nickname: nickname,
	}, nil
}

// Encode renders the 22-byte authentication frame. Index and mode are
// clamped to their valid ranges; the password+nickname concatenation is
// truncated to the payload size and padded.
func (h Handshake) Encode() []byte {
	buf := make([]byte, HandshakeLen)
	buf[0] = byte(clamp(h.Index, 0, MaxPads-1))
	buf[1] = byte(clamp(h.Mode, 0, 1))

	payload := h.Password + h.Nickname
	if len(payload) > handshakePayloadLen {
		payload = payload[:handshakePayloadLen]
	}
	copy(buf[2:], payload)
	for i := 2 + len(payload); i < HandshakeLen; i++ {
		buf[i] = padByte
	}
	return buf
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
