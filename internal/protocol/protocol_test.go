package protocol

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestHandshakeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   Handshake
		want Handshake
	}{
		{
			name: "PasswordAndNickname",
			in:   Handshake{Index: 3, Mode: 1, Password: "abcd", Nickname: "Ann"},
			want: Handshake{Index: 3, Mode: 1, Password: "abcd", Nickname: "Ann"},
		},
		{
			name: "PasswordOnly",
			in:   Handshake{Index: 0, Mode: 0, Password: "wxyz"},
			want: Handshake{Index: 0, Mode: 0, Password: "wxyz"},
		},
		{
			name: "FullWidthNickname",
			in:   Handshake{Index: 7, Mode: 1, Password: "qqqq", Nickname: "sixteenchars-abc"},
			want: Handshake{Index: 7, Mode: 1, Password: "qqqq", Nickname: "sixteenchars-abc"},
		},
		{
			name: "IndexClampedHigh",
			in:   Handshake{Index: 12, Mode: 5, Password: "abcd", Nickname: "Bo"},
			want: Handshake{Index: 7, Mode: 1, Password: "abcd", Nickname: "Bo"},
		},
		{
			name: "IndexClampedLow",
			in:   Handshake{Index: -2, Mode: -1, Password: "abcd"},
			want: Handshake{Index: 0, Mode: 0, Password: "abcd"},
		},
		{
			name: "NicknameWhitespaceTrimmed",
			in:   Handshake{Index: 1, Mode: 0, Password: "abcd", Nickname: "  Cleo  "},
			want: Handshake{Index: 1, Mode: 0, Password: "abcd", Nickname: "Cleo"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := tt.in.Encode()
			if len(frame) != HandshakeLen {
				t.Fatalf("encoded frame is %d bytes, want %d", len(frame), HandshakeLen)
			}
			got, err := DecodeHandshake(bytes.NewReader(frame))
			if err != nil {
				t.Fatalf("DecodeHandshake: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestHandshakePadding(t *testing.T) {
	frame := Handshake{Index: 2, Password: "abcd", Nickname: "Jo"}.Encode()

	// password (4) + nickname (2) leaves 14 bytes of padding.
	for i := 2 + 6; i < HandshakeLen; i++ {
		if frame[i] != 0x08 {
			t.Fatalf("frame[%d] = %#x, want padding 0x08", i, frame[i])
		}
	}
}

func TestDecodeHandshakeTooShort(t *testing.T) {
	for _, n := range []int{0, 1, 21} {
		if _, err := DecodeHandshake(bytes.NewReader(make([]byte, n))); !errors.Is(err, ErrFrameTooShort) {
			t.Errorf("%d bytes: got %v, want ErrFrameTooShort", n, err)
		}
	}
}

func TestReadFrameControls(t *testing.T) {
	closeFrame, err := ReadFrame(bytes.NewReader(EncodeClose()))
	if err != nil {
		t.Fatalf("ReadFrame(close): %v", err)
	}
	if closeFrame.Kind != FrameClose {
		t.Errorf("close frame kind = %v, want FrameClose", closeFrame.Kind)
	}

	pingFrame, err := ReadFrame(bytes.NewReader(EncodePing()))
	if err != nil {
		t.Fatalf("ReadFrame(ping): %v", err)
	}
	if pingFrame.Kind != FramePing {
		t.Errorf("ping frame kind = %v, want FramePing", pingFrame.Kind)
	}
}

func TestReadFrameButtons(t *testing.T) {
	events := []ButtonEvent{
		{Button: 8, Pressed: true},
		{Button: 13, Pressed: false},
		{Button: 0, Pressed: true},
	}
	data, err := EncodeButtons(events)
	if err != nil {
		t.Fatalf("EncodeButtons: %v", err)
	}

	frame, err := ReadFrame(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if frame.Kind != FrameButtons {
		t.Fatalf("frame kind = %v, want FrameButtons", frame.Kind)
	}
	if len(frame.Events) != len(events) {
		t.Fatalf("got %d events, want %d", len(frame.Events), len(events))
	}
	for i, ev := range frame.Events {
		if ev != events[i] {
			t.Errorf("event %d = %+v, want %+v", i, ev, events[i])
		}
	}
}

func TestReadFrameNonzeroMeansPressed(t *testing.T) {
	frame, err := ReadFrame(bytes.NewReader([]byte{1, 4, 0xff}))
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if !frame.Events[0].Pressed {
		t.Errorf("value 0xff decoded as released, want pressed")
	}
}

func TestReadFrameErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{name: "Reserved15", data: []byte{15}, want: ErrReservedOpcode},
		{name: "Reserved16", data: []byte{16}, want: ErrReservedOpcode},
		{name: "Reserved17", data: []byte{17}, want: ErrReservedOpcode},
		{name: "CountTooHigh", data: []byte{20}, want: ErrInvalidButtonCount},
		{name: "ButtonOutOfRange", data: []byte{1, 14, 1}, want: ErrInvalidButton},
		{name: "TruncatedEvents", data: []byte{3, 1, 1}, want: ErrFrameTooShort},
		{name: "EmptyRead", data: nil, want: io.EOF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadFrame(bytes.NewReader(tt.data)); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEncodeButtonsRejectsOversizedBatch(t *testing.T) {
	events := make([]ButtonEvent, MaxButtons+1)
	if _, err := EncodeButtons(events); !errors.Is(err, ErrTooManyEvents) {
		t.Errorf("got %v, want ErrTooManyEvents", err)
	}
}

func TestButtonName(t *testing.T) {
	tests := []struct {
		index int
		want  string
	}{
		{0, "north"},
		{8, "select"},
		{13, "right"},
		{14, ""},
		{-1, ""},
	}
	for _, tt := range tests {
		if got := ButtonName(tt.index); got != tt.want {
			t.Errorf("ButtonName(%d) = %q, want %q", tt.index, got, tt.want)
		}
	}
}
