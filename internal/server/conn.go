package server

import (
	"errors"
	"io"
	"log"
	"net"
	"time"

	"github.com/virtualpad/server/internal/pad"
	"github.com/virtualpad/server/internal/protocol"
)

// handle runs one pad connection from handshake to teardown.
func (s *Service) handle(conn net.Conn) {
	defer conn.Close()
	defer s.untrack(conn)

	remote := conn.RemoteAddr().String()

	if s.authTimeout > 0 {
		conn.SetReadDeadline(time.Now().Add(s.authTimeout))
	}
	hs, err := protocol.DecodeHandshake(conn)
	if err != nil {
		log.Printf("pad handshake from %s failed: %v", remote, err)
		return
	}

	sess, err := s.registry.AuthenticateAndClaim(hs.Index, hs.Password, hs.Nickname, hs.Mode, remote)
	if err != nil {
		conn.Write([]byte{replyFor(err)})
		log.Printf("pad %d claim from %s rejected: %v", hs.Index, remote, err)
		return
	}
	defer s.registry.Release(sess)

	if _, err := conn.Write([]byte{protocol.ReplyOK}); err != nil {
		return
	}
	log.Printf("pad %d claimed by %q from %s (mode %d, session %s)", sess.Slot, sess.Nickname, remote, sess.Mode, sess.ID)

	s.frameLoop(conn, sess)
}

func (s *Service) frameLoop(conn net.Conn, sess *pad.Session) {
	for {
		if s.keepalive > 0 {
			conn.SetReadDeadline(time.Now().Add(s.keepalive))
		} else {
			conn.SetReadDeadline(time.Time{})
		}

		frame, err := protocol.ReadFrame(conn)
		if err != nil {
			var ne net.Error
			switch {
			case errors.As(err, &ne) && ne.Timeout():
				log.Printf("pad %d keepalive expired, releasing", sess.Slot)
				s.registry.TimedOut(sess)
			case errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed):
				log.Printf("pad %d peer closed", sess.Slot)
			default:
				// Reserved opcodes, bad counts and short reads are all
				// protocol violations; drop the connection.
				log.Printf("pad %d protocol violation: %v", sess.Slot, err)
			}
			return
		}

		switch frame.Kind {
		case protocol.FrameClose:
			log.Printf("pad %d closed by client", sess.Slot)
			return
		case protocol.FramePing:
			s.registry.Touch(sess)
		case protocol.FrameButtons:
			for _, ev := range frame.Events {
				if err := sess.Emit(ev.Button, ev.Pressed); err != nil {
					// The slot was force-cleared underneath us.
					log.Printf("pad %d emit stopped: %v", sess.Slot, err)
					return
				}
			}
		}
	}
}

// replyFor collapses registry errors onto the four-code wire contract.
// Anything unexpected (a device that will not open, for instance)
// reports the slot as busy: not claimable right now.
func replyFor(err error) byte {
	switch {
	case errors.Is(err, pad.ErrLoginFailure):
		return protocol.ReplyLoginFailed
	case errors.Is(err, pad.ErrPadInvalid):
		return protocol.ReplyPadInvalid
	case errors.Is(err, pad.ErrPadBusy):
		return protocol.ReplyPadBusy
	default:
		return protocol.ReplyPadBusy
	}
}
