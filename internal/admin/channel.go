package admin

import (
	"bufio"
	"encoding/json"
	"errors"
	"log"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/virtualpad/server/internal/pad"
	"github.com/virtualpad/server/internal/server"
)

// requestDeadline bounds how long one admin connection may take to
// deliver its command and accept the response.
const requestDeadline = 3 * time.Second

// Supervisor is the pad service lifecycle surface the channel drives.
// server.Service satisfies it.
type Supervisor interface {
	Start() error
	Stop() error
	IsRunning() bool
}

// Channel is the unix-socket control listener.
type Channel struct {
	path     string
	registry *pad.Registry
	sup      Supervisor
	listener net.Listener
}

func NewChannel(path string, registry *pad.Registry, sup Supervisor) *Channel {
	return &Channel{path: path, registry: registry, sup: sup}
}

// Start binds the control socket, replacing any stale socket file left
// by a previous run.
func (c *Channel) Start() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return err
	}
	os.Remove(c.path)
	ln, err := net.Listen("unix", c.path)
	if err != nil {
		return err
	}
	// Reachable by the local operator group only; the pad protocol has
	// no business on this socket.
	os.Chmod(c.path, 0o660)
	c.listener = ln
	go c.acceptLoop()
	log.Printf("admin channel listening on %s", c.path)
	return nil
}

// Stop closes the listener and removes the socket file.
func (c *Channel) Stop() error {
	if c.listener == nil {
		return nil
	}
	err := c.listener.Close()
	os.Remove(c.path)
	return err
}

func (c *Channel) acceptLoop() {
	for {
		conn, err := c.listener.Accept()
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				log.Printf("admin accept error: %v", err)
			}
			return
		}
		go c.serve(conn)
	}
}

// serve handles exactly one request/response exchange, then closes.
func (c *Channel) serve(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(requestDeadline))

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if len(line) == 0 {
		if err != nil {
			log.Printf("admin read error: %v", err)
		}
		return
	}

	var resp Response
	cmd, err := parseCommand(line)
	if err != nil {
		log.Printf("admin rejected request: %v", err)
		resp = Response{Type: "response", Code: CodeInvalidRequest}
	} else {
		resp = c.dispatch(cmd)
	}

	data, err := json.Marshal(resp)
	if err != nil {
		log.Printf("admin response marshal error: %v", err)
		return
	}
	conn.Write(append(data, '\n'))
}

func (c *Channel) dispatch(cmd command) Response {
	resp := Response{Type: "response"}

	switch cmd.kind {
	case cmdServerStart:
		switch err := c.sup.Start(); {
		case err == nil:
			resp.Code = CodeServerOK
		case errors.Is(err, server.ErrAlreadyRunning):
			resp.Code = CodeServerAlreadyRunning
		default:
			log.Printf("admin server:start failed: %v", err)
			resp.Code = CodeServerError
		}

	case cmdServerStop:
		switch err := c.sup.Stop(); {
		case err == nil:
			resp.Code = CodeServerOK
		case errors.Is(err, server.ErrNotRunning):
			resp.Code = CodeServerNotRunning
		default:
			log.Printf("admin server:stop failed: %v", err)
			resp.Code = CodeServerError
		}

	case cmdServerIsRunning:
		resp.Code = CodeServerIsRunning
		resp.Value = c.sup.IsRunning()

	case cmdPadClear:
		switch err := c.registry.Clear(cmd.index, cmd.force); {
		case err == nil:
			resp.Code = CodePadOK
			resp.Index = &cmd.index
		case errors.Is(err, pad.ErrPadInvalid):
			resp.Code = CodePadInvalidIndex
			resp.Index = &cmd.index
		case errors.Is(err, pad.ErrPadBusy):
			resp.Code = CodePadBusy
			resp.Index = &cmd.index
		}

	case cmdPadClearAll:
		c.registry.ClearAll()
		resp.Code = CodePadOK

	case cmdPadStatus:
		resp.Code = CodePadStatus
		resp.Value = StatusData{
			Pads:      c.registry.Status(),
			Passwords: c.registry.Passwords(),
		}

	case cmdPadResetPasswords:
		passwords, err := c.registry.ResetPasswords(cmd.indices)
		if err != nil {
			resp.Code = CodePadInvalidIndex
			break
		}
		resp.Code = CodePadOK
		resp.Value = PasswordsData{Passwords: passwords}

	default:
		resp.Code = CodeUnknownCommand
		resp.Value = cmd.name
	}

	return resp
}
