// Package admin serves the local control socket: one JSON request per
// connection, one JSON response. Commands drive the slot registry and
// the pad service supervisor.
package admin

import (
	"encoding/json"
	"fmt"

	"github.com/virtualpad/server/internal/pad"
)

// Request is the wire shape of one admin command.
type Request struct {
	Command string `json:"command"`
	Index   *int   `json:"index,omitempty"`
	Force   bool   `json:"force,omitempty"`
	Indices []int  `json:"indices,omitempty"`
}

// Response is the single document written back for a request.
type Response struct {
	Type  string `json:"type"`
	Code  string `json:"code"`
	Index *int   `json:"index,omitempty"`
	Value any    `json:"value,omitempty"`
}

// StatusData is the value attached to a pad:status response.
type StatusData struct {
	Pads      []pad.SlotInfo `json:"pads"`
	Passwords []string       `json:"passwords"`
}

// PasswordsData is the value attached to a pad:reset-passwords
// response.
type PasswordsData struct {
	Passwords []string `json:"passwords"`
}

// Command names.
const (
	CmdServerStart       = "server:start"
	CmdServerStop        = "server:stop"
	CmdServerIsRunning   = "server:is-running"
	CmdPadClear          = "pad:clear"
	CmdPadClearAll       = "pad:clear-all"
	CmdPadStatus         = "pad:status"
	CmdPadResetPasswords = "pad:reset-passwords"
)

// Response codes.
const (
	CodeServerOK             = "server:ok"
	CodeServerAlreadyRunning = "server:already-running"
	CodeServerNotRunning     = "server:not-running"
	CodeServerIsRunning      = "server:is-running"
	CodeServerError          = "server:error"
	CodePadOK                = "pad:ok"
	CodePadBusy              = "pad:busy"
	CodePadInvalidIndex      = "pad:invalid-index"
	CodePadStatus            = "pad:status"
	CodeUnknownCommand       = "unknown-command"
	CodeInvalidRequest       = "invalid-request"
)

type commandKind int

const (
	cmdUnknown commandKind = iota
	cmdServerStart
	cmdServerStop
	cmdServerIsRunning
	cmdPadClear
	cmdPadClearAll
	cmdPadStatus
	cmdPadResetPasswords
)

// command is the parsed, tagged form of a Request. Parsing happens
// once at the wire boundary so dispatch can match exhaustively on the
// kind.
type command struct {
	kind    commandKind
	name    string
	index   int
	force   bool
	indices []int
}

var errMissingIndex = fmt.Errorf("missing index field")

func parseCommand(line []byte) (command, error) {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		return command{}, fmt.Errorf("decoding request: %w", err)
	}

	c := command{name: req.Command, force: req.Force, indices: req.Indices}
	switch req.Command {
	case CmdServerStart:
		c.kind = cmdServerStart
	case CmdServerStop:
		c.kind = cmdServerStop
	case CmdServerIsRunning:
		c.kind = cmdServerIsRunning
	case CmdPadClear:
		if req.Index == nil {
			return command{}, errMissingIndex
		}
		c.kind = cmdPadClear
		c.index = *req.Index
	case CmdPadClearAll:
		c.kind = cmdPadClearAll
	case CmdPadStatus:
		c.kind = cmdPadStatus
	case CmdPadResetPasswords:
		c.kind = cmdPadResetPasswords
	default:
		c.kind = cmdUnknown
	}
	return c, nil
}
