package admin

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"
)

// DefaultTimeout is how long a caller waits for a response before
// treating the outcome as unknown.
const DefaultTimeout = 3 * time.Second

// ErrNoResponse means the server accepted the connection but never
// answered within the timeout. The command's outcome is unknown; it
// must not be treated as success.
var ErrNoResponse = errors.New("no response from admin channel")

// Client sends single commands to a running daemon's control socket.
type Client struct {
	path    string
	timeout time.Duration
}

func NewClient(path string) *Client {
	return &Client{path: path, timeout: DefaultTimeout}
}

// Send performs one request/response exchange.
func (c *Client) Send(req Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.path, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("dialing admin socket %s: %w", c.path, err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(c.timeout))

	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}
	if _, err := conn.Write(append(data, '\n')); err != nil {
		return nil, fmt.Errorf("writing request: %w", err)
	}

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if len(line) == 0 {
		return nil, ErrNoResponse
	}
	var resp Response
	if err := json.Unmarshal(line, &resp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &resp, nil
}
