package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/arcadelab/gamehub/internal/model"
	"github.com/arcadelab/gamehub/internal/protocol"
)

// Client speaks the lobby's newline-framed JSON protocol over a single
// TCP connection. The connection is dialed lazily on the first call and
// the configured identity is logged in before any authenticated command.
type Client struct {
	cfg *Config

	conn     net.Conn
	reader   *bufio.Reader
	loggedIn bool
}

// NewClient creates a new lobby client
func NewClient(cfg *Config) *Client {
	return &Client{cfg: cfg}
}

// Connect dials the lobby if not already connected
func (c *Client) Connect() error {
	if c.conn != nil {
		return nil
	}
	conn, err := net.DialTimeout("tcp", c.cfg.Addr, c.cfg.Timeout)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", c.cfg.Addr, err)
	}
	c.conn = conn
	c.reader = bufio.NewReaderSize(conn, 64*1024)
	return nil
}

// Close sends a quit and closes the connection
func (c *Client) Close() {
	if c.conn == nil {
		return
	}
	_, _ = c.CallAnon(protocol.ActionQuit, nil)
	_ = c.conn.Close()
	c.conn = nil
	c.loggedIn = false
}

// Call performs one authenticated request/response round trip. The
// configured identity is logged in first if it has not been yet.
func (c *Client) Call(action string, data any) (*protocol.Envelope, error) {
	if err := c.ensureLogin(); err != nil {
		return nil, err
	}
	return c.CallAnon(action, data)
}

// CallAnon performs a round trip without logging in first. Used by
// register, which runs before an account exists.
func (c *Client) CallAnon(action string, data any) (*protocol.Envelope, error) {
	if err := c.Connect(); err != nil {
		return nil, err
	}

	frame, err := protocol.Encode(action, data)
	if err != nil {
		return nil, fmt.Errorf("encoding %s request: %w", action, err)
	}
	if err := c.conn.SetDeadline(time.Now().Add(c.cfg.Timeout)); err != nil {
		return nil, err
	}
	if _, err := c.conn.Write(frame); err != nil {
		return nil, fmt.Errorf("sending %s request: %w", action, err)
	}

	// Asynchronous pushes can arrive interleaved with the response; skip
	// past anything that is not an answer to this request
	for {
		env, err := c.readFrame()
		if err != nil {
			return nil, err
		}

		if isReply(action, env.Action) {
			if env.Action == protocol.ActionError {
				return nil, decodeError(env)
			}
			return env, nil
		}

		fmt.Fprintf(os.Stderr, "event: %s %s\n", env.Action, string(env.Data))
	}
}

// WatchEvents prints every incoming frame until the timeout elapses or
// the server closes the connection
func (c *Client) WatchEvents(timeout time.Duration) error {
	if err := c.ensureLogin(); err != nil {
		return err
	}
	if err := c.conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		return err
	}

	for {
		env, err := c.readFrame()
		if err != nil {
			if nerr, ok := err.(net.Error); ok && nerr.Timeout() {
				return nil
			}
			return err
		}
		fmt.Printf("%s %s\n", env.Action, string(env.Data))
	}
}

func (c *Client) ensureLogin() error {
	if err := c.Connect(); err != nil {
		return err
	}
	if c.loggedIn || c.cfg.Username == "" {
		return nil
	}

	_, err := c.CallAnon(protocol.ActionLogin, protocol.LoginRequest{
		Username: c.cfg.Username,
		Password: c.cfg.Password,
		Role:     model.Role(c.cfg.Role),
	})
	if err != nil {
		return fmt.Errorf("login as %s: %w", c.cfg.Username, err)
	}
	c.loggedIn = true
	return nil
}

func (c *Client) readFrame() (*protocol.Envelope, error) {
	line, err := c.reader.ReadBytes('\n')
	if err != nil {
		return nil, err
	}
	var env protocol.Envelope
	if err := json.Unmarshal(line, &env); err != nil {
		return nil, fmt.Errorf("parsing server message: %w", err)
	}
	return &env, nil
}

// isReply reports whether a received action answers the given request.
// Responses either echo the request action, or are the generic ok/error;
// ready may additionally be answered by game_started.
func isReply(request, received string) bool {
	switch received {
	case request, protocol.ActionOK, protocol.ActionError:
		return true
	case protocol.ActionGameStarted:
		return request == protocol.ActionReady
	}
	return false
}

func decodeError(env *protocol.Envelope) error {
	var data protocol.ErrorData
	if err := json.Unmarshal(env.Data, &data); err != nil || data.Reason == "" {
		return fmt.Errorf("server error: %s", string(env.Data))
	}
	if data.Detail != "" {
		return fmt.Errorf("%s: %s", data.Reason, data.Detail)
	}
	return fmt.Errorf("%s", data.Reason)
}

// Unmarshal decodes an envelope's payload into result
func Unmarshal(env *protocol.Envelope, result any) error {
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
