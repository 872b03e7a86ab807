// Package livesplit talks to a LiveSplit Server instance over its plain TCP
// text protocol. Commands are fire and forget; a broken connection turns the
// client into a no-op until the next command redials.
package livesplit

import (
	"net"
	"sync"
	"time"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

const (
	dialTimeout  = 500 * time.Millisecond
	writeTimeout = 250 * time.Millisecond
)

// Client sends timer commands to one LiveSplit Server address. A nil Client
// drops every command, which is how timer control stays disabled without the
// driver branching on it.
type Client struct {
	addr string
	log  *logger.Logger

	mu   sync.Mutex
	conn net.Conn
}

// Dial prepares a client for addr and attempts a first connection. A failed
// connect is logged, not fatal; the server may come up later.
func Dial(addr string) *Client {
	c := &Client{
		addr: addr,
		log:  logger.NewLogger(coloransi.Color(coloransi.White, coloransi.ColorIndigo, "livesplit")),
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.connect(); err != nil {
		c.log.Warn("connect:", err)
	}
	return c
}

// StartTimer starts the run timer.
func (c *Client) StartTimer() { c.send("starttimer") }

// Split advances the timer to the next segment.
func (c *Client) Split() { c.send("split") }

// Reset resets the run timer.
func (c *Client) Reset() { c.send("reset") }

// Close drops the connection. The client stays usable and will redial.
func (c *Client) Close() {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

// connect must be called with mu held.
func (c *Client) connect() error {
	conn, err := net.DialTimeout("tcp", c.addr, dialTimeout)
	if err != nil {
		return err
	}
	c.conn = conn
	c.log.Infoln("connected to", c.addr)
	return nil
}

func (c *Client) send(command string) {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		if err := c.connect(); err != nil {
			c.log.Debugln("skipping", command, "while disconnected:", err)
			return
		}
	}

	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if _, err := c.conn.Write([]byte(command + "\r\n")); err != nil {
		c.log.Warn(command, "failed, dropping connection:", err)
		c.conn.Close()
		c.conn = nil
	}
}
