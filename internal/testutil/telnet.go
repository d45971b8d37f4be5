package testutil

import (
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/cory-johannsen/arena/internal/frontend/telnet"
)

// DefaultReadTimeout bounds every read made through Command.
const DefaultReadTimeout = 2 * time.Second

// TelnetClient drives an arena Telnet session from a test. Output it returns
// has ANSI color codes removed so assertions can match plain text.
type TelnetClient struct {
	conn net.Conn
	t    *testing.T

	// Timeout applies to Command. Defaults to DefaultReadTimeout.
	Timeout time.Duration
}

// NewTelnetClient dials addr. The connection is closed on test cleanup.
//
// Precondition: addr must be a listening "host:port".
// Postcondition: Returns a connected client or fails the test.
func NewTelnetClient(t *testing.T, addr string) *TelnetClient {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		t.Fatalf("dialing arena at %s: %v", addr, err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return &TelnetClient{conn: conn, t: t, Timeout: DefaultReadTimeout}
}

// ReadUntil reads until the uncolored output contains want.
//
// Postcondition: Returns the uncolored output read so far, or fails the test
// on timeout or a closed connection.
func (c *TelnetClient) ReadUntil(want string, timeout time.Duration) string {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(timeout))

	var raw strings.Builder
	chunk := make([]byte, 1024)
	for {
		n, err := c.conn.Read(chunk)
		if n > 0 {
			raw.Write(chunk[:n])
			if plain := telnet.StripANSI(raw.String()); strings.Contains(plain, want) {
				return plain
			}
		}
		if err != nil {
			c.t.Fatalf("waiting for %q: got %q: %v", want, telnet.StripANSI(raw.String()), err)
		}
	}
}

// Send writes text followed by CRLF.
func (c *TelnetClient) Send(text string) {
	c.t.Helper()
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if _, err := fmt.Fprintf(c.conn, "%s\r\n", text); err != nil {
		c.t.Fatalf("sending %q: %v", text, err)
	}
}

// Command sends line and returns everything printed up to the next prompt.
// Reading to the prompt keeps each command's output separate from the next.
func (c *TelnetClient) Command(line, prompt string) string {
	c.t.Helper()
	c.Send(line)
	return c.ReadUntil(prompt, c.Timeout)
}

// Close closes the connection, which the server sees as a disconnect.
func (c *TelnetClient) Close() {
	_ = c.conn.Close()
}
