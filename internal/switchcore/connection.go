// Package switchcore implements the stateful TCP switch: connection
// registry, correlation table, network-management auto-response, and
// the dispatcher that routes parsed ISO 8583 messages between
// acquirer and issuer connections.
package switchcore

import (
	"fmt"
	"net"
	"strings"
	"sync"

	"github.com/google/uuid"

	"npsb-switch/internal/framer"
)

// Role classifies a connected socket.
type Role int

const (
	RoleUnknown Role = iota
	RoleAcquirer
	RoleIssuer
)

func (r Role) String() string {
	switch r {
	case RoleAcquirer:
		return "acquirer"
	case RoleIssuer:
		return "issuer"
	default:
		return "unknown"
	}
}

// Connection holds one accepted socket's framing state and identity.
// The dispatcher only ever holds a *Connection reference for the
// duration of a write; the connection's own read goroutine owns the
// socket's lifetime.
type Connection struct {
	Conn    net.Conn
	ID      string // stable "host:port", the correlation/registry key
	TraceID string // uuid, for log correlation only, not routing
	Role    Role
	Framer  *framer.Framer

	writeMu sync.Mutex
}

// NewConnection wraps an accepted socket. The role is not yet known;
// the registry assigns it.
func NewConnection(conn net.Conn) *Connection {
	return &Connection{
		Conn:    conn,
		ID:      conn.RemoteAddr().String(),
		TraceID: uuid.NewString(),
		Framer:  framer.New(),
	}
}

// WriteFrame writes a length-prefixed frame to the socket, holding a
// per-connection mutex so a forwarded issuer response and a locally
// built network-management reply can never interleave on the wire.
func (c *Connection) WriteFrame(payload []byte) error {
	wire, err := framer.Frame(payload)
	if err != nil {
		return err
	}
	return c.writeWire(wire)
}

// WriteWireVerbatim writes an already-framed buffer (length prefix
// included) exactly as received, for verbatim forwarding.
func (c *Connection) WriteWireVerbatim(wire []byte) error {
	return c.writeWire(wire)
}

func (c *Connection) writeWire(wire []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_, err := c.Conn.Write(wire)
	return err
}

// stripIPv4MappedPrefix removes a "::ffff:" IPv4-in-IPv6 prefix from a
// host string so role classification compares against the plain
// dotted-quad or hostname an operator configured.
func stripIPv4MappedPrefix(host string) string {
	const prefix = "::ffff:"
	if strings.HasPrefix(host, prefix) {
		return strings.TrimPrefix(host, prefix)
	}
	return host
}

// peerHost extracts and normalizes the host portion of a connection's
// remote address.
func peerHost(conn net.Conn) (string, error) {
	host, _, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		return "", fmt.Errorf("switchcore: cannot parse peer address %q: %w", conn.RemoteAddr(), err)
	}
	return stripIPv4MappedPrefix(host), nil
}

func isLoopback(host string) bool {
	return host == "127.0.0.1" || host == "::1"
}
