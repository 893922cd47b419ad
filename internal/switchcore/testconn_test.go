package switchcore

import "net"

// fakeAddr lets tests pin a connection's reported remote address without
// standing up a real listener on that address.
type fakeAddr string

func (a fakeAddr) Network() string { return "tcp" }
func (a fakeAddr) String() string  { return string(a) }

// fakeConn wraps a real net.Conn (normally one end of a net.Pipe) and
// overrides RemoteAddr, since classification keys off the peer host.
type fakeConn struct {
	net.Conn
	remote net.Addr
}

func (c *fakeConn) RemoteAddr() net.Addr { return c.remote }

// newFakeConn returns a connected in-memory net.Conn pair whose "client"
// side reports remoteHost as its peer address.
func newFakeConn(remoteHost string) (client net.Conn, server net.Conn) {
	a, b := net.Pipe()
	return &fakeConn{Conn: a, remote: fakeAddr(remoteHost)}, b
}
