// Package transport manages a single reconnecting TCP connection to
// the switch's acquirer-facing listener, used by the sampler CLI to
// send one crafted message and wait for its matched reply.
package transport

import (
	"crypto/tls"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"npsb-switch/internal/framer"
	"npsb-switch/internal/iso8583"
)

// DialConfig holds connection options.
type DialConfig struct {
	Endpoint  string // host:port
	TLS       bool   // enable TLS
	Timeout   time.Duration
	KeepAlive time.Duration
	ReadIdle  time.Duration // optional read deadline extension per read
	RetryBase time.Duration // base backoff between reconnect attempts
	Mode      iso8583.Mode
}

// Connector manages one persistent TCP connection and decodes every
// complete frame it receives into an *iso8583.Message before handing
// it to the registered callback.
type Connector struct {
	cfg    DialConfig
	mu     sync.RWMutex
	conn   net.Conn
	closed atomic.Bool

	onMsg  func(*iso8583.Message, []byte)
	onUp   func()
	onDown func(error)
}

func NewConnector(cfg DialConfig) *Connector { return &Connector{cfg: cfg} }

func (c *Connector) SetCallbacks(onMsg func(*iso8583.Message, []byte), onUp func(), onDown func(error)) {
	c.onMsg, c.onUp, c.onDown = onMsg, onUp, onDown
}

// Start runs the connect/reconnect loop in a goroutine.
func (c *Connector) Start() { go c.loop() }

func (c *Connector) loop() {
	backoff := c.cfg.RetryBase
	if backoff <= 0 {
		backoff = 2 * time.Second
	}

	for !c.closed.Load() {
		if err := c.dial(); err != nil {
			if c.onDown != nil {
				c.onDown(err)
			}
			time.Sleep(backoff)
			// Exponential-ish backoff with cap
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = c.cfg.RetryBase
		if backoff <= 0 {
			backoff = 2 * time.Second
		}
		if c.onUp != nil {
			c.onUp()
		}
		err := c.readLoop()
		if c.onDown != nil {
			c.onDown(err)
		}
	}
}

func (c *Connector) dial() error {
	d := &net.Dialer{Timeout: c.cfg.Timeout, KeepAlive: c.cfg.KeepAlive}
	var (
		conn net.Conn
		err  error
	)
	if c.cfg.TLS {
		conn, err = tls.DialWithDialer(d, "tcp", c.cfg.Endpoint, &tls.Config{InsecureSkipVerify: true})
	} else {
		conn, err = d.Dial("tcp", c.cfg.Endpoint)
	}
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	return nil
}

func (c *Connector) readLoop() error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()
	if conn == nil {
		return nil
	}

	f := framer.New()
	buf := make([]byte, 4096)
	for !c.closed.Load() {
		if c.cfg.ReadIdle > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(c.cfg.ReadIdle))
		}
		n, err := conn.Read(buf)
		if err != nil {
			c.closeConn()
			return err
		}
		f.Feed(buf[:n])
		for {
			payload, ok := f.Next()
			if !ok {
				break
			}
			if c.onMsg == nil {
				continue
			}
			msg, err := iso8583.Unpack(payload, c.cfg.Mode)
			if err != nil {
				continue
			}
			c.onMsg(msg, payload)
		}
	}
	return nil
}

// Send frames and writes one ISO 8583 message body.
func (c *Connector) Send(body []byte) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()
	if conn == nil {
		return fmt.Errorf("transport: not connected")
	}
	wire, err := framer.Frame(body)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	_, err = conn.Write(wire)
	return err
}

func (c *Connector) closeConn() {
	c.mu.Lock()
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.mu.Unlock()
}

func (c *Connector) Close() {
	c.closed.Store(true)
	c.closeConn()
}
