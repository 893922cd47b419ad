package switchcore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/sirupsen/logrus"

	"npsb-switch/internal/framer"
	"npsb-switch/internal/iso8583"
)

// SampleConfig is the fixed field set the operator injection path
// uses to synthesize a demo 0100.
type SampleConfig struct {
	PAN    string
	Amount string
	RRN    string
	STAN   string
}

// Switch is the single owned aggregate holding all shared mutable
// state: the connection registry and correlation table. It is
// constructed once by cmd/switch and passed to every per-connection
// goroutine; it is never a package-level singleton.
type Switch struct {
	Registry    *Registry
	Correlation *CorrelationTable
	Mode        iso8583.Mode
	Log         logrus.FieldLogger
	Sample      SampleConfig
}

// NewSwitch builds a Switch ready to accept connections.
func NewSwitch(registry *Registry, correlation *CorrelationTable, mode iso8583.Mode, log logrus.FieldLogger, sample SampleConfig) *Switch {
	return &Switch{Registry: registry, Correlation: correlation, Mode: mode, Log: log, Sample: sample}
}

// Serve runs the accept loop until the listener is closed or ctx is
// canceled. Each accepted socket gets its own handling goroutine.
func (s *Switch) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		go s.handleConnection(conn)
	}
}

func (s *Switch) handleConnection(netConn net.Conn) {
	c := NewConnection(netConn)
	role := s.Registry.ClassifyAndRegister(c)

	log := s.Log.WithFields(logrus.Fields{
		"component": "switch",
		"conn_id":   c.ID,
		"trace_id":  c.TraceID,
		"role":      role.String(),
	})
	log.Info("connection accepted")

	defer func() {
		_ = netConn.Close()
		s.Registry.Unregister(c)
		purged := s.Correlation.PurgeBySocket(c)
		log.WithField("purged_entries", purged).Info("connection closed")
	}()

	buf := make([]byte, 4096)
	for {
		n, err := netConn.Read(buf)
		if n > 0 {
			c.Framer.Feed(buf[:n])
			for {
				payload, ok := c.Framer.Next()
				if !ok {
					break
				}
				s.dispatch(c, payload, log)
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.WithError(err).Warn("socket read error")
			}
			return
		}
	}
}

// dispatch implements the per-role, per-MTI routing rules: network
// management is answered locally, financial requests and responses are
// forwarded between acquirer and issuer, and everything else is logged
// and dropped.
func (s *Switch) dispatch(c *Connection, payload []byte, log logrus.FieldLogger) {
	msg, err := iso8583.Unpack(payload, s.Mode)
	if err != nil {
		log.WithError(err).Warn("codec error decoding frame, dropping")
		return
	}
	log = log.WithField("mti", msg.MTI)

	switch c.Role {
	case RoleAcquirer:
		s.dispatchAcquirer(c, msg, payload, log)
	case RoleIssuer:
		s.dispatchIssuer(c, msg, payload, log)
	default:
		log.Warn("message from unclassified connection, dropping")
	}
}

func (s *Switch) dispatchAcquirer(c *Connection, msg *iso8583.Message, payload []byte, log logrus.FieldLogger) {
	switch {
	case iso8583.IsNetworkManagement(msg.MTI):
		s.respondNetworkManagement(c, msg, log)

	case msg.MTI == "0100":
		s.forwardFinancialRequest(c, msg, payload, log)

	default:
		log.Warn("unsupported MTI from acquirer, dropping")
	}
}

func (s *Switch) respondNetworkManagement(c *Connection, msg *iso8583.Message, log logrus.FieldLogger) {
	reply, err := iso8583.BuildNetworkManagementReply(msg)
	if err != nil {
		log.WithError(err).Warn("failed to build network management reply")
		return
	}
	s.writeMessage(c, reply, log)
}

func (s *Switch) forwardFinancialRequest(c *Connection, msg *iso8583.Message, payload []byte, log logrus.FieldLogger) {
	stan, ok := msg.GetString(11)
	if !ok || stan == "" {
		log.Warn("0100 missing STAN, rejecting locally")
		s.respondRouting(c, msg, "96", log)
		return
	}

	issuer, ok := s.Registry.FirstIssuer()
	if !ok {
		log.Warn("no issuer available, rejecting locally")
		s.respondRouting(c, msg, "91", log)
		return
	}

	s.Correlation.Put(stan, PendingEntry{AcquirerConn: c, ConnectionID: c.ID, CreatedAt: time.Now()})

	// Forward the original bytes verbatim, not a re-encoded copy.
	wire, err := framer.Frame(payload)
	if err != nil {
		log.WithError(err).Error("failed to reframe request for forwarding")
		return
	}
	if err := issuer.WriteWireVerbatim(wire); err != nil {
		log.WithError(err).Warn("forward to issuer failed; acquirer will observe a timeout")
	}
}

// respondRouting builds a synthetic 0110 with the given response code
// for routing errors the switch itself detects and answers locally,
// such as a missing STAN or no issuer being available.
func (s *Switch) respondRouting(c *Connection, req *iso8583.Message, responseCode string, log logrus.FieldLogger) {
	reply := iso8583.New("0110")
	stan, ok := req.GetString(11)
	if !ok || stan == "" {
		stan = "000000"
	}
	_ = reply.Set(11, stan)
	_ = reply.Set(39, responseCode)
	s.writeMessage(c, reply, log)
}

func (s *Switch) dispatchIssuer(c *Connection, msg *iso8583.Message, payload []byte, log logrus.FieldLogger) {
	switch {
	case iso8583.IsNetworkManagement(msg.MTI):
		s.respondNetworkManagement(c, msg, log)

	case msg.MTI == "0110" || msg.MTI == "0210" || msg.MTI == "0410":
		s.routeIssuerResponse(c, msg, payload, log)

	default:
		log.Warn("unsupported MTI from issuer, dropping")
	}
}

func (s *Switch) routeIssuerResponse(c *Connection, msg *iso8583.Message, payload []byte, log logrus.FieldLogger) {
	stan, ok := msg.GetString(11)
	if !ok || stan == "" {
		log.Warn("issuer response missing STAN, dropping")
		return
	}

	entry, ok := s.Correlation.Take(stan)
	if !ok {
		log.WithField("stan", stan).Warn("no pending acquirer for STAN, dropping orphan response")
		return
	}

	// Forward the original bytes verbatim, not a re-encoded copy.
	wire, err := framer.Frame(payload)
	if err != nil {
		log.WithError(err).Error("failed to reframe issuer response for forwarding")
		return
	}
	if err := entry.AcquirerConn.WriteWireVerbatim(wire); err != nil {
		log.WithError(err).Warn("write to acquirer failed")
	}
}

func (s *Switch) writeMessage(c *Connection, msg *iso8583.Message, log logrus.FieldLogger) {
	body, err := msg.Pack(s.Mode)
	if err != nil {
		log.WithError(err).Error("failed to encode outgoing message")
		return
	}
	if err := c.WriteFrame(body); err != nil {
		log.WithError(err).Warn("write failed")
	}
}

// InjectSample synthesizes one 0100 from the switch's configured
// sample fields and sends it to the first registered acquirer. It is a
// test affordance wired to the filesystem trigger, not a protocol
// feature.
func (s *Switch) InjectSample() error {
	acquirer, ok := s.Registry.FirstAcquirer()
	if !ok {
		return fmt.Errorf("switchcore: no acquirer connected to receive the sample request")
	}

	msg := iso8583.New("0100")
	_ = msg.Set(2, s.Sample.PAN)
	_ = msg.Set(4, s.Sample.Amount)
	_ = msg.Set(11, s.Sample.STAN)
	_ = msg.Set(37, s.Sample.RRN)

	body, err := msg.Pack(s.Mode)
	if err != nil {
		return fmt.Errorf("switchcore: failed to encode sample message: %w", err)
	}
	return acquirer.WriteFrame(body)
}
