// Package admin exposes the switch's operational façade: health and
// metrics endpoints, plus a JSON request/response bridge for clients
// that would rather not speak raw ISO 8583 over TCP.
package admin

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"npsb-switch/internal/framer"
	"npsb-switch/internal/iso8583"
	"npsb-switch/internal/switchcore"
)

// Server is the admin/façade HTTP surface. It holds no protocol state
// of its own: /transact dials the switch's own acquirer-facing
// listener over loopback for every request, so it is classified and
// routed exactly like any other acquirer socket connecting from
// localhost.
type Server struct {
	Started     time.Time
	SwitchAddr  string
	Mode        iso8583.Mode
	Registry    *switchcore.Registry
	Correlation *switchcore.CorrelationTable
	Log         logrus.FieldLogger

	DialTimeout  time.Duration
	ReplyTimeout time.Duration
}

// Serve builds the gin engine and starts it listening on addr.
func Serve(addr string, s *Server) *http.Server {
	if s.DialTimeout == 0 {
		s.DialTimeout = 3 * time.Second
	}
	if s.ReplyTimeout == 0 {
		s.ReplyTimeout = 10 * time.Second
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", s.handleHealth)
	r.GET("/metrics", s.handleMetrics)
	r.POST("/transact", s.handleTransact)

	srv := &http.Server{Addr: addr, Handler: r}
	go func() {
		s.Log.WithField("addr", addr).Info("admin façade listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.Log.WithError(err).Error("admin façade stopped")
		}
	}()
	return srv
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(s.Started).String(),
	})
}

func (s *Server) handleMetrics(c *gin.Context) {
	acquirers, issuers := s.Registry.Counts()
	c.String(http.StatusOK,
		"npsb_uptime_seconds %d\nnpsb_acquirer_connections %d\nnpsb_issuer_connections %d\nnpsb_pending_correlations %d\n",
		int(time.Since(s.Started).Seconds()), acquirers, issuers, s.Correlation.Len(),
	)
}

// transactRequest is the flat JSON shape /transact accepts: an MTI plus
// a field-number-keyed map of string values. Binary fields (52/53/128)
// are out of scope for this façade.
type transactRequest struct {
	MTI    string            `json:"mti" binding:"required"`
	Fields map[string]string `json:"fields"`
}

type transactResponse struct {
	MTI    string            `json:"mti"`
	Fields map[string]string `json:"fields"`
}

func (s *Server) handleTransact(c *gin.Context) {
	var req transactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg := iso8583.New(req.MTI)
	for k, v := range req.Fields {
		n, err := strconv.Atoi(k)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid field number " + k})
			return
		}
		if err := msg.Set(n, v); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	body, err := msg.Pack(s.Mode)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reply, err := s.roundTrip(body)
	if err != nil {
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": err.Error()})
		return
	}

	replyMsg, err := iso8583.Unpack(reply, s.Mode)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := transactResponse{MTI: replyMsg.MTI, Fields: make(map[string]string)}
	for n, v := range replyMsg.Fields {
		if sv, ok := v.(string); ok {
			out.Fields[strconv.Itoa(n)] = sv
		}
	}
	c.JSON(http.StatusOK, out)
}

// roundTrip opens one short-lived loopback connection to the switch,
// sends a single framed request, and waits for a single framed reply.
func (s *Server) roundTrip(body []byte) ([]byte, error) {
	conn, err := net.DialTimeout("tcp", s.SwitchAddr, s.DialTimeout)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	wire, err := framer.Frame(body)
	if err != nil {
		return nil, err
	}
	if err := conn.SetWriteDeadline(time.Now().Add(s.DialTimeout)); err != nil {
		return nil, err
	}
	if _, err := conn.Write(wire); err != nil {
		return nil, err
	}

	if err := conn.SetReadDeadline(time.Now().Add(s.ReplyTimeout)); err != nil {
		return nil, err
	}
	f := framer.New()
	buf := make([]byte, 4096)
	for {
		if payload, ok := f.Next(); ok {
			return payload, nil
		}
		n, err := conn.Read(buf)
		if err != nil {
			return nil, err
		}
		f.Feed(buf[:n])
	}
}
