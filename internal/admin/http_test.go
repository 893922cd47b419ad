package admin

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"npsb-switch/internal/iso8583"
	"npsb-switch/internal/switchcore"
)

func testServer() *Server {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return &Server{
		Started:     time.Now(),
		SwitchAddr:  "127.0.0.1:1", // unused by the handlers under test here
		Mode:        iso8583.DefaultMode,
		Registry:    switchcore.NewRegistry(nil, nil),
		Correlation: switchcore.NewCorrelationTable(),
		Log:         log,
	}
}

func testEngine(s *Server) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", s.handleHealth)
	r.GET("/metrics", s.handleMetrics)
	r.POST("/transact", s.handleTransact)
	return r
}

func TestHealthReportsOK(t *testing.T) {
	s := testServer()
	r := testEngine(s)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("status field = %v, want ok", body["status"])
	}
}

func TestMetricsReportsCounts(t *testing.T) {
	s := testServer()
	r := testEngine(s)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	if !bytes.Contains([]byte(body), []byte("npsb_acquirer_connections 0")) {
		t.Fatalf("metrics body missing acquirer count: %s", body)
	}
}

func TestTransactRejectsMissingMTI(t *testing.T) {
	s := testServer()
	r := testEngine(s)

	req := httptest.NewRequest(http.MethodPost, "/transact", bytes.NewReader([]byte(`{"fields":{"2":"123"}}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestTransactRejectsInvalidFieldNumber(t *testing.T) {
	s := testServer()
	r := testEngine(s)

	req := httptest.NewRequest(http.MethodPost, "/transact", bytes.NewReader([]byte(`{"mti":"0100","fields":{"not-a-number":"123"}}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestTransactTimesOutWhenSwitchUnreachable(t *testing.T) {
	s := testServer()
	s.SwitchAddr = "127.0.0.1:1" // reserved, nothing listens here
	s.DialTimeout = 200 * time.Millisecond
	r := testEngine(s)

	req := httptest.NewRequest(http.MethodPost, "/transact", bytes.NewReader([]byte(`{"mti":"0100","fields":{"11":"000001"}}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusGatewayTimeout {
		t.Fatalf("status = %d, want 504", w.Code)
	}
}
