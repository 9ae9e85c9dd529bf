package observability

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewLoggerLevelAndFields(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "warn", "json")

	logger.Info().Msg("hidden")
	logger.Warn().Str("notice_id", "n1").Msg("shown")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 log line, got %d: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["service"] != "sitterboard" || entry["notice_id"] != "n1" || entry["level"] != "warn" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "loud", "json")
	logger.Debug().Msg("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected debug to be filtered, got %q", buf.String())
	}
}

func TestCollectorCounts(t *testing.T) {
	c := NewCollector()
	c.NoticeCreated()
	c.ApplicationSubmitted()
	c.ApplicationSubmitted()
	c.ApplicationDecided("accepted", 3)
	c.ApplicationDecided("rejected", 0)
	c.ObserveRequest("GET", "/notices", 200, 5*time.Millisecond)
	c.IncError("conflict")

	if got := testutil.ToFloat64(c.applications); got != 2 {
		t.Fatalf("expected 2 applications, got %v", got)
	}
	if got := testutil.ToFloat64(c.cascadeRejections); got != 3 {
		t.Fatalf("expected 3 cascade rejections, got %v", got)
	}
	if got := testutil.ToFloat64(c.transitions.WithLabelValues("accepted")); got != 1 {
		t.Fatalf("expected 1 accepted transition, got %v", got)
	}
	if got := testutil.ToFloat64(c.requests.WithLabelValues("GET", "/notices", "200")); got != 1 {
		t.Fatalf("expected 1 request, got %v", got)
	}
}

func TestCollectorHandlerExposesMetrics(t *testing.T) {
	c := NewCollector()
	c.NoticeCreated()
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "sitterboard_notices_created_total 1") {
		t.Fatalf("metrics output missing counter:\n%s", rec.Body.String())
	}
}
