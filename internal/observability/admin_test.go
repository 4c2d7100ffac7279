package observability

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danmuck/mctp/internal/logging"
	"github.com/danmuck/mctp/internal/testutil/testlog"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func testRouter(cfg AdminConfig) *gin.Engine {
	cfg.Mode = gin.TestMode
	return NewAdminRouter(cfg)
}

func TestAdminHealth(t *testing.T) {
	testlog.Start(t)

	r := testRouter(AdminConfig{Node: "mctpd.test", Started: time.Now().Add(-time.Minute)})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"node":"mctpd.test"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestAdminReadyReflectsListener(t *testing.T) {
	testlog.Start(t)

	ready := false
	r := testRouter(AdminConfig{Node: "mctpd.test", Ready: func() bool { return ready }})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 before ready, got %d", rec.Code)
	}

	ready = true
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 once ready, got %d", rec.Code)
	}
}

func TestAdminMetricsExposeExchanges(t *testing.T) {
	testlog.Start(t)

	RecordExchange("mctpd.metrics", "200 OK", 2, 5*time.Millisecond)
	RecordConnError("mctpd.metrics", "read")
	release := ConnOpened("mctpd.metrics")
	release()

	r := testRouter(AdminConfig{Node: "mctpd.metrics"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`mctp_exchange_total{node="mctpd.metrics",status="200 OK"} 1`,
		`mctp_exchange_body_bytes_total{node="mctpd.metrics"} 2`,
		`mctp_conn_errors_total{node="mctpd.metrics",stage="read"} 1`,
		`mctp_conn_active{node="mctpd.metrics"} 0`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics missing %q", want)
		}
	}
}

func TestNormalizeOrigins(t *testing.T) {
	if got := normalizeOrigins([]string{" ", ""}); len(got) != 1 || got[0] != "http://localhost:3000" {
		t.Fatalf("unexpected default origins: %v", got)
	}
	if got := normalizeOrigins([]string{" https://docs.local "}); len(got) != 1 || got[0] != "https://docs.local" {
		t.Fatalf("unexpected origins: %v", got)
	}
}

func TestAdminRouterDefaultsToReleaseMode(t *testing.T) {
	testlog.Start(t)
	t.Cleanup(func() { gin.SetMode(gin.TestMode) })

	gin.SetMode(gin.DebugMode)
	NewAdminRouter(AdminConfig{Node: "mctpd.mode"})
	if gin.Mode() != gin.ReleaseMode {
		t.Fatalf("expected release mode, got %q", gin.Mode())
	}

	testRouter(AdminConfig{Node: "mctpd.mode"})
	if gin.Mode() != gin.TestMode {
		t.Fatalf("expected explicit mode to win, got %q", gin.Mode())
	}
}

func TestAdminObserverLabelsAndLevels(t *testing.T) {
	testlog.Start(t)

	prev := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	var buf bytes.Buffer
	logger := logging.New(logging.Config{Level: zerolog.DebugLevel, Bypass: true, Out: &buf})

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AdminObserver(logger, "mctpd.observer"))
	r.GET("/boom/:id", func(c *gin.Context) {
		_ = c.Error(errors.New("store offline"))
		c.Status(http.StatusInternalServerError)
	})

	for _, path := range []string{"/boom/7", "/nope"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	var lines []map[string]any
	for _, raw := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var line map[string]any
		if err := json.Unmarshal(raw, &line); err != nil {
			t.Fatalf("decode log line %q: %v", raw, err)
		}
		lines = append(lines, line)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d: %s", len(lines), buf.String())
	}

	boom := lines[0]
	if boom["level"] != "error" || boom["route"] != "/boom/:id" || boom["error"] == nil {
		t.Fatalf("unexpected 5xx line: %v", boom)
	}
	missing := lines[1]
	if missing["level"] != "warn" || missing["route"] != unmatchedRoute || missing["path"] != "/nope" {
		t.Fatalf("unexpected 404 line: %v", missing)
	}
	if status, _ := missing["status"].(float64); int(status) != http.StatusNotFound {
		t.Fatalf("unexpected 404 status: %v", missing["status"])
	}

	metrics := httptest.NewRecorder()
	testRouter(AdminConfig{Node: "mctpd.observer"}).
		ServeHTTP(metrics, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	want := `path="unmatched",status="404"`
	if !strings.Contains(metrics.Body.String(), want) {
		t.Fatalf("metrics missing unmatched 404 sample %q", want)
	}
}
