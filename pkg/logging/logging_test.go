package logging

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"
)

func TestCompactHandlerFormat(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCompactHandler(&buf, &slog.HandlerOptions{Level: LevelTrace}))

	log.Info("resolved appearance", "reason", "filter", "pass", 3, "ratio", 0.5, "durationMs", int64(12))

	line := buf.String()
	pattern := `^\[INFO\]  \d{2}:\d{2}:\d{2} resolved appearance \| reason=filter pass=3 ratio=0\.5 duration=12ms\n$`
	if !regexp.MustCompile(pattern).MatchString(line) {
		t.Errorf("unexpected line %q", line)
	}
}

func TestCompactHandlerLevels(t *testing.T) {
	tests := []struct {
		level slog.Level
		want  string
	}{
		{LevelTrace, "[TRACE] "},
		{slog.LevelDebug, "[DEBUG] "},
		{slog.LevelInfo, "[INFO]  "},
		{slog.LevelWarn, "[WARN]  "},
		{slog.LevelError, "[ERROR] "},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			var buf bytes.Buffer
			log := slog.New(NewCompactHandler(&buf, &slog.HandlerOptions{Level: LevelTrace}))
			log.Log(context.Background(), tt.level, "msg")
			if !strings.HasPrefix(buf.String(), tt.want) {
				t.Errorf("line %q should start with %q", buf.String(), tt.want)
			}
		})
	}

	var buf bytes.Buffer
	slog.New(NewCompactHandler(&buf, nil)).Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug should be filtered at the default level, got %q", buf.String())
	}
}

func TestCompactHandlerAttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCompactHandler(&buf, nil)).
		With("component", "engine").
		WithGroup("caption")

	log.Info("channel", "name", "node color", slog.Group("range", "min", 1, "max", 10))

	line := buf.String()
	for _, want := range []string{
		"component=engine",
		`caption.name="node color"`,
		"caption.range.min=1",
		"caption.range.max=10",
	} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q should contain %q", line, want)
		}
	}
}

func TestSetupSwitchesFormat(t *testing.T) {
	var buf bytes.Buffer
	Setup(Options{Level: slog.LevelDebug, JSON: true, Writer: &buf})
	t.Cleanup(func() { Setup(Options{}) })

	ctx := WithRequestID(context.Background(), "0123456789abcdef")
	DebugContext(ctx, "hello", "k", "v")

	line := buf.String()
	if !strings.Contains(line, `"msg":"hello"`) || !strings.Contains(line, `"requestID":"0123456789abcdef"`) {
		t.Errorf("unexpected JSON line %q", line)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var buf bytes.Buffer
	Setup(Options{Writer: &buf})
	t.Cleanup(func() { Setup(Options{}) })

	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/caption", nil)
	req.Header.Set("X-Request-ID", "abcdefgh-1234")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if seen != "abcdefgh-1234" {
		t.Errorf("request id in context = %q", seen)
	}
	if rec.Header().Get("X-Request-ID") != "abcdefgh-1234" {
		t.Error("request id should be echoed in the response")
	}

	line := buf.String()
	for _, want := range []string{"[WARN]", "request rejected", "req=abcdefgh", "status=418", "bytes=15"} {
		if !strings.Contains(line, want) {
			t.Errorf("log %q should contain %q", line, want)
		}
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if id := rec.Header().Get("X-Request-ID"); len(id) != 36 {
		t.Errorf("generated request id %q should be a uuid", id)
	}
}

func TestTimeAttr(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCompactHandler(&buf, nil))
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	log.Info("loaded", "at", at, "took", 2*time.Second, "empty", "")

	line := buf.String()
	for _, want := range []string{"at=2024-05-01T12:00:00Z", "took=2s", `empty=""`} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q should contain %q", line, want)
		}
	}
}
