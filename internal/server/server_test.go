package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dam4rus/logan/internal/follow"
	"github.com/dam4rus/logan/internal/hub"
	"github.com/dam4rus/logan/internal/rules"
	"github.com/dam4rus/logan/internal/stats"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	set, err := rules.Parse([]byte(`{}`), rules.FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	input := make(chan follow.Line)
	h := hub.New(input, set)
	c := stats.New(h.Subscribe(), h.Lines, h.Dropped, func() int { return 3 })
	return New(h, c, ":0")
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %v", body["status"])
	}
	if body["files_watched"] != float64(3) {
		t.Errorf("expected 3 files watched, got %v", body["files_watched"])
	}
}

func TestStatsEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var snap stats.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if snap.Files != 3 {
		t.Errorf("expected 3 files, got %d", snap.Files)
	}
}

func TestDashboardAssets(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		path        string
		contentType string
		marker      string
	}{
		{path: "/", contentType: "text/html", marker: "<title>logan</title>"},
		{path: "/app.js", contentType: "application/javascript", marker: "WebSocket"},
		{path: "/style.css", contentType: "text/css", marker: "#stream"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, tt.contentType) {
				t.Errorf("content type = %q, want prefix %q", ct, tt.contentType)
			}
			if !strings.Contains(rec.Body.String(), tt.marker) {
				t.Errorf("body does not contain %q", tt.marker)
			}
		})
	}
}
