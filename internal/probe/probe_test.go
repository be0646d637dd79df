package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
)

func TestProbeNeuralGPUHealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("expected /health, got %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	port := portOf(t, srv)
	if !ProbeNeuralGPU(context.Background(), port) {
		t.Error("expected healthy sidecar to be reported available")
	}
}

func TestProbeNeuralGPUUnhealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	port := portOf(t, srv)
	if ProbeNeuralGPU(context.Background(), port) {
		t.Error("expected unhealthy sidecar to be reported unavailable")
	}
}

func TestProbeNeuralGPUUnreachable(t *testing.T) {
	if ProbeNeuralGPU(context.Background(), 1) {
		t.Error("expected unreachable port to be reported unavailable")
	}
}

func TestProbePlayersPicksFirstPresentCandidate(t *testing.T) {
	uncompressed, compressed := ProbePlayers()
	// We can't assert exact binaries without knowing the host, but the
	// probe must never report Found=true with an empty name.
	if uncompressed.Found && uncompressed.Name == "" {
		t.Error("found uncompressed candidate with empty name")
	}
	if compressed.Found && compressed.Name == "" {
		t.Error("found compressed candidate with empty name")
	}
}

func portOf(t *testing.T, srv *httptest.Server) int {
	t.Helper()
	addr := strings.TrimPrefix(srv.URL, "http://")
	_, portStr, found := strings.Cut(addr, ":")
	if !found {
		t.Fatalf("could not parse port from %s", srv.URL)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("parse port: %v", err)
	}
	return port
}
