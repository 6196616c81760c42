package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

func TestDispatchTarget(t *testing.T) {
	cases := map[string]string{
		"/api/d/studio/files": "studio",
		"/api/d/local/mkdir":  "local",
		"/api/d/studio":       "studio",
		"/api/files":          "",
		"/metrics":            "",
	}
	for in, want := range cases {
		if got := dispatchTarget(in); got != want {
			t.Errorf("dispatchTarget(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRequestLogCarriesIDAndDevice(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	var h http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(204)
	})
	h = zerologMiddleware(&logger)(h)
	h = middleware.RequestID(h)

	req := httptest.NewRequest(http.MethodGet, "/api/d/studio/files?path=", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log not JSON: %v (%s)", err, buf.String())
	}
	if line["reqId"] == "" || line["reqId"] == nil {
		t.Fatalf("missing request id: %v", line)
	}
	if line["device"] != "studio" {
		t.Fatalf("missing device tag: %v", line)
	}
	if line["status"] != float64(204) {
		t.Fatalf("status: %v", line)
	}
}
