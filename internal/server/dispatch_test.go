package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"skiff/internal/devices"
)

func seedDevice(t *testing.T, s *Server, d devices.Device) {
	t.Helper()
	if err := s.devices.Add(d); err != nil {
		t.Fatal(err)
	}
}

func TestDispatchLocalMatchesPlainSurface(t *testing.T) {
	cfg := testConfig(t)
	if err := os.MkdirAll(filepath.Join(cfg.Root, "docs"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfg.Root, "docs", "note.txt"), []byte("note"), 0o644); err != nil {
		t.Fatal(err)
	}
	r := NewRouter(cfg)

	for _, target := range []string{
		"/api/files?path=docs",
		"/api/info?path=docs/note.txt",
		"/api/preview?path=docs/note.txt",
	} {
		plain := do(r, http.MethodGet, target, "", nil)
		routed := do(r, http.MethodGet, "/api/d/local"+target[len("/api"):], "", nil)
		if plain.Code != routed.Code {
			t.Fatalf("%s: status %d vs %d", target, plain.Code, routed.Code)
		}
		if plain.Body.String() != routed.Body.String() {
			t.Fatalf("%s: body diverged\nplain:  %s\nrouted: %s", target, plain.Body.String(), routed.Body.String())
		}
	}
}

func TestDispatchLocalWrite(t *testing.T) {
	cfg := testConfig(t)
	r := NewRouter(cfg)

	res := do(r, http.MethodPost, "/api/d/local/mkdir", "", []byte(`{"path":"made"}`))
	if res.Code != 200 {
		t.Fatalf("mkdir via dispatch: %d body=%s", res.Code, res.Body.String())
	}
	if _, err := os.Stat(filepath.Join(cfg.Root, "made")); err != nil {
		t.Fatalf("directory not created: %v", err)
	}
}

func TestDispatchUnknownDevice(t *testing.T) {
	r := NewRouter(testConfig(t))
	res := do(r, http.MethodGet, "/api/d/nope/files?path=", "", nil)
	if res.Code != 404 {
		t.Fatalf("unknown device: %d", res.Code)
	}
}

func TestDispatchDisabledDevice(t *testing.T) {
	cfg := testConfig(t)
	srv := New(cfg)
	seedDevice(t, srv, devices.Device{
		ID:      "dead",
		Name:    "Dead Box",
		Enabled: false,
		SSH:     &devices.SSHConn{Host: "user@nowhere.invalid", Root: "/srv"},
	})
	res := do(srv.Routes(), http.MethodGet, "/api/d/dead/files?path=", "", nil)
	if res.Code != 403 {
		t.Fatalf("disabled device: %d", res.Code)
	}
}

func TestDispatchHTTPProxy(t *testing.T) {
	remoteCfg := testConfig(t)
	if err := os.WriteFile(filepath.Join(remoteCfg.Root, "remote.md"), []byte("# hi"), 0o644); err != nil {
		t.Fatal(err)
	}
	remote := httptest.NewServer(NewRouter(remoteCfg))
	defer remote.Close()

	hubCfg := testConfig(t)
	hub := New(hubCfg)
	seedDevice(t, hub, devices.Device{
		ID:      "peer",
		Name:    "Peer",
		Enabled: true,
		HTTP:    &devices.HTTPConn{URL: remote.URL},
	})
	r := hub.Routes()

	res := do(r, http.MethodGet, "/api/d/peer/files?path=", "", nil)
	if res.Code != 200 {
		t.Fatalf("proxied listing: %d body=%s", res.Code, res.Body.String())
	}
	var listing struct {
		Files []struct {
			Name string `json:"name"`
		} `json:"files"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &listing); err != nil {
		t.Fatal(err)
	}
	if len(listing.Files) != 1 || listing.Files[0].Name != "remote.md" {
		t.Fatalf("unexpected proxied listing: %s", res.Body.String())
	}

	// Remote errors pass through with their status.
	res = do(r, http.MethodGet, "/api/d/peer/files?path=ghost", "", nil)
	if res.Code != 404 {
		t.Fatalf("proxied missing dir: %d", res.Code)
	}
}

func TestDispatchHTTPProxyAuthLayering(t *testing.T) {
	var seen string
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer remote.Close()

	cfg := testConfig(t)
	cfg.AdminToken = "hub-admin"
	hub := New(cfg)
	seedDevice(t, hub, devices.Device{
		ID:      "peer",
		Name:    "Peer",
		Enabled: true,
		HTTP:    &devices.HTTPConn{URL: remote.URL, AuthToken: "device-secret"},
	})
	r := hub.Routes()

	// Stored device token wins over the caller's.
	if res := do(r, http.MethodGet, "/api/d/peer/files?path=", "hub-admin", nil); res.Code != 200 {
		t.Fatalf("proxy: %d", res.Code)
	}
	if seen != "Bearer device-secret" {
		t.Fatalf("forwarded auth: %q", seen)
	}

	// Without a stored token the caller's own token is forwarded.
	if _, err := hub.devices.Update("peer", devices.Patch{AuthToken: strPtr("")}); err != nil {
		t.Fatal(err)
	}
	if res := do(r, http.MethodGet, "/api/d/peer/files?path=", "hub-admin", nil); res.Code != 200 {
		t.Fatalf("proxy: %d", res.Code)
	}
	if seen != "Bearer hub-admin" {
		t.Fatalf("forwarded auth: %q", seen)
	}
}

func TestDispatchHTTPProxyUnreachable(t *testing.T) {
	cfg := testConfig(t)
	hub := New(cfg)
	seedDevice(t, hub, devices.Device{
		ID:      "gone",
		Name:    "Gone",
		Enabled: true,
		HTTP:    &devices.HTTPConn{URL: "http://127.0.0.1:1"},
	})
	res := do(hub.Routes(), http.MethodGet, "/api/d/gone/files?path=", "", nil)
	if res.Code != 502 {
		t.Fatalf("unreachable peer: %d", res.Code)
	}
}

func strPtr(s string) *string { return &s }
