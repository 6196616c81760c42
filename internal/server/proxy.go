package server

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"skiff/internal/devices"
	"skiff/pkg/httpx"
)

const proxyTimeout = 30 * time.Second

// proxyClient deliberately carries no Timeout of its own; each request is
// bounded by a per-request context so streaming bodies are not cut short
// mid-transfer by a client-wide deadline racing the context.
var proxyClient = &http.Client{}

// proxyHTTP forwards the request to the device's own API and streams the
// answer back untouched, so the hub is observably transparent. Only the
// Authorization header is rewritten, resolved device token first, then the
// caller's, then the hub admin token.
func (s *Server) proxyHTTP(w http.ResponseWriter, r *http.Request, d devices.Device, rest string) {
	target := strings.TrimSuffix(d.HTTP.URL, "/") + "/api/" + rest
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}

	ctx, cancel := context.WithTimeout(r.Context(), proxyTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, r.Method, target, r.Body)
	if err != nil {
		httpx.BadRequest(w, err.Error())
		return
	}
	for k, vals := range r.Header {
		if http.CanonicalHeaderKey(k) == "Host" {
			continue
		}
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}
	req.Host = ""

	token := d.HTTP.AuthToken
	if token == "" {
		token = callerToken(r)
	}
	if token == "" {
		token = s.cfg.AdminToken
	}
	req.Header.Del("Authorization")
	req.Header.Del(TokenHeader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := proxyClient.Do(req)
	if err != nil {
		httpx.BadGateway(w, err.Error())
		return
	}
	defer res.Body.Close()

	for k, vals := range res.Header {
		for _, v := range vals {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(res.StatusCode)
	_, _ = io.Copy(w, res.Body)
}
