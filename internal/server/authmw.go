package server

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"skiff/pkg/httpx"
)

type role int

const (
	roleNone role = iota
	roleRead
	roleAdmin
)

// TokenHeader is the custom header checked after Authorization: Bearer.
const TokenHeader = "X-Skiff-Token"

type ctxKey string

const (
	ctxRole  ctxKey = "role"
	ctxToken ctxKey = "token"
)

// tokenFromRequest extracts the presented token: Authorization bearer, then
// the custom header, then the token query parameter. The query channel leaks
// into logs and history; it is kept for curl/browser convenience and
// documented as the weak option.
func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if tok, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(tok)
		}
	}
	if h := r.Header.Get(TokenHeader); h != "" {
		return h
	}
	return r.URL.Query().Get("token")
}

func (s *Server) resolveRole(token string) role {
	if !s.cfg.AuthEnabled() {
		return roleAdmin
	}
	if token == "" {
		return roleNone
	}
	if tokenEqual(token, s.cfg.AdminToken) || tokenEqual(token, s.cfg.LegacyToken) {
		return roleAdmin
	}
	if tokenEqual(token, s.cfg.ReadToken) {
		return roleRead
	}
	return roleNone
}

func tokenEqual(presented, configured string) bool {
	if configured == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(configured)) == 1
}

func isWriteMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	}
	return true
}

// authGate guards every API route except the status probe. It fails closed:
// with auth enabled, no or unknown token is 401 and a read token on a write
// method is 403.
func (s *Server) authGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := tokenFromRequest(r)
		rl := s.resolveRole(token)
		if rl == roleNone {
			httpx.Unauthorized(w, "authentication required")
			return
		}
		if isWriteMethod(r.Method) && rl != roleAdmin {
			httpx.Forbidden(w, "write access requires the admin token")
			return
		}
		ctx := context.WithValue(r.Context(), ctxRole, rl)
		ctx = context.WithValue(ctx, ctxToken, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// callerToken returns the token the caller presented, for credential
// layering on proxied requests.
func callerToken(r *http.Request) string {
	if tok, ok := r.Context().Value(ctxToken).(string); ok {
		return tok
	}
	return ""
}

func (s *Server) handleAuthStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"required":           s.cfg.AuthEnabled(),
		"hasReadToken":       s.cfg.ReadToken != "",
		"writeRequiresAdmin": s.cfg.ReadToken != "",
	})
}
