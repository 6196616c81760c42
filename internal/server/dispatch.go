package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"skiff/internal/browse"
	"skiff/internal/devices"
	"skiff/internal/sshfs"
	"skiff/pkg/httpx"
)

// dispatch routes /api/d/{deviceID}/* to the execution adapter the device's
// connection mode selects: in-process re-dispatch for the hub itself, an
// SSH translation for shell-only devices, or a pass-through proxy for peers
// running their own instance.
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "deviceID")
	rest := chi.URLParam(r, "*")

	if id == devices.LocalID {
		// Re-enter the local file mux with the prefix stripped. The auth
		// gate already ran and the body has not been touched, so the
		// response is byte-identical to calling /api/{rest} directly.
		rctx := chi.NewRouteContext()
		r2 := r.Clone(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
		r2.URL.Path = "/" + rest
		r2.URL.RawPath = ""
		s.localAPI.ServeHTTP(w, r2)
		return
	}

	d, ok := s.devices.Get(id)
	if !ok {
		httpx.NotFound(w, "device not found")
		return
	}
	if !d.Enabled {
		httpx.Forbidden(w, "device is disabled")
		return
	}

	switch {
	case d.SSH != nil:
		s.dispatchSSH(w, r, d, rest)
	case d.HTTP != nil:
		s.proxyHTTP(w, r, d, rest)
	default:
		httpx.Internal(w, "device has no connection mode")
	}
}

func writeSSHError(w http.ResponseWriter, err error) {
	var re *sshfs.RemoteError
	switch {
	case errors.Is(err, browse.ErrNotFound),
		errors.Is(err, browse.ErrConflict),
		errors.Is(err, browse.ErrInvalidPath):
		writeOpError(w, err)
	case errors.As(err, &re):
		httpx.BadGateway(w, re.Msg)
	case errors.Is(err, sshfs.ErrTimeout):
		httpx.BadGateway(w, "ssh command timed out")
	default:
		httpx.BadGateway(w, err.Error())
	}
}

func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		httpx.Error(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	return true
}

// dispatchSSH translates one file operation into a remote shell invocation.
// Operations with no SSH meaning answer a benign empty result instead of an
// error; recency is per-instance state a shell-only device does not have.
func (s *Server) dispatchSSH(w http.ResponseWriter, r *http.Request, d devices.Device, op string) {
	client := sshfs.NewClient(d.SSH.Host, d.SSH.Root)
	ctx := r.Context()

	switch op {
	case "files":
		if !requireMethod(w, r, http.MethodGet) {
			return
		}
		listing, err := client.List(ctx, r.URL.Query().Get("path"), showHidden(r))
		if err != nil {
			writeSSHError(w, err)
			return
		}
		writeJSON(w, listing)

	case "search":
		if !requireMethod(w, r, http.MethodGet) {
			return
		}
		query := r.URL.Query().Get("query")
		if query == "" {
			httpx.BadRequest(w, "query is required")
			return
		}
		results, err := client.Search(ctx, r.URL.Query().Get("path"), query)
		if err != nil {
			writeSSHError(w, err)
			return
		}
		writeJSON(w, map[string]any{"results": results})

	case "preview":
		if !requireMethod(w, r, http.MethodGet) {
			return
		}
		p, err := client.Preview(ctx, r.URL.Query().Get("path"))
		if err != nil {
			writeSSHError(w, err)
			return
		}
		writeJSON(w, p)

	case "info":
		if !requireMethod(w, r, http.MethodGet) {
			return
		}
		info, err := client.Info(ctx, r.URL.Query().Get("path"))
		if err != nil {
			writeSSHError(w, err)
			return
		}
		writeJSON(w, info)

	case "download":
		if !requireMethod(w, r, http.MethodGet) {
			return
		}
		name, data, err := client.Download(ctx, r.URL.Query().Get("path"))
		if err != nil {
			writeSSHError(w, err)
			return
		}
		writeAttachment(w, name, data)

	case "recent":
		if !requireMethod(w, r, http.MethodGet) {
			return
		}
		writeJSON(w, map[string]any{"recent": []browse.RecentEntry{}})

	case "mkdir":
		s.sshPathOp(w, r, func(path string) error { return client.Mkdir(ctx, path) })

	case "touch":
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		var body struct {
			Path    string `json:"path"`
			Content string `json:"content"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		if body.Path == "" {
			httpx.BadRequest(w, "path is required")
			return
		}
		if err := client.Touch(ctx, body.Path, body.Content); err != nil {
			writeSSHError(w, err)
			return
		}
		writeJSON(w, map[string]any{"success": true})

	case "rename":
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		var body struct {
			Path    string `json:"path"`
			NewName string `json:"newName"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		if body.Path == "" || body.NewName == "" {
			httpx.BadRequest(w, "path and newName are required")
			return
		}
		if err := client.Rename(ctx, body.Path, body.NewName); err != nil {
			writeSSHError(w, err)
			return
		}
		writeJSON(w, map[string]any{"success": true})

	case "delete":
		s.sshPathOp(w, r, func(path string) error { return client.Delete(ctx, path) })

	case "save":
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		var body struct {
			Path    string `json:"path"`
			Content string `json:"content"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		if body.Path == "" {
			httpx.BadRequest(w, "path is required")
			return
		}
		if err := client.Save(ctx, body.Path, []byte(body.Content)); err != nil {
			writeSSHError(w, err)
			return
		}
		writeJSON(w, map[string]any{"success": true})

	case "upload":
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		if err := r.ParseMultipartForm(uploadMemoryLimit); err != nil {
			httpx.BadRequest(w, "malformed multipart body")
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			httpx.BadRequest(w, "file field is required")
			return
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			httpx.Internal(w, err.Error())
			return
		}
		name := filepath.Base(header.Filename)
		dest := name
		if dir := r.FormValue("path"); dir != "" {
			dest = dir + "/" + name
		}
		if err := client.Save(ctx, dest, data); err != nil {
			writeSSHError(w, err)
			return
		}
		writeJSON(w, map[string]any{"success": true, "name": name})

	case "duplicate":
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		var body struct {
			Path string `json:"path"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		if body.Path == "" {
			httpx.BadRequest(w, "path is required")
			return
		}
		name, err := client.Duplicate(ctx, body.Path)
		if err != nil {
			writeSSHError(w, err)
			return
		}
		writeJSON(w, map[string]any{"success": true, "name": name})

	default:
		httpx.NotFound(w, "unknown operation")
	}
}

func (s *Server) sshPathOp(w http.ResponseWriter, r *http.Request, op func(path string) error) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var body struct {
		Path string `json:"path"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Path == "" {
		httpx.BadRequest(w, "path is required")
		return
	}
	if err := op(body.Path); err != nil {
		writeSSHError(w, err)
		return
	}
	writeJSON(w, map[string]any{"success": true})
}
