package server

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"skiff/internal/browse"
	"skiff/pkg/httpx"
)

// filesHandlers serves the plain local file surface. The same instance backs
// /api/* and the /api/d/local/* re-dispatch.
type filesHandlers struct {
	fs browse.FS
}

func (h *filesHandlers) routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/files", h.list)
	r.Get("/search", h.search)
	r.Get("/preview", h.preview)
	r.Get("/info", h.info)
	r.Get("/download", h.download)
	r.Get("/recent", h.recent)
	r.Post("/mkdir", h.mkdir)
	r.Post("/touch", h.touch)
	r.Post("/rename", h.rename)
	r.Post("/delete", h.delete)
	r.Post("/save", h.save)
	r.Post("/upload", h.upload)
	r.Post("/duplicate", h.duplicate)
	return r
}

// writeOpError maps adapter failures onto the error taxonomy.
func writeOpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, browse.ErrNotFound):
		httpx.NotFound(w, "no such file or directory")
	case errors.Is(err, browse.ErrConflict):
		httpx.Conflict(w, "destination already exists")
	case errors.Is(err, browse.ErrInvalidPath):
		httpx.BadRequest(w, "invalid path")
	default:
		httpx.Internal(w, err.Error())
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		httpx.BadRequest(w, "malformed request body")
		return false
	}
	return true
}

func showHidden(r *http.Request) bool {
	v := r.URL.Query().Get("hidden")
	return v == "true" || v == "1"
}

func (h *filesHandlers) list(w http.ResponseWriter, r *http.Request) {
	listing, err := h.fs.List(r.URL.Query().Get("path"), showHidden(r))
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, listing)
}

func (h *filesHandlers) search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		httpx.BadRequest(w, "query is required")
		return
	}
	results, err := h.fs.Search(r.URL.Query().Get("path"), query)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, map[string]any{"results": results})
}

func (h *filesHandlers) preview(w http.ResponseWriter, r *http.Request) {
	p, err := h.fs.Preview(r.URL.Query().Get("path"))
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, p)
}

func (h *filesHandlers) info(w http.ResponseWriter, r *http.Request) {
	info, err := h.fs.Info(r.URL.Query().Get("path"))
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, info)
}

func (h *filesHandlers) download(w http.ResponseWriter, r *http.Request) {
	name, data, err := h.fs.Download(r.URL.Query().Get("path"))
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeAttachment(w, name, data)
}

func writeAttachment(w http.ResponseWriter, name string, data []byte) {
	ct := mime.TypeByExtension(filepath.Ext(name))
	if ct == "" {
		ct = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	_, _ = w.Write(data)
}

func (h *filesHandlers) recent(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"recent": h.fs.Recent()})
}

func (h *filesHandlers) mkdir(w http.ResponseWriter, r *http.Request) {
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
	if err := h.fs.Mkdir(body.Path); err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, map[string]any{"success": true})
}

func (h *filesHandlers) touch(w http.ResponseWriter, r *http.Request) {
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
	if err := h.fs.Touch(body.Path, body.Content); err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, map[string]any{"success": true})
}

func (h *filesHandlers) rename(w http.ResponseWriter, r *http.Request) {
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
	if err := h.fs.Rename(body.Path, body.NewName); err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, map[string]any{"success": true})
}

func (h *filesHandlers) delete(w http.ResponseWriter, r *http.Request) {
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
	if err := h.fs.Delete(body.Path); err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, map[string]any{"success": true})
}

func (h *filesHandlers) save(w http.ResponseWriter, r *http.Request) {
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
	if err := h.fs.Save(body.Path, []byte(body.Content)); err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, map[string]any{"success": true})
}

const uploadMemoryLimit = 32 << 20

func (h *filesHandlers) upload(w http.ResponseWriter, r *http.Request) {
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
	name := filepath.Base(header.Filename)
	if name == "" || name == "." || name == string(filepath.Separator) {
		httpx.BadRequest(w, "invalid file name")
		return
	}
	dir := r.FormValue("path")
	dest := name
	if dir != "" {
		dest = dir + "/" + name
	}
	if err := h.fs.SaveStream(dest, file); err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, map[string]any{"success": true, "name": name})
}

func (h *filesHandlers) duplicate(w http.ResponseWriter, r *http.Request) {
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
	name, err := h.fs.Duplicate(body.Path)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, map[string]any{"success": true, "name": name})
}
