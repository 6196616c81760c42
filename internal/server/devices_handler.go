package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"skiff/internal/devices"
	"skiff/pkg/httpx"
)

func (s *Server) handleDevicesList(w http.ResponseWriter, r *http.Request) {
	cfg := s.settings.Get()
	list := []devices.Public{devices.Local(cfg.LocalName, cfg.LocalIcon)}
	for _, d := range s.devices.List() {
		list = append(list, d.Public())
	}
	writeJSON(w, map[string]any{"devices": list})
}

func (s *Server) handleDeviceAdd(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name      string `json:"name"`
		URL       string `json:"url"`
		AuthToken string `json:"authToken"`
		SSHHost   string `json:"sshHost"`
		SSHRoot   string `json:"sshRoot"`
		Icon      string `json:"icon"`
	}
	if err := decodeValidated(r, deviceAddSchema, &body); err != nil {
		httpx.BadRequest(w, err.Error())
		return
	}

	var d devices.Device
	switch {
	case body.SSHHost != "":
		name := body.Name
		if name == "" {
			name = body.SSHHost
		}
		d = devices.Device{
			Name:    name,
			Icon:    body.Icon,
			Enabled: true,
			SSH:     &devices.SSHConn{Host: body.SSHHost, Root: body.SSHRoot},
		}
		home, err := devices.ProbeSSH(r.Context(), body.SSHHost)
		if err != nil {
			httpx.BadGateway(w, "ssh probe failed: "+err.Error())
			return
		}
		if d.SSH.Root == "" {
			d.SSH.Root = home
		}
	default:
		if body.Name == "" {
			httpx.BadRequest(w, "name is required")
			return
		}
		d = devices.Device{
			Name:    body.Name,
			Icon:    body.Icon,
			Enabled: true,
			HTTP:    &devices.HTTPConn{URL: body.URL, AuthToken: body.AuthToken},
		}
		// The probe carries the explicit token when given, otherwise the
		// caller's own token, otherwise the hub admin token.
		token := body.AuthToken
		if token == "" {
			token = callerToken(r)
		}
		if token == "" {
			token = s.cfg.AdminToken
		}
		if err := devices.ProbeHTTP(r.Context(), body.URL, token); err != nil {
			httpx.BadGateway(w, "device unreachable: "+err.Error())
			return
		}
	}

	d.ID = devices.Slugify(d.Name)
	if d.ID == "" {
		httpx.BadRequest(w, "name must contain at least one alphanumeric character")
		return
	}
	if err := s.devices.Add(d); err != nil {
		if errors.Is(err, devices.ErrConflict) {
			httpx.Conflict(w, "a device with this id already exists")
			return
		}
		httpx.Internal(w, err.Error())
		return
	}
	writeJSON(w, map[string]any{"success": true, "device": d.Public()})
}

func (s *Server) handleDeviceUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body struct {
		Name      *string `json:"name"`
		URL       *string `json:"url"`
		AuthToken *string `json:"authToken"`
		SSHRoot   *string `json:"sshRoot"`
		Icon      *string `json:"icon"`
		Enabled   *bool   `json:"enabled"`
	}
	if err := decodeValidated(r, deviceUpdateSchema, &body); err != nil {
		httpx.BadRequest(w, err.Error())
		return
	}
	d, err := s.devices.Update(id, devices.Patch{
		Name:      body.Name,
		URL:       body.URL,
		AuthToken: body.AuthToken,
		SSHRoot:   body.SSHRoot,
		Icon:      body.Icon,
		Enabled:   body.Enabled,
	})
	if err != nil {
		writeDeviceError(w, err)
		return
	}
	writeJSON(w, map[string]any{"success": true, "device": d.Public()})
}

func (s *Server) handleDeviceRemove(w http.ResponseWriter, r *http.Request) {
	if err := s.devices.Remove(chi.URLParam(r, "id")); err != nil {
		writeDeviceError(w, err)
		return
	}
	writeJSON(w, map[string]any{"success": true})
}

func writeDeviceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, devices.ErrLocalReserved):
		httpx.BadRequest(w, err.Error())
	case errors.Is(err, devices.ErrNotFound):
		httpx.NotFound(w, err.Error())
	case errors.Is(err, devices.ErrConflict):
		httpx.Conflict(w, err.Error())
	default:
		httpx.Internal(w, err.Error())
	}
}

func (s *Server) handleDeviceHealth(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == devices.LocalID {
		writeJSON(w, devices.CheckHealth(r.Context(), devices.Device{ID: devices.LocalID}, "", ""))
		return
	}
	d, ok := s.devices.Get(id)
	if !ok {
		httpx.NotFound(w, "device not found")
		return
	}
	writeJSON(w, devices.CheckHealth(r.Context(), d, callerToken(r), s.cfg.AdminToken))
}
