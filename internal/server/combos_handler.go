package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"skiff/internal/devices"
	"skiff/internal/settings"
	"skiff/pkg/httpx"
)

func (s *Server) handleCombosList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"combos": s.settings.Combos()})
}

func (s *Server) handleComboAdd(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name      string   `json:"name"`
		Icon      string   `json:"icon"`
		DeviceIDs []string `json:"deviceIds"`
	}
	if err := decodeValidated(r, comboAddSchema, &body); err != nil {
		httpx.BadRequest(w, err.Error())
		return
	}
	combo := settings.ComboView{
		ID:        devices.Slugify(body.Name),
		Name:      body.Name,
		Icon:      body.Icon,
		DeviceIDs: body.DeviceIDs,
	}
	if combo.ID == "" {
		httpx.BadRequest(w, "name must contain at least one alphanumeric character")
		return
	}
	if err := s.settings.AddCombo(combo); err != nil {
		if errors.Is(err, settings.ErrConflict) {
			httpx.Conflict(w, "a combo with this id already exists")
			return
		}
		httpx.Internal(w, err.Error())
		return
	}
	writeJSON(w, map[string]any{"success": true, "combo": combo})
}

func (s *Server) handleComboUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body struct {
		Name      *string   `json:"name"`
		Icon      *string   `json:"icon"`
		DeviceIDs *[]string `json:"deviceIds"`
	}
	if err := decodeValidated(r, comboUpdateSchema, &body); err != nil {
		httpx.BadRequest(w, err.Error())
		return
	}
	combo, err := s.settings.UpdateCombo(id, settings.ComboPatch{
		Name:      body.Name,
		Icon:      body.Icon,
		DeviceIDs: body.DeviceIDs,
	})
	if err != nil {
		if errors.Is(err, settings.ErrNotFound) {
			httpx.NotFound(w, err.Error())
			return
		}
		httpx.Internal(w, err.Error())
		return
	}
	writeJSON(w, map[string]any{"success": true, "combo": combo})
}

func (s *Server) handleComboRemove(w http.ResponseWriter, r *http.Request) {
	if err := s.settings.RemoveCombo(chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, settings.ErrNotFound) {
			httpx.NotFound(w, err.Error())
			return
		}
		httpx.Internal(w, err.Error())
		return
	}
	writeJSON(w, map[string]any{"success": true})
}
