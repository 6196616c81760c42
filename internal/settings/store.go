// Package settings persists the hub's display identity and combo views in
// settings.json.
package settings

import (
	"errors"

	"skiff/internal/fsjson"
)

var (
	ErrNotFound = errors.New("combo not found")
	ErrConflict = errors.New("combo id already exists")
)

// ComboView is a named, ordered grouping of device ids browsed as one
// target. Ids may reference disabled or since-deleted devices; consumers
// skip entries they cannot resolve.
type ComboView struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Icon      string   `json:"icon,omitempty"`
	DeviceIDs []string `json:"deviceIds"`
}

type Settings struct {
	LocalName  string      `json:"localName,omitempty"`
	LocalIcon  string      `json:"localIcon,omitempty"`
	ComboViews []ComboView `json:"comboViews"`
}

// Store reads settings.json fresh on every call and writes atomically.
// Missing or corrupt files yield the defaults.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Get() Settings {
	var out Settings
	fsjson.Load(s.path, &out)
	if out.ComboViews == nil {
		out.ComboViews = []ComboView{}
	}
	return out
}

func (s *Store) save(v Settings) error {
	return fsjson.Save(s.path, v, 0o600)
}

// Patch is a partial identity update; nil fields stay untouched.
type Patch struct {
	LocalName *string
	LocalIcon *string
}

func (s *Store) Update(p Patch) (Settings, error) {
	cur := s.Get()
	if p.LocalName != nil {
		cur.LocalName = *p.LocalName
	}
	if p.LocalIcon != nil {
		cur.LocalIcon = *p.LocalIcon
	}
	if err := s.save(cur); err != nil {
		return Settings{}, err
	}
	return cur, nil
}

func (s *Store) Combos() []ComboView {
	return s.Get().ComboViews
}

func (s *Store) GetCombo(id string) (ComboView, bool) {
	for _, c := range s.Combos() {
		if c.ID == id {
			return c, true
		}
	}
	return ComboView{}, false
}

func (s *Store) AddCombo(c ComboView) error {
	cur := s.Get()
	for _, existing := range cur.ComboViews {
		if existing.ID == c.ID {
			return ErrConflict
		}
	}
	cur.ComboViews = append(cur.ComboViews, c)
	return s.save(cur)
}

// ComboPatch updates provided fields only; DeviceIDs replaces the whole
// ordered sequence when present.
type ComboPatch struct {
	Name      *string
	Icon      *string
	DeviceIDs *[]string
}

func (s *Store) UpdateCombo(id string, p ComboPatch) (ComboView, error) {
	cur := s.Get()
	for i := range cur.ComboViews {
		if cur.ComboViews[i].ID != id {
			continue
		}
		c := &cur.ComboViews[i]
		if p.Name != nil && *p.Name != "" {
			c.Name = *p.Name
		}
		if p.Icon != nil {
			c.Icon = *p.Icon
		}
		if p.DeviceIDs != nil {
			c.DeviceIDs = *p.DeviceIDs
		}
		if err := s.save(cur); err != nil {
			return ComboView{}, err
		}
		return *c, nil
	}
	return ComboView{}, ErrNotFound
}

func (s *Store) RemoveCombo(id string) error {
	cur := s.Get()
	kept := cur.ComboViews[:0]
	for _, c := range cur.ComboViews {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(cur.ComboViews) {
		return ErrNotFound
	}
	cur.ComboViews = kept
	return s.save(cur)
}
