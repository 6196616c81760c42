package devices

import (
	"github.com/rs/zerolog/log"

	"skiff/internal/fsjson"
)

// Store persists the registry in devices.json. Reads parse the file fresh on
// every call so concurrent skiff processes sharing a data dir stay
// coherent; a missing or corrupt file degrades to an empty registry.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) List() []Device {
	var list []Device
	if exists, err := fsjson.LoadStrict(s.path, &list); err != nil {
		// Corruption degrades to empty, but unlike plain absence it is
		// worth a trace in the log.
		log.Warn().Str("path", s.path).Err(err).Msg("device registry unreadable, treating as empty")
		list = nil
	} else if !exists {
		list = nil
	}
	if list == nil {
		list = []Device{}
	}
	return list
}

func (s *Store) Get(id string) (Device, bool) {
	for _, d := range s.List() {
		if d.ID == id {
			return d, true
		}
	}
	return Device{}, false
}

func (s *Store) Add(d Device) error {
	if d.ID == LocalID {
		return ErrConflict
	}
	list := s.List()
	for _, existing := range list {
		if existing.ID == d.ID {
			return ErrConflict
		}
	}
	list = append(list, d)
	return fsjson.Save(s.path, list, 0o600)
}

// Patch carries a partial update; nil fields are left unchanged. An empty
// (non-nil) AuthToken clears the stored token.
type Patch struct {
	Name      *string
	URL       *string
	Icon      *string
	Enabled   *bool
	AuthToken *string
	SSHRoot   *string
}

func (s *Store) Update(id string, p Patch) (Device, error) {
	if id == LocalID {
		return Device{}, ErrLocalReserved
	}
	list := s.List()
	for i := range list {
		if list[i].ID != id {
			continue
		}
		d := &list[i]
		if p.Name != nil && *p.Name != "" {
			d.Name = *p.Name
		}
		if p.Icon != nil {
			d.Icon = *p.Icon
		}
		if p.Enabled != nil {
			d.Enabled = *p.Enabled
		}
		if p.URL != nil && d.HTTP != nil && *p.URL != "" {
			d.HTTP.URL = *p.URL
		}
		if p.AuthToken != nil && d.HTTP != nil {
			d.HTTP.AuthToken = *p.AuthToken
		}
		if p.SSHRoot != nil && d.SSH != nil && *p.SSHRoot != "" {
			d.SSH.Root = *p.SSHRoot
		}
		if err := fsjson.Save(s.path, list, 0o600); err != nil {
			return Device{}, err
		}
		return *d, nil
	}
	return Device{}, ErrNotFound
}

func (s *Store) Remove(id string) error {
	if id == LocalID {
		return ErrLocalReserved
	}
	list := s.List()
	kept := list[:0]
	for _, d := range list {
		if d.ID != id {
			kept = append(kept, d)
		}
	}
	if len(kept) == len(list) {
		return ErrNotFound
	}
	return fsjson.Save(s.path, kept, 0o600)
}
