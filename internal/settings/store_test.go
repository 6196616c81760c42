package settings

import (
	"errors"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "settings.json"))
}

func TestDefaults(t *testing.T) {
	s := newTestStore(t)
	got := s.Get()
	if got.LocalName != "" || got.LocalIcon != "" {
		t.Fatalf("unexpected defaults: %+v", got)
	}
	if got.ComboViews == nil || len(got.ComboViews) != 0 {
		t.Fatalf("comboViews should default to an empty slice: %+v", got.ComboViews)
	}
}

func TestPartialIdentityUpdate(t *testing.T) {
	s := newTestStore(t)
	name := "Office Mac"
	if _, err := s.Update(Patch{LocalName: &name}); err != nil {
		t.Fatal(err)
	}
	icon := "laptop"
	got, err := s.Update(Patch{LocalIcon: &icon})
	if err != nil {
		t.Fatal(err)
	}
	if got.LocalName != "Office Mac" || got.LocalIcon != "laptop" {
		t.Fatalf("merge wrong: %+v", got)
	}
}

func TestComboLifecycle(t *testing.T) {
	s := newTestStore(t)
	combo := ComboView{ID: "dev-machines", Name: "Dev Machines", DeviceIDs: []string{"local", "mini"}}
	if err := s.AddCombo(combo); err != nil {
		t.Fatal(err)
	}
	if err := s.AddCombo(combo); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate combo: got %v", err)
	}

	ids := []string{"local"}
	got, err := s.UpdateCombo("dev-machines", ComboPatch{DeviceIDs: &ids})
	if err != nil {
		t.Fatal(err)
	}
	if len(got.DeviceIDs) != 1 || got.DeviceIDs[0] != "local" {
		t.Fatalf("deviceIds not replaced: %+v", got)
	}

	if err := s.RemoveCombo("dev-machines"); err != nil {
		t.Fatal(err)
	}
	if combos := s.Combos(); len(combos) != 0 {
		t.Fatalf("expected no combos, got %+v", combos)
	}
	if err := s.RemoveCombo("dev-machines"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("remove absent: got %v", err)
	}
}

func TestDanglingDeviceIdsAreKept(t *testing.T) {
	// Referential integrity is deliberately not enforced; a combo may point
	// at a device that was deleted afterwards.
	s := newTestStore(t)
	if err := s.AddCombo(ComboView{ID: "old", Name: "Old", DeviceIDs: []string{"gone"}}); err != nil {
		t.Fatal(err)
	}
	got, ok := s.GetCombo("old")
	if !ok || len(got.DeviceIDs) != 1 || got.DeviceIDs[0] != "gone" {
		t.Fatalf("dangling reference dropped: %+v", got)
	}
}
