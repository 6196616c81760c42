// Package fsjson persists small JSON documents with atomic replace semantics.
// Writers go through a temp file, fsync, rename and a directory fsync, under
// an advisory flock; readers tolerate missing or corrupt files by leaving the
// destination value untouched so callers fall back to their defaults.
package fsjson

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// Save atomically writes v as indented JSON to path. If perm is 0, 0600 is
// used. The write is serialized against other Save calls on the same path via
// a path+".lock" flock.
func Save(path string, v any, perm fs.FileMode) error {
	if perm == 0 {
		perm = 0o600
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')

	unlock, err := flockExclusive(path + ".lock")
	if err != nil {
		return err
	}
	defer unlock()

	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return fsyncDir(filepath.Dir(path))
}

// Load reads JSON from path into v. A missing, empty or unparseable file is
// not an error: v is left as-is and ok is false, so the caller's zero value
// stands in as the default. Reads never touch the temp file; a concurrent
// Save may be between write and rename, and Save's O_TRUNC open reclaims
// stale temps on its own.
func Load(path string, v any) (ok bool) {
	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false
	}
	return true
}

// LoadStrict is Load but surfaces read and parse errors, for callers that
// need to distinguish absence from corruption.
func LoadStrict(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return true, err
	}
	return true, nil
}

func fsyncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}
