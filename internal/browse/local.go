package browse

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FS is the local-filesystem execution adapter, rooted at Root. Every path
// argument is client-relative and passes through Resolve before any I/O.
type FS struct {
	Root    string
	Recents *RecentStore
}

func isoTime(t time.Time) string { return t.UTC().Format(time.RFC3339) }

func (f FS) List(p string, showHidden bool) (Listing, error) {
	abs, rel, err := Resolve(f.Root, p)
	if err != nil {
		return Listing{}, err
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return Listing{}, ErrNotFound
		}
		return Listing{}, err
	}
	files := make([]FileItem, 0, len(entries))
	for _, e := range entries {
		if !showHidden && strings.HasPrefix(e.Name(), ".") {
			continue
		}
		item := FileItem{Name: e.Name(), Type: TypeFile}
		if e.IsDir() {
			item.Type = TypeDirectory
		}
		if fi, err := e.Info(); err == nil {
			item.Size = fi.Size()
			item.Modified = isoTime(fi.ModTime())
		}
		files = append(files, item)
	}
	SortFiles(files)
	return Listing{Path: rel, Breadcrumbs: Breadcrumbs(rel), Files: files}, nil
}

func (f FS) Search(p, query string) ([]SearchResult, error) {
	abs, _, err := Resolve(f.Root, p)
	if err != nil {
		return nil, err
	}
	var candidates []SearchResult
	baseDepth := strings.Count(abs, string(filepath.Separator))
	err = filepath.WalkDir(abs, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if path == abs {
			return nil
		}
		depth := strings.Count(path, string(filepath.Separator)) - baseDepth
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() && depth >= MaxSearchDepth {
			return filepath.SkipDir
		}
		relPath, _ := filepath.Rel(f.Root, path)
		t := TypeFile
		if d.IsDir() {
			t = TypeDirectory
		}
		candidates = append(candidates, SearchResult{
			Name: d.Name(),
			Path: filepath.ToSlash(relPath),
			Type: t,
		})
		if len(candidates) >= MaxSearchEntries {
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return RankMatches(query, candidates), nil
}

func (f FS) Preview(p string) (Preview, error) {
	abs, rel, err := Resolve(f.Root, p)
	if err != nil {
		return Preview{}, err
	}
	fi, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return Preview{}, ErrNotFound
		}
		return Preview{}, err
	}
	if fi.IsDir() {
		return Preview{}, ErrInvalidPath
	}
	name := filepath.Base(abs)
	if mime := ImageMime(name); mime != "" {
		data, err := os.ReadFile(abs)
		if err != nil {
			return Preview{}, err
		}
		f.touch(rel)
		return Preview{Type: "image", Mime: mime, Data: base64.StdEncoding.EncodeToString(data)}, nil
	}
	if IsText(name) {
		file, err := os.Open(abs)
		if err != nil {
			return Preview{}, err
		}
		defer file.Close()
		buf, err := io.ReadAll(io.LimitReader(file, PreviewTextLimit))
		if err != nil {
			return Preview{}, err
		}
		f.touch(rel)
		return Preview{Type: "text", Content: string(buf)}, nil
	}
	return Preview{Type: "unsupported", Message: "no preview available for this file type"}, nil
}

func (f FS) Info(p string) (Info, error) {
	abs, rel, err := Resolve(f.Root, p)
	if err != nil {
		return Info{}, err
	}
	fi, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return Info{}, ErrNotFound
		}
		return Info{}, err
	}
	info := Info{
		Name:        filepath.Base(abs),
		Path:        rel,
		Size:        fi.Size(),
		IsDirectory: fi.IsDir(),
		Modified:    isoTime(fi.ModTime()),
	}
	if created, accessed, ok := statTimes(fi); ok {
		info.Created = isoTime(created)
		info.Accessed = isoTime(accessed)
	}
	return info, nil
}

// Download returns the file's name and contents for attachment delivery.
func (f FS) Download(p string) (string, []byte, error) {
	abs, rel, err := Resolve(f.Root, p)
	if err != nil {
		return "", nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, ErrNotFound
		}
		return "", nil, err
	}
	f.touch(rel)
	return filepath.Base(abs), data, nil
}

func (f FS) Mkdir(p string) error {
	abs, _, err := Resolve(f.Root, p)
	if err != nil {
		return err
	}
	return os.MkdirAll(abs, 0o755)
}

// Touch creates a file, optionally with initial content. Existing files only
// get their mtime bumped when no content is supplied.
func (f FS) Touch(p, content string) error {
	abs, _, err := Resolve(f.Root, p)
	if err != nil {
		return err
	}
	if content != "" {
		return os.WriteFile(abs, []byte(content), 0o644)
	}
	file, err := os.OpenFile(abs, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	now := time.Now()
	_ = os.Chtimes(abs, now, now)
	return file.Close()
}

func (f FS) Rename(p, newName string) error {
	abs, rel, err := Resolve(f.Root, p)
	if err != nil {
		return err
	}
	if newName == "" || strings.ContainsAny(newName, "/\x00") {
		return ErrInvalidPath
	}
	dest := filepath.Join(filepath.Dir(abs), newName)
	if _, err := os.Lstat(dest); err == nil {
		return ErrConflict
	}
	if _, err := os.Lstat(abs); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return err
	}
	if err := os.Rename(abs, dest); err != nil {
		return err
	}
	f.forget(rel)
	return nil
}

// Delete removes a file or directory tree. The browse root itself is
// refused.
func (f FS) Delete(p string) error {
	abs, rel, err := Resolve(f.Root, p)
	if err != nil {
		return err
	}
	if abs == f.Root {
		return ErrInvalidPath
	}
	if _, err := os.Lstat(abs); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return err
	}
	if err := os.RemoveAll(abs); err != nil {
		return err
	}
	f.forget(rel)
	return nil
}

func (f FS) Save(p string, content []byte) error {
	abs, rel, err := Resolve(f.Root, p)
	if err != nil {
		return err
	}
	if err := os.WriteFile(abs, content, 0o644); err != nil {
		return err
	}
	f.touch(rel)
	return nil
}

// SaveStream writes r to p through a uuid-named temp file in the same
// directory, then renames into place. Used by uploads.
func (f FS) SaveStream(p string, r io.Reader) error {
	abs, _, err := Resolve(f.Root, p)
	if err != nil {
		return err
	}
	tmp := filepath.Join(filepath.Dir(abs), ".upload-"+uuid.NewString())
	file, err := os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(file, r); err != nil {
		_ = file.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, abs)
}

// Duplicate copies p to the first free "{base} copy[ N]{ext}" sibling and
// returns the chosen name.
func (f FS) Duplicate(p string) (string, error) {
	abs, _, err := Resolve(f.Root, p)
	if err != nil {
		return "", err
	}
	if _, err := os.Lstat(abs); err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", err
	}
	dir := filepath.Dir(abs)
	for _, cand := range CopyCandidates(filepath.Base(abs), 100) {
		dest := filepath.Join(dir, cand)
		if _, err := os.Lstat(dest); err == nil {
			continue
		}
		if err := copyTree(abs, dest); err != nil {
			return "", err
		}
		return cand, nil
	}
	return "", ErrConflict
}

func (f FS) Recent() []RecentEntry {
	if f.Recents == nil {
		return []RecentEntry{}
	}
	return f.Recents.List()
}

func (f FS) touch(rel string) {
	if f.Recents != nil {
		f.Recents.Touch(rel)
	}
}

func (f FS) forget(rel string) {
	if f.Recents != nil {
		f.Recents.Forget(rel)
	}
}

// CopyCandidates yields duplicate names: "name copy.txt", "name copy 2.txt",
// ... Directories and extensionless files get the suffix appended bare.
func CopyCandidates(name string, n int) []string {
	base := name
	ext := ""
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		base, ext = name[:i], name[i:]
	}
	out := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		if i == 1 {
			out = append(out, fmt.Sprintf("%s copy%s", base, ext))
		} else {
			out = append(out, fmt.Sprintf("%s copy %d%s", base, i, ext))
		}
	}
	return out
}

func copyTree(src, dest string) error {
	fi, err := os.Lstat(src)
	if err != nil {
		return err
	}
	if fi.IsDir() {
		if err := os.MkdirAll(dest, fi.Mode().Perm()); err != nil {
			return err
		}
		entries, err := os.ReadDir(src)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if err := copyTree(filepath.Join(src, e.Name()), filepath.Join(dest, e.Name())); err != nil {
				return err
			}
		}
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_EXCL|os.O_WRONLY, fi.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
