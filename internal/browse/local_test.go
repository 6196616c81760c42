package browse

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestFS(t *testing.T) FS {
	t.Helper()
	root := t.TempDir()
	mustWrite := func(rel, content string) {
		t.Helper()
		p := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	mustWrite("zeta.txt", "z")
	mustWrite("alpha.txt", "a")
	mustWrite(".hidden", "h")
	mustWrite("docs/readme.md", "# hi")
	mustWrite("Backups/old.txt", "old")
	return FS{Root: root, Recents: NewRecentStore()}
}

func TestListOrdering(t *testing.T) {
	fs := newTestFS(t)
	listing, err := fs.List("", false)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, f := range listing.Files {
		names = append(names, f.Name)
	}
	// Directories first, then files, case-sensitive ordinal order within
	// each group.
	want := []string{"Backups", "docs", "alpha.txt", "zeta.txt"}
	if len(names) != len(want) {
		t.Fatalf("got %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("got %v, want %v", names, want)
		}
	}
}

func TestListHidden(t *testing.T) {
	fs := newTestFS(t)
	listing, err := fs.List("", true)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, f := range listing.Files {
		if f.Name == ".hidden" {
			found = true
		}
	}
	if !found {
		t.Fatal("hidden=true should include dotfiles")
	}
}

func TestListBreadcrumbs(t *testing.T) {
	fs := newTestFS(t)
	listing, err := fs.List("docs", false)
	if err != nil {
		t.Fatal(err)
	}
	if listing.Path != "docs" {
		t.Fatalf("path: %q", listing.Path)
	}
	if len(listing.Breadcrumbs) != 2 || listing.Breadcrumbs[1].Path != "docs" {
		t.Fatalf("breadcrumbs: %+v", listing.Breadcrumbs)
	}
}

func TestListMissingDir(t *testing.T) {
	fs := newTestFS(t)
	if _, err := fs.List("nope", false); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestSearchExcludesDotfiles(t *testing.T) {
	fs := newTestFS(t)
	results, err := fs.Search("", "hidden")
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range results {
		if r.Name == ".hidden" {
			t.Fatal("dotfile leaked into search results")
		}
	}
}

func TestSearchFindsNested(t *testing.T) {
	fs := newTestFS(t)
	results, err := fs.Search("", "readme")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) == 0 || results[0].Path != "docs/readme.md" {
		t.Fatalf("unexpected results: %+v", results)
	}
}

func TestPreviewKinds(t *testing.T) {
	fs := newTestFS(t)
	p, err := fs.Preview("docs/readme.md")
	if err != nil {
		t.Fatal(err)
	}
	if p.Type != "text" || p.Content != "# hi" {
		t.Fatalf("text preview: %+v", p)
	}

	if err := os.WriteFile(filepath.Join(fs.Root, "pic.png"), []byte{0x89, 'P', 'N', 'G'}, 0o644); err != nil {
		t.Fatal(err)
	}
	p, err = fs.Preview("pic.png")
	if err != nil {
		t.Fatal(err)
	}
	if p.Type != "image" || p.Mime != "image/png" || p.Data == "" {
		t.Fatalf("image preview: %+v", p)
	}

	if err := os.WriteFile(filepath.Join(fs.Root, "blob.bin"), []byte{1, 2, 3}, 0o644); err != nil {
		t.Fatal(err)
	}
	p, err = fs.Preview("blob.bin")
	if err != nil {
		t.Fatal(err)
	}
	if p.Type != "unsupported" || p.Message == "" {
		t.Fatalf("unsupported preview: %+v", p)
	}
}

func TestRenameConflict(t *testing.T) {
	fs := newTestFS(t)
	if err := fs.Rename("alpha.txt", "zeta.txt"); !errors.Is(err, ErrConflict) {
		t.Fatalf("got %v, want ErrConflict", err)
	}
	if err := fs.Rename("alpha.txt", "beta.txt"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(fs.Root, "beta.txt")); err != nil {
		t.Fatal("renamed file missing")
	}
}

func TestDeleteRefusesRoot(t *testing.T) {
	fs := newTestFS(t)
	if err := fs.Delete(""); !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("delete root: got %v", err)
	}
	if err := fs.Delete("docs"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(fs.Root, "docs")); !os.IsNotExist(err) {
		t.Fatal("directory not deleted")
	}
}

func TestDuplicateNames(t *testing.T) {
	fs := newTestFS(t)
	name, err := fs.Duplicate("alpha.txt")
	if err != nil {
		t.Fatal(err)
	}
	if name != "alpha copy.txt" {
		t.Fatalf("first duplicate: %q", name)
	}
	name, err = fs.Duplicate("alpha.txt")
	if err != nil {
		t.Fatal(err)
	}
	if name != "alpha copy 2.txt" {
		t.Fatalf("second duplicate: %q", name)
	}
	// Directories duplicate recursively.
	name, err = fs.Duplicate("Backups")
	if err != nil {
		t.Fatal(err)
	}
	if name != "Backups copy" {
		t.Fatalf("dir duplicate: %q", name)
	}
	if _, err := os.Stat(filepath.Join(fs.Root, "Backups copy", "old.txt")); err != nil {
		t.Fatal("directory contents not copied")
	}
}

func TestSaveAndRecent(t *testing.T) {
	fs := newTestFS(t)
	if err := fs.Save("notes.txt", []byte("hello")); err != nil {
		t.Fatal(err)
	}
	recent := fs.Recent()
	if len(recent) == 0 || recent[0].Path != "notes.txt" {
		t.Fatalf("save should feed recents: %+v", recent)
	}
	if err := fs.Delete("notes.txt"); err != nil {
		t.Fatal(err)
	}
	for _, e := range fs.Recent() {
		if e.Path == "notes.txt" {
			t.Fatal("deleted file still in recents")
		}
	}
}

func TestSandboxEscapeIsConfined(t *testing.T) {
	fs := newTestFS(t)
	// Traversal is neutralized, so this reads (root)/etc at worst, which
	// does not exist.
	if _, err := fs.List("../../etc", false); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound inside the sandbox", err)
	}
}
