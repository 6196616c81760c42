// Package browse implements file browsing against the local root directory
// and defines the envelope types every execution adapter returns, so a
// listing looks the same whether it came from disk, SSH or a proxied peer.
package browse

import (
	"errors"
	"sort"
	"strings"
)

const (
	TypeFile      = "file"
	TypeDirectory = "directory"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("already exists")
	ErrInvalidPath = errors.New("invalid path")
)

type FileItem struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Size     int64  `json:"size"`
	Modified string `json:"modified,omitempty"`
}

type Crumb struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

type Listing struct {
	Path        string     `json:"path"`
	Breadcrumbs []Crumb    `json:"breadcrumbs"`
	Files       []FileItem `json:"files"`
}

type SearchResult struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"`
}

type Preview struct {
	Type    string `json:"type"` // image | text | unsupported
	Mime    string `json:"mime,omitempty"`
	Data    string `json:"data,omitempty"` // base64, image previews only
	Content string `json:"content,omitempty"`
	Message string `json:"message,omitempty"`
}

type Info struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Size        int64  `json:"size"`
	IsDirectory bool   `json:"isDirectory"`
	Created     string `json:"created,omitempty"`
	Modified    string `json:"modified,omitempty"`
	Accessed    string `json:"accessed,omitempty"`
}

// SortFiles orders directories first, then lexicographically by name with a
// case-sensitive ordinal compare. Every adapter applies the same order.
func SortFiles(files []FileItem) {
	sort.SliceStable(files, func(i, j int) bool {
		di, dj := files[i].Type == TypeDirectory, files[j].Type == TypeDirectory
		if di != dj {
			return di
		}
		return files[i].Name < files[j].Name
	})
}

// Breadcrumbs splits a relative path into clickable segments, root first.
func Breadcrumbs(rel string) []Crumb {
	crumbs := []Crumb{{Name: "", Path: ""}}
	rel = strings.Trim(rel, "/")
	if rel == "" || rel == "." {
		return crumbs
	}
	acc := ""
	for _, seg := range strings.Split(rel, "/") {
		if seg == "" {
			continue
		}
		if acc == "" {
			acc = seg
		} else {
			acc = acc + "/" + seg
		}
		crumbs = append(crumbs, Crumb{Name: seg, Path: acc})
	}
	return crumbs
}
