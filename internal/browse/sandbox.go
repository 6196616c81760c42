package browse

import (
	"path/filepath"
	"strings"
)

// Resolve confines a client-supplied path to root. The input is treated as
// relative to root (a leading slash is stripped, not honored), cleaned, and
// the joined result must still sit under root. Returns the absolute path and
// the cleaned relative path.
func Resolve(root, p string) (abs string, rel string, err error) {
	if strings.ContainsRune(p, 0) {
		return "", "", ErrInvalidPath
	}
	rel = filepath.Clean("/" + p)
	rel = strings.TrimPrefix(rel, "/")
	abs = filepath.Join(root, rel)
	if abs != root && !strings.HasPrefix(abs, root+string(filepath.Separator)) {
		return "", "", ErrInvalidPath
	}
	return abs, rel, nil
}
