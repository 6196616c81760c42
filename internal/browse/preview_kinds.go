package browse

import "strings"

// PreviewTextLimit caps how much of a text file a preview returns.
const PreviewTextLimit = 500_000

var imageMimes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".bmp":  "image/bmp",
	".ico":  "image/x-icon",
	".avif": "image/avif",
}

var textExts = map[string]bool{
	".txt": true, ".md": true, ".markdown": true, ".log": true, ".csv": true,
	".json": true, ".yaml": true, ".yml": true, ".toml": true, ".ini": true,
	".xml": true, ".html": true, ".css": true, ".js": true, ".jsx": true,
	".ts": true, ".tsx": true, ".go": true, ".py": true, ".rb": true,
	".rs": true, ".c": true, ".h": true, ".cpp": true, ".hpp": true,
	".java": true, ".kt": true, ".swift": true, ".sh": true, ".bash": true,
	".zsh": true, ".fish": true, ".sql": true, ".php": true, ".lua": true,
	".pl": true, ".r": true, ".conf": true, ".cfg": true, ".env": true,
	".gitignore": true, ".dockerfile": true, ".mod": true, ".sum": true,
}

// ImageMime returns the MIME type for image previews, or "" when the
// extension is not a previewable image.
func ImageMime(name string) string {
	return imageMimes[strings.ToLower(ext(name))]
}

// IsText reports whether the file should be previewed as text. Extensionless
// well-known files (Makefile, Dockerfile, ...) count too.
func IsText(name string) bool {
	e := strings.ToLower(ext(name))
	if e == "" {
		switch strings.ToLower(name) {
		case "makefile", "dockerfile", "license", "readme", "changelog":
			return true
		}
		return false
	}
	return textExts[e]
}

func ext(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return ""
	}
	return name[i:]
}
