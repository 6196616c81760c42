package sshfs

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"skiff/internal/browse"
)

// Remote exit codes the scripts use to signal typed failures.
const (
	codeNotFound = 2
	codeConflict = 4
)

// RemoteError is any SSH failure that is not a sandbox violation or a typed
// not-found/conflict; the API surfaces it as 502 with the captured stderr.
type RemoteError struct {
	Code int
	Msg  string
}

func (e *RemoteError) Error() string { return fmt.Sprintf("ssh: %s (exit %d)", e.Msg, e.Code) }

// Client implements the file-operation contract against one SSH device,
// rooted at Root on the remote host.
type Client struct {
	runner Runner
	Root   string
}

func NewClient(host, root string) *Client {
	if root == "" {
		root = "/"
	}
	return &Client{runner: Runner{Host: host}, Root: root}
}

// resolve confines a client path under the remote root, POSIX semantics.
func (c *Client) resolve(p string) (abs, rel string, err error) {
	if strings.ContainsRune(p, 0) {
		return "", "", browse.ErrInvalidPath
	}
	rel = strings.TrimPrefix(path.Clean("/"+p), "/")
	abs = path.Join(c.Root, rel)
	if abs != c.Root && !strings.HasPrefix(abs, strings.TrimSuffix(c.Root, "/")+"/") {
		return "", "", browse.ErrInvalidPath
	}
	return abs, rel, nil
}

func (c *Client) run(ctx context.Context, timeout time.Duration, script string, stdin []byte) (Result, error) {
	var in *bytes.Reader
	if stdin != nil {
		in = bytes.NewReader(stdin)
	}
	var res Result
	var err error
	if in != nil {
		res, err = c.runner.Run(ctx, timeout, script, in)
	} else {
		res, err = c.runner.Run(ctx, timeout, script, nil)
	}
	if err != nil {
		if errors.Is(err, ErrTimeout) {
			return res, ErrTimeout
		}
		return res, &RemoteError{Code: res.Code, Msg: err.Error()}
	}
	switch res.Code {
	case 0:
		return res, nil
	case codeNotFound:
		return res, browse.ErrNotFound
	case codeConflict:
		return res, browse.ErrConflict
	default:
		return res, &RemoteError{Code: res.Code, Msg: stderrLine(res)}
	}
}

// statExpr emits size|mtime for one shell-quoted target, BSD dialect first,
// GNU fallback (GNU stat rejects the BSD -f form with a non-zero exit).
func statExpr(quoted string) string {
	return fmt.Sprintf("stat -f '%%z|%%m' -- %s 2>/dev/null || stat --format '%%s|%%Y' -- %s 2>/dev/null", quoted, quoted)
}

func (c *Client) List(ctx context.Context, p string, showHidden bool) (browse.Listing, error) {
	abs, rel, err := c.resolve(p)
	if err != nil {
		return browse.Listing{}, err
	}
	hiddenFilter := `case "$f" in .*) continue;; esac; `
	if showHidden {
		hiddenFilter = ""
	}
	script := fmt.Sprintf(
		`cd %s || exit 2
LC_ALL=C ls -A | while IFS= read -r f; do
%s[ -e "$f" ] || [ -L "$f" ] || continue
if [ -d "$f" ]; then t=directory; else t=file; fi
s=$(%s) || s='0|0'
printf '%%s|%%s|%%s\n' "$t" "$f" "$s"
done`,
		quote(abs), hiddenFilter, statExpr(`"$f"`))
	res, err := c.run(ctx, TextTimeout, script, nil)
	if err != nil {
		return browse.Listing{}, err
	}
	files := parseListOutput(res.Stdout)
	browse.SortFiles(files)
	return browse.Listing{Path: rel, Breadcrumbs: browse.Breadcrumbs(rel), Files: files}, nil
}

// parseListOutput decodes type|name|size|mtimeEpoch lines. Malformed lines
// (names containing the separator, stat dialect surprises) are skipped.
func parseListOutput(out []byte) []browse.FileItem {
	files := []browse.FileItem{}
	for _, line := range strings.Split(string(out), "\n") {
		if line == "" {
			continue
		}
		parts := strings.Split(line, "|")
		if len(parts) != 4 {
			continue
		}
		t := parts[0]
		if t != browse.TypeDirectory && t != browse.TypeFile {
			continue
		}
		size, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil {
			size = 0
		}
		item := browse.FileItem{Name: parts[1], Type: t, Size: size}
		if epoch, err := strconv.ParseInt(parts[3], 10, 64); err == nil && epoch > 0 {
			item.Modified = time.Unix(epoch, 0).UTC().Format(time.RFC3339)
		}
		files = append(files, item)
	}
	return files
}

func (c *Client) Search(ctx context.Context, p, query string) ([]browse.SearchResult, error) {
	abs, rel, err := c.resolve(p)
	if err != nil {
		return nil, err
	}
	// find emits absolute paths; a marker prefix distinguishes the two
	// typed passes and guards against stray remote output.
	marker := "SKIFF:"
	script := fmt.Sprintf(
		`[ -d %[1]s ] || exit 2
find %[1]s -mindepth 1 -maxdepth %[2]d -not -path '*/.*' -type d 2>/dev/null | head -n %[3]d | sed 's|^|%[4]sd|'
find %[1]s -mindepth 1 -maxdepth %[2]d -not -path '*/.*' -type f 2>/dev/null | head -n %[3]d | sed 's|^|%[4]sf|'`,
		quote(abs), browse.MaxSearchDepth, browse.MaxSearchEntries, marker)
	res, err := c.run(ctx, TextTimeout, script, nil)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimSuffix(abs, "/") + "/"
	candidates := []browse.SearchResult{}
	for _, line := range strings.Split(string(res.Stdout), "\n") {
		if !strings.HasPrefix(line, marker) || len(line) < len(marker)+2 {
			continue
		}
		kind := line[len(marker)]
		full := line[len(marker)+1:]
		name := path.Base(full)
		relPath := strings.TrimPrefix(full, prefix)
		if rel != "" {
			relPath = path.Join(rel, relPath)
		}
		t := browse.TypeFile
		if kind == 'd' {
			t = browse.TypeDirectory
		}
		candidates = append(candidates, browse.SearchResult{Name: name, Path: relPath, Type: t})
		if len(candidates) >= browse.MaxSearchEntries {
			break
		}
	}
	return browse.RankMatches(query, candidates), nil
}

func (c *Client) Preview(ctx context.Context, p string) (browse.Preview, error) {
	abs, _, err := c.resolve(p)
	if err != nil {
		return browse.Preview{}, err
	}
	name := path.Base(abs)
	if mime := browse.ImageMime(name); mime != "" {
		script := fmt.Sprintf(`[ -f %[1]s ] || exit 2; cat -- %[1]s`, quote(abs))
		res, err := c.run(ctx, BinaryTimeout, script, nil)
		if err != nil {
			return browse.Preview{}, err
		}
		return browse.Preview{
			Type: "image",
			Mime: mime,
			Data: base64.StdEncoding.EncodeToString(res.Stdout),
		}, nil
	}
	if browse.IsText(name) {
		script := fmt.Sprintf(`[ -f %[1]s ] || exit 2; head -c %[2]d -- %[1]s`, quote(abs), browse.PreviewTextLimit)
		res, err := c.run(ctx, TextTimeout, script, nil)
		if err != nil {
			return browse.Preview{}, err
		}
		return browse.Preview{Type: "text", Content: string(res.Stdout)}, nil
	}
	return browse.Preview{Type: "unsupported", Message: "no preview available for this file type"}, nil
}

func (c *Client) Info(ctx context.Context, p string) (browse.Info, error) {
	abs, rel, err := c.resolve(p)
	if err != nil {
		return browse.Info{}, err
	}
	q := quote(abs)
	script := fmt.Sprintf(
		`[ -e %[1]s ] || [ -L %[1]s ] || exit 2
if [ -d %[1]s ]; then d=1; else d=0; fi
s=$(stat -f '%%z|%%m|%%a|%%B' -- %[1]s 2>/dev/null || stat --format '%%s|%%Y|%%X|%%W' -- %[1]s 2>/dev/null) || exit 1
printf '%%s|%%s\n' "$d" "$s"`, q)
	res, err := c.run(ctx, TextTimeout, script, nil)
	if err != nil {
		return browse.Info{}, err
	}
	parts := strings.Split(strings.TrimSpace(string(res.Stdout)), "|")
	if len(parts) != 5 {
		return browse.Info{}, &RemoteError{Code: res.Code, Msg: "unexpected stat output"}
	}
	info := browse.Info{Name: path.Base(abs), Path: rel, IsDirectory: parts[0] == "1"}
	if v, err := strconv.ParseInt(parts[1], 10, 64); err == nil {
		info.Size = v
	}
	info.Modified = epochISO(parts[2])
	info.Accessed = epochISO(parts[3])
	info.Created = epochISO(parts[4])
	return info, nil
}

func epochISO(s string) string {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v <= 0 {
		return ""
	}
	return time.Unix(v, 0).UTC().Format(time.RFC3339)
}

func (c *Client) Download(ctx context.Context, p string) (string, []byte, error) {
	abs, _, err := c.resolve(p)
	if err != nil {
		return "", nil, err
	}
	script := fmt.Sprintf(`[ -f %[1]s ] || exit 2; cat -- %[1]s`, quote(abs))
	res, err := c.run(ctx, BinaryTimeout, script, nil)
	if err != nil {
		return "", nil, err
	}
	return path.Base(abs), res.Stdout, nil
}

func (c *Client) Mkdir(ctx context.Context, p string) error {
	abs, _, err := c.resolve(p)
	if err != nil {
		return err
	}
	_, err = c.run(ctx, TextTimeout, "mkdir -p -- "+quote(abs), nil)
	return err
}

// Touch creates a file. Optional content goes through the same base64
// write as Save, so the bytes land exactly as the local adapter writes
// them.
func (c *Client) Touch(ctx context.Context, p, content string) error {
	if content == "" {
		abs, _, err := c.resolve(p)
		if err != nil {
			return err
		}
		_, err = c.run(ctx, TextTimeout, "touch -- "+quote(abs), nil)
		return err
	}
	return c.Save(ctx, p, []byte(content))
}

func (c *Client) Rename(ctx context.Context, p, newName string) error {
	abs, _, err := c.resolve(p)
	if err != nil {
		return err
	}
	if newName == "" || strings.ContainsAny(newName, "/\x00") {
		return browse.ErrInvalidPath
	}
	dest := path.Join(path.Dir(abs), newName)
	script := fmt.Sprintf(
		`[ -e %[1]s ] || [ -L %[1]s ] || exit 2
[ -e %[2]s ] && exit 4
mv -- %[1]s %[2]s`, quote(abs), quote(dest))
	_, err = c.run(ctx, TextTimeout, script, nil)
	return err
}

// Delete removes a path recursively. The remote root itself is refused
// before anything leaves the hub.
func (c *Client) Delete(ctx context.Context, p string) error {
	abs, rel, err := c.resolve(p)
	if err != nil {
		return err
	}
	if rel == "" || abs == c.Root {
		return browse.ErrInvalidPath
	}
	script := fmt.Sprintf(`[ -e %[1]s ] || [ -L %[1]s ] || exit 2; rm -rf -- %[1]s`, quote(abs))
	_, err = c.run(ctx, TextTimeout, script, nil)
	return err
}

// Save writes arbitrary bytes: content is base64 on the ssh stdin and
// decoded remotely, so newlines and binary data survive the shell.
func (c *Client) Save(ctx context.Context, p string, content []byte) error {
	abs, _, err := c.resolve(p)
	if err != nil {
		return err
	}
	script, stdin := contentWrite(abs, content)
	_, err = c.run(ctx, BinaryTimeout, script, stdin)
	return err
}

// contentWrite builds the remote command and stdin payload that land
// content at abs byte-for-byte.
func contentWrite(abs string, content []byte) (script string, stdin []byte) {
	return "base64 -d > " + quote(abs), []byte(base64.StdEncoding.EncodeToString(content))
}

// Duplicate copies p to the first free "{base} copy[ N]{ext}" sibling,
// probed remotely in one round trip, and returns the chosen name.
func (c *Client) Duplicate(ctx context.Context, p string) (string, error) {
	abs, _, err := c.resolve(p)
	if err != nil {
		return "", err
	}
	dir := path.Dir(abs)
	var b strings.Builder
	fmt.Fprintf(&b, "[ -e %[1]s ] || [ -L %[1]s ] || exit 2\n", quote(abs))
	for _, cand := range browse.CopyCandidates(path.Base(abs), 100) {
		dest := quote(path.Join(dir, cand))
		fmt.Fprintf(&b, "if [ ! -e %s ]; then cp -r -- %s %s && printf '%%s\\n' %s; exit $?; fi\n",
			dest, quote(abs), dest, quote(cand))
	}
	b.WriteString("exit 4\n")
	res, err := c.run(ctx, BinaryTimeout, b.String(), nil)
	if err != nil {
		return "", err
	}
	name := strings.TrimSpace(string(res.Stdout))
	if name == "" {
		return "", &RemoteError{Code: res.Code, Msg: "duplicate produced no name"}
	}
	return name, nil
}

// Ping runs a trivial remote echo and reports the round-trip latency.
func (c *Client) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	res, err := c.run(ctx, TextTimeout, "echo ok", nil)
	if err != nil {
		return 0, err
	}
	if strings.TrimSpace(string(res.Stdout)) != "ok" {
		return 0, &RemoteError{Code: res.Code, Msg: "unexpected probe output"}
	}
	return time.Since(start), nil
}

// Probe confirms connectivity and returns the remote home directory, used as
// the default root when a device is registered without one.
func Probe(ctx context.Context, host string) (home string, err error) {
	r := Runner{Host: host}
	res, runErr := r.Run(ctx, 8*time.Second, `echo ok && echo "$HOME"`, nil)
	if runErr != nil {
		return "", &RemoteError{Code: res.Code, Msg: runErr.Error()}
	}
	lines := strings.Split(strings.TrimSpace(string(res.Stdout)), "\n")
	if res.Code != 0 || len(lines) < 2 || strings.TrimSpace(lines[0]) != "ok" {
		return "", &RemoteError{Code: res.Code, Msg: stderrLine(res)}
	}
	return strings.TrimSpace(lines[1]), nil
}
