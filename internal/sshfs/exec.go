// Package sshfs reimplements the file-operation contract over a remote
// shell. Every call spawns one non-interactive ssh process against the
// device's host; nothing is cached and no connection is kept open.
package sshfs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

const (
	connectTimeout = 5 * time.Second
	// TextTimeout bounds commands with small textual output.
	TextTimeout = 15 * time.Second
	// BinaryTimeout bounds whole-file transfers (cat, base64 writes).
	BinaryTimeout = 30 * time.Second

	// timeoutCode mirrors coreutils timeout(1): the process was killed at
	// the deadline.
	timeoutCode = 124
)

var ErrTimeout = errors.New("ssh command timed out")

type Result struct {
	Stdout []byte
	Stderr []byte
	Code   int
}

// Runner executes shell scripts on one host via the system ssh client, so
// the operator's ~/.ssh config, agent and known_hosts apply unchanged.
type Runner struct {
	Host string
}

// Run executes script remotely with stdin attached when non-nil. A non-zero
// remote exit is reported through Result.Code, not err; err is reserved for
// spawn failures and deadline kills.
func (r Runner) Run(ctx context.Context, timeout time.Duration, script string, stdin io.Reader) (Result, error) {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, "ssh",
		"-o", "BatchMode=yes",
		"-o", fmt.Sprintf("ConnectTimeout=%d", int(connectTimeout.Seconds())),
		"--", r.Host, script)
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	if stdin != nil {
		cmd.Stdin = stdin
	}

	err := cmd.Run()
	res := Result{Stdout: outBuf.Bytes(), Stderr: errBuf.Bytes(), Code: exitCode(err)}
	if cctx.Err() == context.DeadlineExceeded {
		res.Code = timeoutCode
		return res, ErrTimeout
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		// Remote command failed; the caller inspects Code and Stderr.
		return res, nil
	}
	return res, err
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}
	return -1
}

// quote wraps s in single quotes so the remote shell treats it as one
// literal argument. Embedded single quotes are closed, escaped and reopened.
// Every interpolated path goes through here; it is the only defense against
// command injection via file names.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// stderrLine condenses captured stderr into a single human-readable line.
func stderrLine(res Result) string {
	s := strings.TrimSpace(string(res.Stderr))
	if s == "" {
		return fmt.Sprintf("remote command exited with code %d", res.Code)
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return s
}
