package sshfs

import (
	"bytes"
	"encoding/base64"
	"strings"
	"testing"

	"skiff/internal/browse"
)

func TestQuoteNeutralizesShellMeta(t *testing.T) {
	cases := map[string]string{
		"plain.txt":        "'plain.txt'",
		"has space.txt":    "'has space.txt'",
		"a'b.txt":          `'a'\''b.txt'`,
		"$(reboot).txt":    "'$(reboot).txt'",
		"`id`;rm -rf /":    "'`id`;rm -rf /'",
		"semi;colon&pipe|": "'semi;colon&pipe|'",
	}
	for in, want := range cases {
		if got := quote(in); got != want {
			t.Errorf("quote(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestResolveConfinesToRemoteRoot(t *testing.T) {
	c := NewClient("pi@attic", "/home/pi")
	abs, rel, err := c.resolve("../../etc/passwd")
	if err != nil {
		t.Fatal(err)
	}
	if abs != "/home/pi/etc/passwd" || rel != "etc/passwd" {
		t.Fatalf("got (%q, %q)", abs, rel)
	}
	abs, rel, err = c.resolve("")
	if err != nil {
		t.Fatal(err)
	}
	if abs != "/home/pi" || rel != "" {
		t.Fatalf("root resolve: (%q, %q)", abs, rel)
	}
}

func TestParseListOutput(t *testing.T) {
	out := []byte(strings.Join([]string{
		"file|zeta.txt|12|1700000000",
		"directory|docs|4096|1700000100",
		"file|alpha.txt|3|1700000200",
		"garbage line without separators",
		"file|bad|notasize|1700000300",
		"",
	}, "\n"))
	files := parseListOutput(out)
	if len(files) != 4 {
		t.Fatalf("expected 4 items, got %d: %+v", len(files), files)
	}
	browse.SortFiles(files)
	if files[0].Name != "docs" || files[0].Type != browse.TypeDirectory {
		t.Fatalf("directory not first: %+v", files)
	}
	if files[1].Name != "alpha.txt" || files[2].Name != "bad" || files[3].Name != "zeta.txt" {
		t.Fatalf("unexpected file order: %+v", files)
	}
	if files[3].Size != 12 {
		t.Fatalf("size lost: %+v", files[3])
	}
	if files[3].Modified == "" || !strings.HasPrefix(files[3].Modified, "2023-") {
		t.Fatalf("mtime conversion: %+v", files[3])
	}
	// Unparseable size degrades to zero rather than dropping the entry.
	if files[2].Size != 0 {
		t.Fatalf("bad size should be 0: %+v", files[2])
	}
}

func TestEpochISO(t *testing.T) {
	if got := epochISO("1700000000"); got != "2023-11-14T22:13:20Z" {
		t.Fatalf("epochISO: %q", got)
	}
	if got := epochISO("0"); got != "" {
		t.Fatalf("zero epoch should be empty, got %q", got)
	}
	if got := epochISO("x"); got != "" {
		t.Fatalf("garbage epoch should be empty, got %q", got)
	}
}

func TestContentWritePreservesBytes(t *testing.T) {
	cases := [][]byte{
		[]byte("no trailing newline"),
		[]byte("ends with one\n"),
		[]byte("embedded\x00nul and 'quotes'"),
		{},
	}
	for _, content := range cases {
		script, stdin := contentWrite("/home/pi/out.txt", content)
		if script != "base64 -d > '/home/pi/out.txt'" {
			t.Fatalf("script: %q", script)
		}
		decoded, err := base64.StdEncoding.DecodeString(string(stdin))
		if err != nil {
			t.Fatalf("stdin not base64: %v", err)
		}
		if !bytes.Equal(decoded, content) {
			t.Fatalf("content altered in transit: %q -> %q", content, decoded)
		}
	}
}

func TestStderrLine(t *testing.T) {
	got := stderrLine(Result{Stderr: []byte("rm: cannot remove 'x'\nsecond line"), Code: 1})
	if got != "rm: cannot remove 'x'" {
		t.Fatalf("stderrLine: %q", got)
	}
	got = stderrLine(Result{Code: 7})
	if !strings.Contains(got, "7") {
		t.Fatalf("fallback should carry the exit code: %q", got)
	}
}
