package fsdiff

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/radmind-go/transcriptd/session"
	"github.com/radmind-go/transcriptd/stack"
)

func writeFile(t *testing.T, path string, mode os.FileMode, contents string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(contents), mode); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(path, mode); err != nil {
		t.Fatal(err)
	}
}

func TestDiffMatchCreateDeleteMetadata(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "fsroot")
	cfgDir := filepath.Join(base, "cfg")
	if err := os.MkdirAll(root, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		t.Fatal(err)
	}
	uid, gid := os.Getuid(), os.Getgid()

	writeFile(t, filepath.Join(root, "match.txt"), 0644, "same bytes")
	writeFile(t, filepath.Join(root, "wrongmode.txt"), 0600, "metadata only")
	writeFile(t, filepath.Join(root, "extra.txt"), 0644, "fs only, should be deleted")

	info, err := os.Stat(filepath.Join(root, "match.txt"))
	if err != nil {
		t.Fatal(err)
	}
	mtime := info.ModTime().Unix()

	info2, err := os.Stat(filepath.Join(root, "wrongmode.txt"))
	if err != nil {
		t.Fatal(err)
	}
	mtime2 := info2.ModTime().Unix()

	tranContent := fmt.Sprintf(`base:
f /match.txt 0644 %d %d %d 10 -
f /new.txt 0644 %d %d 1700000000 5 -
f /wrongmode.txt 0644 %d %d %d 13 -
`, uid, gid, mtime, uid, gid, uid, gid, mtime2)

	tranPath := filepath.Join(cfgDir, "transcript.T")
	if err := os.WriteFile(tranPath, []byte(tranContent), 0644); err != nil {
		t.Fatal(err)
	}
	kfilePath := filepath.Join(cfgDir, "command.K")
	if err := os.WriteFile(kfilePath, []byte("p transcript.T\n"), 0644); err != nil {
		t.Fatal(err)
	}

	sess := session.New()
	sess.ChecksumEnabled = false // compare by size+mtime only, avoiding a real digest dependency in this test
	sess.Compare &^= session.CompareCksum

	st, err := stack.Open(kfilePath, stack.DirResolver{Dir: cfgDir}, sess)
	if err != nil {
		t.Fatalf("stack.Open: %v", err)
	}
	defer st.Close()

	var buf bytes.Buffer
	d := New(sess, st, &buf, "test")
	if err := d.Run(root, "/"); err != nil {
		t.Fatalf("Run: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "test:\n") {
		t.Errorf("expected header line, got %q", out)
	}
	if !strings.Contains(out, "/new.txt") {
		t.Errorf("expected /new.txt to be created, got %q", out)
	}
	if !strings.Contains(out, "- f /extra.txt") {
		t.Errorf("expected /extra.txt to be flagged for deletion, got %q", out)
	}
	if !strings.Contains(out, "/wrongmode.txt") {
		t.Errorf("expected /wrongmode.txt metadata-only line, got %q", out)
	}
	if strings.Contains(out, "/match.txt") {
		t.Errorf("did not expect /match.txt to appear (fully matched), got %q", out)
	}
}
