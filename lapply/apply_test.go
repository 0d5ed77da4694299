package lapply

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/radmind-go/transcriptd/fetch"
	"github.com/radmind-go/transcriptd/session"
)

type memFetcher struct {
	content map[string]string
}

func (m memFetcher) Fetch(ctx context.Context, d fetch.Descriptor, tempPath string) (int64, error) {
	data, ok := m.content[d.Path]
	if !ok {
		data = ""
	}
	if err := os.WriteFile(tempPath, []byte(data), 0600); err != nil {
		return 0, err
	}
	return int64(len(data)), nil
}

func TestApplyCreateUpdateDelete(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, "keep"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "keep", "old.txt"), []byte("stale"), 0644); err != nil {
		t.Fatal(err)
	}

	sess := session.New()
	sess.ChecksumEnabled = false

	fetcher := memFetcher{content: map[string]string{"/new.txt": "hello world"}}
	a := New(sess, fetcher, nil, root)

	uid, gid := os.Getuid(), os.Getgid()
	script := fmt.Sprintf(`applied:
d /keep 0755 %d %d
- f /keep/old.txt 0644 %d %d 1700000000 5 -
f /new.txt 0644 %d %d 1700000000 11 -
`, uid, gid, uid, gid, uid, gid)
	if err := a.Apply(context.Background(), bytes.NewReader([]byte(script))); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if _, err := os.Stat(filepath.Join(root, "keep", "old.txt")); !os.IsNotExist(err) {
		t.Fatalf("expected old.txt removed, stat err = %v", err)
	}
	data, err := os.ReadFile(filepath.Join(root, "new.txt"))
	if err != nil {
		t.Fatalf("new.txt: %v", err)
	}
	if string(data) != "hello world" {
		t.Fatalf("new.txt content = %q", data)
	}
	snap := sess.Stats.Snapshot()
	if snap.Deleted == 0 || snap.Updated == 0 {
		t.Fatalf("expected stats to record deletes and updates, got %+v", snap)
	}
}

func TestApplyBadSortOrderIsFatal(t *testing.T) {
	root := t.TempDir()
	sess := session.New()
	a := New(sess, memFetcher{}, nil, root)

	uid, gid := os.Getuid(), os.Getgid()
	script := fmt.Sprintf("applied:\nf /b.txt 0644 %d %d 1700000000 0 -\nf /a.txt 0644 %d %d 1700000000 0 -\n", uid, gid, uid, gid)
	err := a.Apply(context.Background(), bytes.NewReader([]byte(script)))
	if err == nil {
		t.Fatal("expected a bad-sort-order error")
	}
}
