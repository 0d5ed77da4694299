// Package lapply applies an applicable transcript produced by fsdiff
// to the live filesystem, grounded on rclone's
// backend/local Object.Update (temp-file-then-rename install) and
// Move (os.Rename for the atomic install step).
package lapply

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/radmind-go/transcriptd/checksum"
	"github.com/radmind-go/transcriptd/fetch"
	"github.com/radmind-go/transcriptd/fserrors"
	"github.com/radmind-go/transcriptd/rlog"
	"github.com/radmind-go/transcriptd/rpath"
	"github.com/radmind-go/transcriptd/session"
	"github.com/radmind-go/transcriptd/transcript"
)

// Applier consumes one applicable transcript and mutates the
// filesystem under Root to match it.
type Applier struct {
	sess *session.Context
	fetcher fetch.FileFetcher
	reporter fetch.EventReporter
	root string

	pending []string // LIFO stack of deferred directory removals, transcript-space paths
	prevPath string
	havePrev bool

	networkDisabled bool
}

// New builds an Applier rooted at root - every transcript path is
// joined onto root before any filesystem call.
func New(sess *session.Context, fetcher fetch.FileFetcher, reporter fetch.EventReporter, root string) *Applier {
	if reporter == nil {
		reporter = fetch.NopReporter{}
	}
	return &Applier{sess: sess, fetcher: fetcher, reporter: reporter, root: root}
}

func errUnsupportedType(t transcript.EntryType) error {
	return fmt.Errorf("lapply: creating %q objects is unsupported on this platform", t.String())
}

func (a *Applier) resolve(name rpath.Path) string {
	return filepath.Join(a.root, string(name))
}

// Apply reads r line by line and applies each entry in order. A
// non-strictly-ascending path is a fatal "bad sort order" error (the
// contract with fsdiff).
func (a *Applier) Apply(ctx context.Context, r io.Reader) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if transcript.IsComment(line) {
			continue
		}
		if _, ok := transcript.ParseHeader(line); ok {
			continue
		}
		e, err := transcript.ParseLine(line)
		if err != nil {
			return fserrors.Fatal(fmt.Errorf("lapply: %w", err))
		}
		if err := a.applyLine(ctx, e); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fserrors.Fatal(err)
	}
	return a.drainAll()
}

func (a *Applier) applyLine(ctx context.Context, e *transcript.PathEntry) error {
	if a.havePrev && rpath.Compare(e.Name, rpath.Path(a.prevPath), a.sess.CaseSensitive) <= 0 {
		return fserrors.Fatal(fmt.Errorf("lapply: bad sort order: %q does not sort after %q", e.Name, a.prevPath))
	}
	a.prevPath = string(e.Name)
	a.havePrev = true

	for len(a.pending) > 0 {
		top := a.pending[len(a.pending)-1]
		if rpath.IsChild(rpath.Path(top), e.Name, a.sess.CaseSensitive) {
			break
		}
		if err := a.popAndRemove(); err != nil {
			return err
		}
	}

	if e.Minus {
		return a.applyRemove(e)
	}
	return a.applyUpsert(ctx, e)
}

func (a *Applier) applyRemove(e *transcript.PathEntry) error {
	if e.Type == transcript.TypeDirectory {
		a.pending = append(a.pending, string(e.Name))
		return nil
	}
	full := a.resolve(e.Name)
	if a.sess.Force {
		clearImmutable(full)
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		a.sess.Stats.Errored()
		return fserrors.Fatal(fmt.Errorf("lapply: remove %s: %w", full, err))
	}
	rlog.Line(string(e.Name), rlog.StatusDeleted)
	a.sess.Stats.Deleted()
	return nil
}

func (a *Applier) popAndRemove() error {
	n := len(a.pending)
	top := a.pending[n-1]
	a.pending = a.pending[:n-1]
	full := a.resolve(rpath.Path(top))
	if a.sess.Force {
		clearImmutable(full)
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		a.sess.Stats.Errored()
		return fserrors.Fatal(fmt.Errorf("lapply: rmdir %s: %w", full, err))
	}
	rlog.Line(top, rlog.StatusDeleted)
	a.sess.Stats.Deleted()
	return nil
}

func (a *Applier) drainAll() error {
	for len(a.pending) > 0 {
		if err := a.popAndRemove(); err != nil {
			return err
		}
	}
	return nil
}

func (a *Applier) applyUpsert(ctx context.Context, e *transcript.PathEntry) error {
	full := a.resolve(e.Name)
	switch {
	case e.Type.HasPayload():
		return a.applyPayload(ctx, full, e)
	case e.Type == transcript.TypeHardlink:
		return a.applyHardlink(full, e)
	default:
		return a.applyMetadata(full, e)
	}
}

// applyPayload installs or verifies the content of an f/a entry:
// download to a sibling temp file (mode 0600), verify size and
// checksum, chown/chmod/utime the temp file, then rename it over the
// target atomically. If the target already matches
// declared size and checksum, the download is skipped entirely and
// only metadata is touched.
func (a *Applier) applyPayload(ctx context.Context, full string, e *transcript.PathEntry) error {
	if fi, err := os.Lstat(full); err == nil && fi.Mode().IsRegular() && fi.Size() == e.Size {
		if !e.HasCksum() {
			return a.chownChmodTime(full, e)
		}
		sum, err := a.digest(full)
		if err == nil && sum == e.Cksum {
			return a.chownChmodTime(full, e)
		}
	}

	if a.networkDisabled {
		rlog.Debugf(string(e.Name), "skipping download: network disabled after an earlier fetch failure")
		return nil
	}

	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fserrors.Fatal(fmt.Errorf("lapply: mkdir %s: %w", dir, err))
	}
	tmp, err := os.CreateTemp(dir, ".lapply-*")
	if err != nil {
		return fserrors.Fatal(fmt.Errorf("lapply: create temp in %s: %w", dir, err))
	}
	tmpPath := tmp.Name()
	tmp.Close()
	os.Chmod(tmpPath, 0600)

	desc := fetch.Descriptor{Path: string(e.Name), Size: e.Size, ChecksumB64: e.Cksum, Algorithm: a.sess.ChecksumAlgorithm}
	n, err := a.fetcher.Fetch(ctx, desc, tmpPath)
	if err != nil {
		os.Remove(tmpPath)
		a.sess.Stats.Errored()
		if fserrors.IsNoRetry(err) {
			a.networkDisabled = true
			rlog.Errorf(string(e.Name), "network fetch failed, disabling further downloads this run: %v", err)
			return nil
		}
		return fserrors.Fatal(fmt.Errorf("lapply: fetch %s: %w", e.Name, err))
	}
	if n != e.Size {
		os.Remove(tmpPath)
		return fserrors.Fatal(fmt.Errorf("lapply: %s: fetched %d bytes, expected %d", e.Name, n, e.Size))
	}
	if e.HasCksum() {
		sum, err := a.digest(tmpPath)
		if err != nil {
			os.Remove(tmpPath)
			return err
		}
		if sum != e.Cksum {
			os.Remove(tmpPath)
			return fserrors.Fatal(fmt.Errorf("lapply: %s: checksum mismatch after fetch", e.Name))
		}
	}
	if err := os.Chmod(tmpPath, os.FileMode(e.Mode)); err != nil {
		os.Remove(tmpPath)
		return fserrors.Fatal(err)
	}
	if err := os.Chown(tmpPath, e.UID, e.GID); err != nil {
		os.Remove(tmpPath)
		return fserrors.Fatal(err)
	}
	mt := time.Unix(e.MTime, 0)
	if err := os.Chtimes(tmpPath, mt, mt); err != nil {
		os.Remove(tmpPath)
		return fserrors.Fatal(err)
	}
	if a.sess.Force {
		clearImmutable(full)
	}
	if err := os.Rename(tmpPath, full); err != nil {
		os.Remove(tmpPath)
		return fserrors.Fatal(fmt.Errorf("lapply: install %s: %w", full, err))
	}
	rlog.Line(string(e.Name), rlog.StatusUpdated)
	a.sess.Stats.Updated()
	a.sess.Stats.Transferred(n)
	return nil
}

func (a *Applier) digest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fserrors.Fatal(err)
	}
	defer f.Close()
	_, sum, err := checksum.Stream(f, checksum.Algorithm(a.sess.ChecksumAlgorithm), a.sess.ReadBufferSize)
	if err != nil {
		return "", fserrors.Fatal(err)
	}
	return rpath.EncodeDigest(sum), nil
}

func (a *Applier) chownChmodTime(full string, e *transcript.PathEntry) error {
	if a.sess.Force {
		clearImmutable(full)
	}
	if err := os.Chmod(full, os.FileMode(e.Mode)); err != nil {
		return fserrors.Fatal(err)
	}
	if err := os.Chown(full, e.UID, e.GID); err != nil {
		return fserrors.Fatal(err)
	}
	if e.Type.HasPayload() {
		mt := time.Unix(e.MTime, 0)
		if err := os.Chtimes(full, mt, mt); err != nil {
			return fserrors.Fatal(err)
		}
	}
	a.sess.Stats.Updated()
	return nil
}

// applyMetadata creates (if absent) or updates ownership/mode on an
// entry type with no downloadable payload.
func (a *Applier) applyMetadata(full string, e *transcript.PathEntry) error {
	_, statErr := os.Lstat(full)
	exists := statErr == nil

	switch e.Type {
	case transcript.TypeDirectory:
		if !exists {
			if err := os.Mkdir(full, os.FileMode(e.Mode)); err != nil {
				return fserrors.Fatal(fmt.Errorf("lapply: mkdir %s: %w", full, err))
			}
		}
	case transcript.TypeSymlink:
		if exists {
			cur, err := os.Readlink(full)
			if err != nil || cur != e.Link {
				if a.sess.Force {
					clearImmutable(full)
				}
				os.Remove(full)
				exists = false
			}
		}
		if !exists {
			if err := os.Symlink(e.Link, full); err != nil {
				return fserrors.Fatal(fmt.Errorf("lapply: symlink %s: %w", full, err))
			}
		}
		if err := os.Lchown(full, e.UID, e.GID); err != nil {
			return fserrors.Fatal(err)
		}
		rlog.Line(string(e.Name), rlog.StatusUpdated)
		a.sess.Stats.Updated()
		return nil
	case transcript.TypeFIFO, transcript.TypeSocket, transcript.TypeBlockDevice, transcript.TypeCharDevice:
		if !exists {
			if err := makeSpecial(full, e.Type, e.Mode, e.Major, e.Minor); err != nil {
				return fserrors.Fatal(fmt.Errorf("lapply: create %s: %w", full, err))
			}
		}
	case transcript.TypeDoor:
		return fserrors.Fatal(errUnsupportedType(e.Type))
	}

	if err := os.Chmod(full, os.FileMode(e.Mode)); err != nil {
		return fserrors.Fatal(err)
	}
	if err := os.Chown(full, e.UID, e.GID); err != nil {
		return fserrors.Fatal(err)
	}
	rlog.Line(string(e.Name), rlog.StatusUpdated)
	a.sess.Stats.Updated()
	return nil
}

// applyHardlink (re)creates a hardlink pointing at its primary, whose
// path is e.Link (already in transcript space, resolved the same way
// as e.Name).
func (a *Applier) applyHardlink(full string, e *transcript.PathEntry) error {
	primary := a.resolve(rpath.Path(e.Link))
	if _, err := os.Lstat(full); err == nil {
		if a.sess.Force {
			clearImmutable(full)
		}
		if err := os.Remove(full); err != nil {
			return fserrors.Fatal(fmt.Errorf("lapply: remove stale hardlink %s: %w", full, err))
		}
	}
	if err := os.Link(primary, full); err != nil {
		return fserrors.Fatal(fmt.Errorf("lapply: link %s -> %s: %w", full, primary, err))
	}
	rlog.Line(string(e.Name), rlog.StatusUpdated)
	a.sess.Stats.Updated()
	return nil
}
