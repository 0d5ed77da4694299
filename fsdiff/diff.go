// Package fsdiff walks the live filesystem against a stack.Stack's
// selector stream and emits an applicable transcript of the
// differences, grounded on rclone's fs/march dual-
// stream merge (SrcOnly/DstOnly/Match) generalized from "local vs
// remote" to "filesystem vs selector".
package fsdiff

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/radmind-go/transcriptd/checksum"
	"github.com/radmind-go/transcriptd/rlog"
	"github.com/radmind-go/transcriptd/rpath"
	"github.com/radmind-go/transcriptd/session"
	"github.com/radmind-go/transcriptd/stack"
	"github.com/radmind-go/transcriptd/transcript"
)

// Differ merges a filesystem subtree against a Stack's selector
// stream, writing the resulting applicable transcript to w.
type Differ struct {
	sess *session.Context
	stk *stack.Stack
	hl *transcript.HardlinkRegistry
	w io.Writer

	headerName string
	headerWritten bool

	peeked *stack.Selection
	peekedErr error
	havePeeked bool
}

// New builds a Differ over stk, writing its output to w under the
// given header name (the name of the stack's top transcript). The
// applicable transcript format begins with a header line naming the
// originating transcript.
func New(sess *session.Context, stk *stack.Stack, w io.Writer, headerName string) *Differ {
	return &Differ{sess: sess, stk: stk, hl: transcript.NewHardlinkRegistry(), w: w, headerName: headerName}
}

// Run diffs rootFS (an absolute filesystem path) against tranPrefix
// (its transcript-space equivalent), descending the whole subtree.
func (d *Differ) Run(rootFS string, tranPrefix rpath.Path) error {
	fi, err := os.Lstat(rootFS)
	if err != nil {
		if os.IsNotExist(err) {
			return d.drainSubtree(tranPrefix, false)
		}
		return err
	}
	if !fi.IsDir() {
		return fmt.Errorf("fsdiff: start path %s is not a directory", rootFS)
	}
	return d.walkBoth(rootFS, tranPrefix, false)
}

func (d *Differ) peek() (*stack.Selection, error) {
	if !d.havePeeked {
		d.peeked, d.peekedErr = d.stk.Select()
		d.havePeeked = true
	}
	return d.peeked, d.peekedErr
}

func (d *Differ) consume() { d.havePeeked = false }

func (d *Differ) writeHeaderOnce() error {
	if d.headerWritten {
		return nil
	}
	d.headerWritten = true
	return transcript.WriteHeader(d.w, d.headerName)
}

// walkBoth merges one real, on-disk directory's sorted children
// against the selector stream's descendants of tranPrefix.
func (d *Differ) walkBoth(fsDir string, tranPrefix rpath.Path, parentMinus bool) error {
	ents, err := os.ReadDir(fsDir)
	if err != nil {
		return fmt.Errorf("fsdiff: readdir %s: %w", fsDir, err)
	}
	i := 0
	for {
		sel, selErr := d.peek()
		if selErr != nil && selErr != io.EOF {
			return selErr
		}
		selIn := selErr == nil &&
			rpath.IsChild(tranPrefix, sel.Entry.Name, d.sess.CaseSensitive) &&
			!rpath.Equal(tranPrefix, sel.Entry.Name, d.sess.CaseSensitive)

		fsHasMore := i < len(ents)
		if !fsHasMore && !selIn {
			return nil
		}
		if fsHasMore && !selIn {
			name := ents[i].Name()
			if err := d.handleFSOnly(filepath.Join(fsDir, name), rpath.Join(tranPrefix, name), parentMinus); err != nil {
				return err
			}
			i++
			continue
		}
		if !fsHasMore {
			if err := d.handleTranOnly(sel); err != nil {
				return err
			}
			continue
		}

		name := ents[i].Name()
		fsTranPath := rpath.Join(tranPrefix, name)
		cmp := rpath.Compare(fsTranPath, sel.Entry.Name, d.sess.CaseSensitive)
		switch {
		case cmp < 0:
			if err := d.handleFSOnly(filepath.Join(fsDir, name), fsTranPath, parentMinus); err != nil {
				return err
			}
			i++
		case cmp > 0:
			if err := d.handleTranOnly(sel); err != nil {
				return err
			}
		default:
			if err := d.handleMatch(filepath.Join(fsDir, name), fsTranPath, sel, parentMinus); err != nil {
				return err
			}
			i++
		}
	}
}

// handleFSOnly emits a deletion for an object the selector never
// mentions. Exclusion patterns suppress it unless parentMinus is set:
// the object's containing directory is itself doomed, so exclusion
// no longer protects it.
func (d *Differ) handleFSOnly(fsFull string, tranPath rpath.Path, parentMinus bool) error {
	if !parentMinus && d.stk.ExcludeMatch(string(tranPath)) {
		return nil
	}
	e, err := lstatEntry(fsFull, string(tranPath))
	if err != nil {
		return err
	}
	if err := d.emitDelete(e, tranPath); err != nil {
		return err
	}
	d.sess.Stats.Deleted()
	if e.Type == transcript.TypeDirectory {
		return d.deleteChildren(fsFull, tranPath)
	}
	return nil
}

// deleteChildren recursively emits deletions for every real object
// under fsDir, ignoring exclusion (its parent is already doomed).
func (d *Differ) deleteChildren(fsDir string, tranPrefix rpath.Path) error {
	ents, err := os.ReadDir(fsDir)
	if err != nil {
		return fmt.Errorf("fsdiff: readdir %s: %w", fsDir, err)
	}
	for _, de := range ents {
		name := de.Name()
		fsFull := filepath.Join(fsDir, name)
		tranPath := rpath.Join(tranPrefix, name)
		e, err := lstatEntry(fsFull, string(tranPath))
		if err != nil {
			return err
		}
		if err := d.emitDelete(e, tranPath); err != nil {
			return err
		}
		d.sess.Stats.Deleted()
		if e.Type == transcript.TypeDirectory {
			if err := d.deleteChildren(fsFull, tranPath); err != nil {
				return err
			}
		}
	}
	return nil
}

// handleTranOnly consumes the selector's current winner, which the
// filesystem has nothing matching. A negative-kind entry means
// "already absent, nothing to do" and silently drains its declared
// subtree without ever looking at the filesystem (negative
// directories short-circuit descent). A positive/special entry must
// be created; if it's a directory, its subtree is drained the same
// way, consuming creates as it goes.
func (d *Differ) handleTranOnly(sel *stack.Selection) error {
	tran := sel.Entry
	d.consume()
	if sel.Kind == transcript.KindNegative {
		if tran.Type == transcript.TypeDirectory {
			return d.drainSubtree(tran.Name, true)
		}
		return nil
	}
	if err := d.writeHeaderOnce(); err != nil {
		return err
	}
	if err := transcript.Write(d.w, tran); err != nil {
		return err
	}
	d.sess.Stats.Created()
	if tran.Type == transcript.TypeDirectory {
		return d.drainSubtree(tran.Name, false)
	}
	return nil
}

// drainSubtree consumes every selector entry that is a descendant of
// prefix, regardless of nesting depth (a flat scan suffices because
// the stream is globally ascending: any entry still under prefix,
// however deep, sorts before the next sibling of prefix). When silent
// is true nothing is written - used for a negative directory's
// descendants, which are never inspected.
func (d *Differ) drainSubtree(prefix rpath.Path, silent bool) error {
	for {
		sel, err := d.peek()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if !rpath.IsChild(prefix, sel.Entry.Name, d.sess.CaseSensitive) || rpath.Equal(prefix, sel.Entry.Name, d.sess.CaseSensitive) {
			return nil
		}
		d.consume()
		if silent {
			continue
		}
		if err := d.writeHeaderOnce(); err != nil {
			return err
		}
		if err := transcript.Write(d.w, sel.Entry); err != nil {
			return err
		}
		d.sess.Stats.Created()
	}
}

// handleMatch compares a filesystem object against the selector entry
// at the same path.
func (d *Differ) handleMatch(fsFull string, tranPath rpath.Path, sel *stack.Selection, parentMinus bool) error {
	d.consume()
	tran := sel.Entry

	e, err := lstatEntry(fsFull, string(tranPath))
	if err != nil {
		return err
	}

	if e.Type != tran.Type {
		if err := d.emitDelete(e, tranPath); err != nil {
			return err
		}
		d.sess.Stats.Deleted()
		if e.Type == transcript.TypeDirectory {
			if err := d.deleteChildren(fsFull, tranPath); err != nil {
				return err
			}
		}
		if sel.Kind == transcript.KindNegative {
			return nil
		}
		if err := d.writeHeaderOnce(); err != nil {
			return err
		}
		if err := transcript.Write(d.w, tran); err != nil {
			return err
		}
		d.sess.Stats.Created()
		if tran.Type == transcript.TypeDirectory {
			return d.drainSubtree(tran.Name, false)
		}
		return nil
	}

	if sel.Kind == transcript.KindNegative {
		if err := d.emitDelete(e, tranPath); err != nil {
			return err
		}
		d.sess.Stats.Deleted()
		return nil
	}

	changed, metadataOnly, err := d.compare(fsFull, e, tran)
	if err != nil {
		return err
	}
	switch {
	case changed || metadataOnly:
		if err := d.writeHeaderOnce(); err != nil {
			return err
		}
		if err := transcript.Write(d.w, tran); err != nil {
			return err
		}
		d.sess.Stats.Updated()
	default:
		d.sess.Stats.Scanned()
	}

	if tran.Type == transcript.TypeDirectory {
		return d.walkBoth(fsFull, tranPath, parentMinus)
	}
	return nil
}

func (d *Differ) emitDelete(e *fsEntry, tranPath rpath.Path) error {
	if err := d.writeHeaderOnce(); err != nil {
		return err
	}
	entry := fsEntryToPathEntry(e, tranPath)
	entry.Minus = true
	return transcript.Write(d.w, entry)
}

func fsEntryToPathEntry(e *fsEntry, tranPath rpath.Path) *transcript.PathEntry {
	return &transcript.PathEntry{
		Type: e.Type,
		Name: tranPath,
		Mode: e.Mode,
		UID: e.UID,
		GID: e.GID,
		MTime: e.MTime,
		Size: e.Size,
		Link: e.Link,
		Major: e.Major,
		Minor: e.Minor,
	}
}

// compare applies the per-type metadata comparison table for a
// positive/special match, returning whether the object's content is
// out of date (changed, forcing a full redownload line) or only its
// ownership/mode metadata differs (metadataOnly).
func (d *Differ) compare(fsFull string, e *fsEntry, tran *transcript.PathEntry) (changed, metadataOnly bool, err error) {
	eff := d.sess.EffectiveCompare()
	ownershipDiffers := (eff.Has(session.CompareUID) && e.UID != tran.UID) ||
		(eff.Has(session.CompareGID) && e.GID != tran.GID) ||
		(eff.Has(session.CompareMode) && e.Mode != tran.Mode)

	switch tran.Type {
	case transcript.TypeFile, transcript.TypeArchivedFork:
		if eff.Has(session.CompareSize) && e.Size != tran.Size {
			return true, false, nil
		}
		if eff.Has(session.CompareCksum) && tran.HasCksum() {
			sum, err := d.digest(fsFull)
			if err != nil {
				return false, false, err
			}
			if sum != tran.Cksum {
				return true, false, nil
			}
		} else if eff.Has(session.CompareMTime) && e.MTime != tran.MTime {
			rlog.Debugf(string(tran.Name), "mtime differs with checksum comparison disabled; forcing redownload (weaker guarantee than a verified checksum)")
			return true, false, nil
		}
		return false, ownershipDiffers, nil

	case transcript.TypeDirectory:
		// FinderInfo is not compared: fsdiff has no portable way to
		// read it back off a live directory, so a recorded
		// FinderInfo always forces a metadata line (platform
		// resource-fork support is out of scope here, see DESIGN.md).
		if len(tran.FinderInfo) > 0 {
			return false, true, nil
		}
		return false, ownershipDiffers, nil

	case transcript.TypeSymlink:
		if e.Link != tran.Link {
			return true, false, nil
		}
		return false, ownershipDiffers, nil

	case transcript.TypeHardlink:
		firstPath, seen := d.hl.Hardlink(e.Dev, e.Ino, string(tran.Name))
		changedBit := d.hl.Changed(e.Dev, e.Ino, nil)
		if !seen || tran.Link != firstPath || changedBit {
			return true, false, nil
		}
		return false, false, nil

	case transcript.TypeFIFO, transcript.TypeDoor, transcript.TypeSocket:
		return false, ownershipDiffers, nil

	case transcript.TypeBlockDevice, transcript.TypeCharDevice:
		return false, ownershipDiffers || e.Major != tran.Major || e.Minor != tran.Minor, nil
	}
	return false, false, nil
}

// digest streams fsFull through the session's configured algorithm
// and returns the base64 digest, comparable directly against a
// PathEntry.Cksum field.
func (d *Differ) digest(fsFull string) (string, error) {
	f, err := os.Open(fsFull)
	if err != nil {
		return "", err
	}
	defer f.Close()
	_, sum, err := checksum.Stream(f, checksum.Algorithm(d.sess.ChecksumAlgorithm), d.sess.ReadBufferSize)
	if err != nil {
		return "", err
	}
	return rpath.EncodeDigest(sum), nil
}
