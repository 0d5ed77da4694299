package transcript

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/radmind-go/transcriptd/rpath"
	"github.com/radmind-go/transcriptd/session"
)

// Cursor is a pull-based iterator over one open transcript: "one
// current entry per open transcript". Small
// transcripts (at or below the session's BufferThreshold) are read fully
// into memory and their file descriptor closed immediately, so a deep
// stack doesn't exhaust file descriptors; this is
// transparent to callers either way.
type Cursor struct {
	Name string
	Kind Kind

	sess *session.Context

	// buffered holds an in-memory cursor's lines; scanner and file are
	// set together for a file-backed cursor.
	buffered []string
	bufIdx int
	scanner *bufio.Scanner
	file *os.File

	prev *PathEntry
	lineNo int
	header string
	atEOF bool
}

// OpenFile opens path as a transcript of the given kind, buffering it
// in memory if it is small enough per sess.BufferThreshold.
func OpenFile(path string, kind Kind, sess *session.Context) (*Cursor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("transcript: open %s: %w", path, err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("transcript: stat %s: %w", path, err)
	}

	if fi.Size() <= sess.BufferThreshold {
		defer f.Close()
		lines, err := readAllLines(f)
		if err != nil {
			return nil, fmt.Errorf("transcript: read %s: %w", path, err)
		}
		c := &Cursor{Name: path, Kind: kind, sess: sess, buffered: lines}
		if err := c.advance(); err != nil && err != io.EOF {
			return nil, err
		}
		return c, nil
	}

	c := &Cursor{Name: path, Kind: kind, sess: sess, scanner: bufio.NewScanner(f), file: f}
	c.scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	if err := c.advance(); err != nil && err != io.EOF {
		c.Close()
		return nil, err
	}
	return c, nil
}

// OpenReader builds a Cursor directly over r (used for in-memory /
// applicable transcripts; the null transcript comes from NewNull), always
// buffered since r has no fd to conserve.
func OpenReader(r io.Reader, name string, kind Kind, sess *session.Context) (*Cursor, error) {
	lines, err := readAllLines(r)
	if err != nil {
		return nil, fmt.Errorf("transcript: read %s: %w", name, err)
	}
	c := &Cursor{Name: name, Kind: kind, sess: sess, buffered: lines}
	if err := c.advance(); err != nil && err != io.EOF {
		return nil, err
	}
	return c, nil
}

// NewNull returns an always-empty Cursor, pushed last onto every
// stack so it is never empty.
func NewNull(sess *session.Context) *Cursor {
	c := &Cursor{Name: "(null)", Kind: KindNull, sess: sess, buffered: nil}
	c.atEOF = true
	return c
}

func readAllLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}

func (c *Cursor) nextRawLine() (string, bool) {
	if c.buffered != nil || c.scanner == nil {
		if c.bufIdx >= len(c.buffered) {
			return "", false
		}
		line := c.buffered[c.bufIdx]
		c.bufIdx++
		return line, true
	}
	if c.scanner.Scan() {
		return c.scanner.Text(), true
	}
	return "", false
}

// advance pulls the next non-comment, non-header entry line into
// c.prev, parsing and order-checking it. It sets c.atEOF when the
// underlying source is exhausted.
func (c *Cursor) advance() error {
	for {
		line, ok := c.nextRawLine()
		if !ok {
			c.atEOF = true
			c.prev = nil
			return io.EOF
		}
		c.lineNo++
		if IsComment(line) {
			continue
		}
		if name, ok := ParseHeader(line); ok {
			c.header = name
			continue
		}
		entry, err := ParseLine(line)
		if err != nil {
			return fmt.Errorf("transcript: %s:%d: %w", c.Name, c.lineNo, err)
		}
		if c.prev != nil {
			if rpath.Compare(c.prev.Name, entry.Name, c.sess.CaseSensitive) >= 0 {
				return fmt.Errorf("transcript: %s:%d: invariant I1 violated: %q does not sort after %q",
					c.Name, c.lineNo, entry.Name, c.prev.Name)
			}
		}
		c.prev = entry
		return nil
	}
}

// Current returns the entry this cursor is positioned on, or nil at
// EOF.
func (c *Cursor) Current() *PathEntry {
	if c.atEOF {
		return nil
	}
	return c.prev
}

// EOF reports whether the cursor is exhausted.
func (c *Cursor) EOF() bool {
	return c.atEOF
}

// Advance moves the cursor to its next entry, returning io.EOF when
// exhausted.
func (c *Cursor) Advance() error {
	if c.atEOF {
		return io.EOF
	}
	return c.advance()
}

// Header returns the short-name header set by the transcript's first
// "name:" line, if any.
func (c *Cursor) Header() string {
	return c.header
}

// Close releases the file descriptor, if one is held.
func (c *Cursor) Close() error {
	if c.file != nil {
		return c.file.Close()
	}
	return nil
}
