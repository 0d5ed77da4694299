package stack

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/radmind-go/transcriptd/rpath"
	"github.com/radmind-go/transcriptd/session"
	"github.com/radmind-go/transcriptd/transcript"
)

// Resolver maps the bare names used in K-file directives onto
// filesystem paths. The default resolver treats every name as a path
// relative to a base directory, matching the grammar's "the client
// directory mirrors the server's command-file tree" persisted-state
// convention.
type Resolver interface {
	TranscriptPath(name string) string
	KFilePath(name string) string
}

// DirResolver is the default Resolver: every name is joined onto Dir
// unless already absolute.
type DirResolver struct {
	Dir string
}

func (d DirResolver) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(d.Dir, name)
}

func (d DirResolver) TranscriptPath(name string) string { return d.resolve(name) }
func (d DirResolver) KFilePath(name string) string { return d.resolve(name) }

// member is one transcript pushed onto the stack in declaration
// order; T0 (first pushed) has highest precedence.
type member struct {
	name string
	kind transcript.Kind
	cursor *transcript.Cursor
}

// Stack is the ordered collection of open transcripts produced from a
// K-file. Members is T0..Tn in precedence order
// (T0 highest); Special is the separate top overlay; Exclude is the
// ordered exclude-pattern list.
type Stack struct {
	sess *session.Context
	members []*member // excludes special and null; order = precedence
	special []*member
	exclude []*excludePattern
	null *member
}

type excludePattern struct {
	raw string
	w *rpath.Wildcard
}

// Open parses cmdFile (optionally recursively including other K-files
// via 'k' directives) and opens every referenced transcript, building
// a ready-to-select Stack. A null transcript is always appended last
// so the stack is never empty.
func Open(cmdFile string, resolver Resolver, sess *session.Context) (*Stack, error) {
	b := &builder{
		resolver: resolver,
		sess: sess,
		ancestors: map[string]bool{},
	}
	abs, err := filepath.Abs(cmdFile)
	if err != nil {
		return nil, fmt.Errorf("stack: %w", err)
	}
	if err := b.include(abs); err != nil {
		b.closeAll()
		return nil, err
	}

	st := &Stack{
		sess: sess,
		members: b.members,
		special: b.special,
		exclude: b.exclude,
		null: &member{name: "(null)", kind: transcript.KindNull, cursor: transcript.NewNull(sess)},
	}
	return st, nil
}

// builder accumulates the live directive set while walking the
// K-file DAG, in file/declaration order, applying '-'-prefixed
// removals as it goes.
type builder struct {
	resolver Resolver
	sess *session.Context
	ancestors map[string]bool // K-file paths currently being expanded, for cycle detection

	members []*member
	special []*member
	exclude []*excludePattern
}

func (b *builder) include(kfilePath string) error {
	if b.ancestors[kfilePath] {
		return fmt.Errorf("stack: command-file inclusion cycle at %s", kfilePath)
	}
	b.ancestors[kfilePath] = true
	defer delete(b.ancestors, kfilePath)

	f, err := os.Open(kfilePath)
	if err != nil {
		return fmt.Errorf("stack: open K-file %s: %w", kfilePath, err)
	}
	defer f.Close()

	directives, err := ReadKFile(f)
	if err != nil {
		return fmt.Errorf("stack: %s: %w", kfilePath, err)
	}

	base := filepath.Dir(kfilePath)
	for _, d := range directives {
		if err := b.apply(d, base); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) apply(d *Directive, base string) error {
	switch d.Kind {
	case DirPositive, DirNegative:
		kind := transcript.KindPositive
		if d.Kind == DirNegative {
			kind = transcript.KindNegative
		}
		if d.Remove {
			b.removeMember(d.Arg, kind)
			return nil
		}
		path := b.resolver.TranscriptPath(d.Arg)
		cur, err := transcript.OpenFile(path, kind, b.sess)
		if err != nil {
			return fmt.Errorf("stack: %w", err)
		}
		b.members = append(b.members, &member{name: d.Arg, kind: kind, cursor: cur})

	case DirSpecial:
		if d.Remove {
			b.removeSpecial(d.Arg)
			return nil
		}
		path := b.resolver.TranscriptPath(d.Arg)
		cur, err := transcript.OpenFile(path, transcript.KindSpecial, b.sess)
		if err != nil {
			return fmt.Errorf("stack: %w", err)
		}
		b.special = append(b.special, &member{name: d.Arg, kind: transcript.KindSpecial, cursor: cur})

	case DirExclude:
		if d.Remove {
			b.removeExclude(d.Arg)
			return nil
		}
		w, err := rpath.Compile(d.Arg, b.sess.CaseSensitive)
		if err != nil {
			return fmt.Errorf("stack: bad exclude pattern %q: %w", d.Arg, err)
		}
		b.exclude = append(b.exclude, &excludePattern{raw: d.Arg, w: w})

	case DirKFile:
		if d.Remove {
			// Removing a k-file inclusion has no separately tracked
			// identity once expanded; only requires that
			// removing something never added is a no-op, which this
			// satisfies trivially.
			return nil
		}
		path := absPath(base, b.resolver.KFilePath(d.Arg))
		return b.include(path)
	}
	return nil
}

func (b *builder) removeMember(name string, kind transcript.Kind) {
	for i, m := range b.members {
		if m.name == name && m.kind == kind {
			m.cursor.Close()
			b.members = append(b.members[:i], b.members[i+1:]...)
			return
		}
	}
}

func (b *builder) removeSpecial(name string) {
	for i, m := range b.special {
		if m.name == name {
			m.cursor.Close()
			b.special = append(b.special[:i], b.special[i+1:]...)
			return
		}
	}
}

func (b *builder) removeExclude(pattern string) {
	for i, e := range b.exclude {
		if e.raw == pattern {
			b.exclude = append(b.exclude[:i], b.exclude[i+1:]...)
			return
		}
	}
}

func (b *builder) closeAll() {
	for _, m := range b.members {
		m.cursor.Close()
	}
	for _, m := range b.special {
		m.cursor.Close()
	}
}

// Close releases every open transcript's file descriptor.
func (s *Stack) Close() error {
	for _, m := range s.members {
		m.cursor.Close()
	}
	for _, m := range s.special {
		m.cursor.Close()
	}
	return s.null.cursor.Close()
}

// ExcludeMatch reports whether path matches any exclude pattern.
func (s *Stack) ExcludeMatch(path string) bool {
	for _, e := range s.exclude {
		if e.w.Match(path) {
			return true
		}
	}
	return false
}
