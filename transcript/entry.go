// Package transcript implements parsing, writing, and lazy iteration
// of transcript files, the tagged PathEntry variant
// over the ten entry types, and the per-run hardlink registry.
package transcript

import "github.com/radmind-go/transcriptd/rpath"

// EntryType is the single-character type tag at the start of every
// transcript line.
type EntryType byte

const (
	TypeFile EntryType = 'f'
	TypeArchivedFork EntryType = 'a'
	TypeDirectory EntryType = 'd'
	TypeSymlink EntryType = 'l'
	TypeHardlink EntryType = 'h'
	TypeSocket EntryType = 's'
	TypeFIFO EntryType = 'p'
	TypeDoor EntryType = 'D'
	TypeBlockDevice EntryType = 'b'
	TypeCharDevice EntryType = 'c'
)

// IsValid reports whether t is one of the ten recognized types.
func (t EntryType) IsValid() bool {
	switch t {
	case TypeFile, TypeArchivedFork, TypeDirectory, TypeSymlink, TypeHardlink,
		TypeSocket, TypeFIFO, TypeDoor, TypeBlockDevice, TypeCharDevice:
		return true
	}
	return false
}

func (t EntryType) String() string { return string(rune(t)) }

// HasPayload reports whether entries of this type carry downloadable
// content (as opposed to pure metadata).
func (t EntryType) HasPayload() bool {
	return t == TypeFile || t == TypeArchivedFork
}

// HasOwnership reports whether mode/uid/gid apply to this type -
// every type except "h" (hardlink, which always refers back to its
// primary's metadata).
func (t EntryType) HasOwnership() bool {
	return t != TypeHardlink
}

// Kind is the precedence role of the transcript a PathEntry came from
//.
type Kind int

const (
	KindPositive Kind = iota
	KindNegative
	KindSpecial
	KindNull
)

func (k Kind) String() string {
	switch k {
	case KindPositive:
		return "positive"
	case KindNegative:
		return "negative"
	case KindSpecial:
		return "special"
	case KindNull:
		return "null"
	default:
		return "unknown"
	}
}

// PathEntry is one parsed transcript line: a tagged variant over the
// ten entry types.
type PathEntry struct {
	Type EntryType
	Minus bool
	Name rpath.Path

	Mode uint32
	UID int
	GID int

	// f, a only.
	MTime int64
	Size int64
	// Cksum is "" when the line used the literal "-" (no checksum
	// recorded), otherwise a base64 digest.
	Cksum string

	// l (symlink target) and h (hardlink target).
	Link string

	// b, c only.
	Major uint32
	Minor uint32

	// d only, optional, platform-specific 32-byte blob.
	FinderInfo []byte
}

// HasCksum reports whether this entry recorded a checksum at all.
func (e *PathEntry) HasCksum() bool {
	return e.Cksum != ""
}

// Clone returns a deep-enough copy for callers that mutate fields
// (e.g. fsdiff retaining the filesystem's mtime on a negative match).
func (e *PathEntry) Clone() *PathEntry {
	c := *e
	if e.FinderInfo != nil {
		c.FinderInfo = append([]byte(nil), e.FinderInfo...)
	}
	return &c
}
