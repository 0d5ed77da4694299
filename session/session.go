// Package session holds the explicit, passed-everywhere state that
// the original radmind implementation kept as file-scope globals:
// case-sensitivity, the selected checksum algorithm, the active path
// prefix, verbosity, and the field-comparison switch mask. Every
// operation in transcript, stack, fsdiff, and lapply takes a
// *session.Context instead of reading package-level variables.
package session

// CompareFields is a bitmask selecting which PathEntry fields
// t_compare-style metadata comparison considers. A disabled field is
// skipped entirely rather than treated as "always equal" - including
// when deciding whether a size or checksum mismatch should force a
// redownload.
type CompareFields uint8

const (
	CompareUID CompareFields = 1 << iota
	CompareGID
	CompareMTime
	CompareMode
	CompareSize
	CompareCksum

	CompareAll = CompareUID | CompareGID | CompareMTime | CompareMode | CompareSize | CompareCksum
)

// Has reports whether all of want's bits are set in f.
func (f CompareFields) Has(want CompareFields) bool {
	return f&want == want
}

// Verbosity controls how chatty the engine is about diagnostics such
// as excluded-match warnings.
type Verbosity int

const (
	Quiet Verbosity = iota
	Normal
	Verbose
)

// Context is the explicit session state threaded through every
// operation in the engine. It is created once per run and never
// mutated concurrently - the engine is single-threaded.
type Context struct {
	// CaseSensitive governs rpath.Compare / rpath.IsChild throughout
	// the run. Fixed for the whole session.
	CaseSensitive bool

	// PathPrefix is the start path: entries outside it are ignored
	// by the selector.
	PathPrefix string

	// ChecksumAlgorithm names the digest registered in package
	// checksum that fsdiff/lapply use for content verification.
	ChecksumAlgorithm string

	// ChecksumEnabled mirrors the "-c" style flag: when false, a
	// checksum field present in a transcript is still parsed but
	// never consulted for comparison (EffectiveCompare clears
	// CompareCksum from Compare in that case).
	ChecksumEnabled bool

	// Compare is the field-comparison switch mask (Open Question
	// resolution).
	Compare CompareFields

	// Verbosity controls diagnostic chattiness.
	Verbosity Verbosity

	// WarnOnExclude requests a diagnostic (never fatal) when an
	// exclude pattern hides an entry that would otherwise have been
	// selected.
	WarnOnExclude bool

	// Force clears user-defined immutable/append flags before
	// mutation where the platform supports it.
	Force bool

	// BufferThreshold is the maximum transcript file size, in bytes,
	// that will be slurped fully into memory rather than kept open
	// as a file descriptor.
	BufferThreshold int64

	// ReadBufferSize is the minimum streaming buffer for checksum
	// computation, minimum 8192.
	ReadBufferSize int

	Stats *Stats
}

// DefaultBufferThreshold matches rclone's own "small transcripts
// stay in memory" convention (see transcript.Cursor).
const DefaultBufferThreshold = 64 * 1024

// DefaultReadBufferSize is the minimum streaming buffer size for
// checksum computation.
const DefaultReadBufferSize = 8192

// New builds a Context with sane defaults; callers override fields as
// needed before the run starts.
func New() *Context {
	return &Context{
		CaseSensitive: true,
		ChecksumEnabled: true,
		Compare: CompareAll,
		BufferThreshold: DefaultBufferThreshold,
		ReadBufferSize: DefaultReadBufferSize,
		Stats: NewStats(),
	}
}

// EffectiveCompare returns the comparison mask with CompareCksum
// cleared when checksums are disabled for the run, so callers never
// need to check both fields separately.
func (c *Context) EffectiveCompare() CompareFields {
	m := c.Compare
	if !c.ChecksumEnabled {
		m &^= CompareCksum
	}
	return m
}
