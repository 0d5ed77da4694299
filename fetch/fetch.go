// Package fetch declares the two external collaborators the
// transcript engine consumes but does not implement: a file-download
// capability and an event-reporting capability. The wire protocol and
// server-side store are explicitly out of scope; only
// these interfaces, and one concrete net/http-based implementation
// for integration tests, live here.
package fetch

import "context"

// Descriptor names the server-side path-descriptor a FileFetcher
// needs to locate bytes to download. It mirrors the transcript line's
// identity: the encoded path plus, when known, the expected size and
// base64 checksum for verification during the download itself.
type Descriptor struct {
	Path string
	Size int64 // -1 if unknown
	ChecksumB64 string // "" if not to be verified inline
	Algorithm string
}

// FileFetcher downloads one file's bytes to a temporary path on the
// local filesystem, optionally verifying a checksum as it streams.
// Implementations decide their own transport, compression, and
// authentication (all out of scope here).
type FileFetcher interface {
	// Fetch downloads the object named by d to tempPath (mode 0600),
	// returning the number of bytes written. It
	// must not leave a partial file behind on error.
	Fetch(ctx context.Context, d Descriptor, tempPath string) (bytesWritten int64, err error)
}

// EventReporter posts a single named event/outcome pair back to the
// server, using a fixed outcome set.
type EventReporter interface {
	Post(ctx context.Context, event string, outcome string) error
}

// NopReporter discards every event; useful for tests and for runs
// that don't need server-side event logging.
type NopReporter struct{}

func (NopReporter) Post(ctx context.Context, event, outcome string) error { return nil }
