package session

import "sync/atomic"

// Stats is a small synchronous run counter, grounded on the shape of
// rclone/fs/accounting.StatsInfo but without its concurrency
// machinery: lapply and fsdiff in this engine never run two
// operations at once, so a set of atomically updated counters is
// enough.
type Stats struct {
	scanned int64
	created int64
	updated int64
	deleted int64
	errored int64
	bytesMove int64
}

// NewStats returns a zeroed Stats.
func NewStats() *Stats {
	return &Stats{}
}

func (s *Stats) Scanned() { atomic.AddInt64(&s.scanned, 1) }
func (s *Stats) Created() { atomic.AddInt64(&s.created, 1) }
func (s *Stats) Updated() { atomic.AddInt64(&s.updated, 1) }
func (s *Stats) Deleted() { atomic.AddInt64(&s.deleted, 1) }
func (s *Stats) Errored() { atomic.AddInt64(&s.errored, 1) }
func (s *Stats) Transferred(n int64) { atomic.AddInt64(&s.bytesMove, n) }

// Snapshot is an immutable view of the counters for reporting.
type Snapshot struct {
	Scanned, Created, Updated, Deleted, Errored, BytesTransferred int64
}

func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Scanned: atomic.LoadInt64(&s.scanned),
		Created: atomic.LoadInt64(&s.created),
		Updated: atomic.LoadInt64(&s.updated),
		Deleted: atomic.LoadInt64(&s.deleted),
		Errored: atomic.LoadInt64(&s.errored),
		BytesTransferred: atomic.LoadInt64(&s.bytesMove),
	}
}

// Changed reports whether any mutation was made or is pending - used
// to pick the process exit code (0 no changes, 1 changes made/needed).
func (sn Snapshot) Changed() bool {
	return sn.Created > 0 || sn.Updated > 0 || sn.Deleted > 0
}
