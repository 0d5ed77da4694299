package transcript

import "sync"

// hardlinkKey identifies one inode via a two-level map
// dev -> ino -> (first-seen-path, changed-bit)", flattened to a
// single map keyed by the pair.
type hardlinkKey struct {
	Dev uint64
	Ino uint64
}

type hardlinkRecord struct {
	firstPath string
	changed bool
}

// HardlinkRegistry tracks (dev, ino) -> first-seen-path for one
// fsdiff run.
// fsdiff is single-threaded, but the registry takes a mutex anyway
// since it is cheap and keeps the type safe for concurrent use.
type HardlinkRegistry struct {
	mu sync.Mutex
	entries map[hardlinkKey]*hardlinkRecord
}

// NewHardlinkRegistry returns an empty registry.
func NewHardlinkRegistry() *HardlinkRegistry {
	return &HardlinkRegistry{entries: make(map[hardlinkKey]*hardlinkRecord)}
}

// Hardlink records (dev, ino) if this is its first occurrence and
// returns ("", false). On a repeat occurrence it returns the
// first-seen path and true, meaning the caller should emit an "h"
// entry pointing back at it.
func (r *HardlinkRegistry) Hardlink(dev, ino uint64, path string) (firstPath string, seen bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := hardlinkKey{dev, ino}
	rec, ok := r.entries[key]
	if !ok {
		r.entries[key] = &hardlinkRecord{firstPath: path}
		return "", false
	}
	return rec.firstPath, true
}

// Changed reads or sets the per-inode "changed" bit used to propagate
// re-downloads of siblings of a modified hardlink.
// Passing a nil set only reads the current value.
func (r *HardlinkRegistry) Changed(dev, ino uint64, set *bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := hardlinkKey{dev, ino}
	rec, ok := r.entries[key]
	if !ok {
		return false
	}
	if set != nil {
		rec.changed = *set
	}
	return rec.changed
}
