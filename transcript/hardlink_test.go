package transcript

import "testing"

func TestHardlinkRegistryFirstAndRepeat(t *testing.T) {
	r := NewHardlinkRegistry()

	if path, seen := r.Hardlink(1, 100, "/a"); seen || path != "" {
		t.Fatalf("expected first occurrence unseen, got path=%q seen=%v", path, seen)
	}
	if path, seen := r.Hardlink(1, 100, "/b"); !seen || path != "/a" {
		t.Fatalf("expected repeat to report /a, got path=%q seen=%v", path, seen)
	}
	if path, seen := r.Hardlink(1, 100, "/c"); !seen || path != "/a" {
		t.Fatalf("expected repeat to report /a, got path=%q seen=%v", path, seen)
	}
	// Different device, same inode number: must not collide.
	if path, seen := r.Hardlink(2, 100, "/d"); seen || path != "" {
		t.Fatalf("expected different device to be a fresh entry, got path=%q seen=%v", path, seen)
	}
}

func TestHardlinkChangedBit(t *testing.T) {
	r := NewHardlinkRegistry()
	r.Hardlink(1, 1, "/a")

	if r.Changed(1, 1, nil) {
		t.Fatalf("expected changed bit to default false")
	}
	yes := true
	r.Changed(1, 1, &yes)
	if !r.Changed(1, 1, nil) {
		t.Fatalf("expected changed bit to be set")
	}
}
