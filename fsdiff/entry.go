package fsdiff

import "github.com/radmind-go/transcriptd/transcript"

// fsEntry is the live filesystem counterpart of a transcript.PathEntry
// - one lstat'd object, typed the same way the transcript format types
// it. Grounded on rclone's linkinfo_unix.go / metadata_linux.go
// pattern of reaching into info.Sys().(*syscall.Stat_t) for the
// fields os.FileInfo doesn't expose portably. Populated by the
// platform-specific lstatEntry in stat_linux.go / stat_bsd.go.
type fsEntry struct {
	Name  string
	Type  transcript.EntryType
	Mode  uint32
	UID   int
	GID   int
	MTime int64
	Size  int64
	Link  string
	Major uint32
	Minor uint32
	Dev   uint64
	Ino   uint64
}
