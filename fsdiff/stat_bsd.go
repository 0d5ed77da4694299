//go:build darwin || freebsd || netbsd

package fsdiff

import (
	"fmt"
	"os"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/radmind-go/transcriptd/transcript"
)

// lstatEntry is the BSD/Darwin counterpart of the linux build, grounded
// on rclone's metadata_bsd.go / stat_unix.go (Atimespec/Mtimespec
// naming instead of linux's Atim/Mtim, and unix.Major/unix.Minor for
// decoding Rdev instead of the linux bit layout).
func lstatEntry(path, name string) (*fsEntry, error) {
	fi, err := os.Lstat(path)
	if err != nil {
		return nil, err
	}
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return nil, fmt.Errorf("fsdiff: %s: no syscall.Stat_t", path)
	}

	e := &fsEntry{
		Name:  name,
		Mode:  uint32(fi.Mode().Perm()),
		UID:   int(st.Uid),
		GID:   int(st.Gid),
		MTime: int64(st.Mtimespec.Sec),
		Dev:   uint64(st.Dev),
		Ino:   uint64(st.Ino),
	}

	switch {
	case fi.Mode()&os.ModeSymlink != 0:
		e.Type = transcript.TypeSymlink
		link, err := os.Readlink(path)
		if err != nil {
			return nil, err
		}
		e.Link = link
	case fi.IsDir():
		e.Type = transcript.TypeDirectory
	case fi.Mode()&os.ModeSocket != 0:
		e.Type = transcript.TypeSocket
	case fi.Mode()&os.ModeNamedPipe != 0:
		e.Type = transcript.TypeFIFO
	case fi.Mode()&os.ModeDevice != 0:
		if fi.Mode()&os.ModeCharDevice != 0 {
			e.Type = transcript.TypeCharDevice
		} else {
			e.Type = transcript.TypeBlockDevice
		}
		rdev := uint64(st.Rdev)
		e.Major = unix.Major(rdev)
		e.Minor = unix.Minor(rdev)
	default:
		e.Type = transcript.TypeFile
		e.Size = fi.Size()
	}
	return e, nil
}
