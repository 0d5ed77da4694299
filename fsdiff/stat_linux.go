//go:build linux

package fsdiff

import (
	"fmt"
	"os"
	"syscall"

	"github.com/radmind-go/transcriptd/transcript"
)

// lstatEntry lstats path and classifies it as a symlink, directory,
// socket, FIFO, block or character device; anything else is
// classified as a regular file. It never yields the hardlink ("h"),
// archived-fork ("a") or door ("D") types.
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
		Name: name,
		Mode: uint32(fi.Mode().Perm()),
		UID: int(st.Uid),
		GID: int(st.Gid),
		MTime: st.Mtim.Sec,
		Dev: uint64(st.Dev),
		Ino: st.Ino,
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
		e.Major = uint32((rdev >> 8) & 0xfff)
		e.Minor = uint32((rdev & 0xff) | ((rdev >> 12) & 0xfff00))
	default:
		e.Type = transcript.TypeFile
		e.Size = fi.Size()
	}
	return e, nil
}
