//go:build linux

package lapply

import (
	"golang.org/x/sys/unix"

	"github.com/radmind-go/transcriptd/transcript"
)

// makeSpecial creates the non-payload filesystem object types that
// need a raw syscall rather than a plain os.* call, grounded on the
// rclone's lchmod_unix.go pattern of reaching into golang.org/x/sys/
// unix for the platform calls os doesn't expose.
func makeSpecial(path string, t transcript.EntryType, mode uint32, major, minor uint32) error {
	switch t {
	case transcript.TypeFIFO:
		return unix.Mkfifo(path, mode)
	case transcript.TypeSocket:
		return unix.Mknod(path, mode|unix.S_IFSOCK, 0)
	case transcript.TypeBlockDevice:
		dev := unix.Mkdev(major, minor)
		return unix.Mknod(path, mode|unix.S_IFBLK, int(dev))
	case transcript.TypeCharDevice:
		dev := unix.Mkdev(major, minor)
		return unix.Mknod(path, mode|unix.S_IFCHR, int(dev))
	default:
		return errUnsupportedType(t)
	}
}
