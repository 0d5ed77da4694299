//go:build linux

package lapply

import (
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// fsImmutableFlag / fsAppendFlag mirror linux's FS_IMMUTABLE_FL /
// FS_APPEND_FL from <linux/fs.h>; the ioctl numbers aren't exposed by
// golang.org/x/sys/unix as named constants so they're spelled out
// here the way chattr(1) ports conventionally do.
const (
	fsIoctlGetFlags = 0x80086601
	fsIoctlSetFlags = 0x40086601
	fsImmutableFlag = 0x00000010
	fsAppendFlag = 0x00000020
)

// clearImmutable clears the immutable/append attributes on path, used
// when the applier's Force mode is enabled. Errors are
// tolerated: most filesystems (tmpfs, overlay, FAT) don't support the
// ioctl at all, and that's not a reason to fail the whole apply.
func clearImmutable(path string) {
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return
	}
	defer f.Close()

	var flags uint32
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), fsIoctlGetFlags, uintptr(unsafe.Pointer(&flags))); errno != 0 {
		return
	}
	if flags&(fsImmutableFlag|fsAppendFlag) == 0 {
		return
	}
	flags &^= fsImmutableFlag | fsAppendFlag
	unix.Syscall(unix.SYS_IOCTL, f.Fd(), fsIoctlSetFlags, uintptr(unsafe.Pointer(&flags)))
}
