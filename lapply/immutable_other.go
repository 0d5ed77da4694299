//go:build !linux

package lapply

// clearImmutable is a no-op on platforms without the linux FS_IOC_*
// immutable-flag ioctls.
func clearImmutable(path string) {}
