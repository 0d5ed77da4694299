//go:build !linux

package lapply

import "github.com/radmind-go/transcriptd/transcript"

func makeSpecial(path string, t transcript.EntryType, mode uint32, major, minor uint32) error {
	return errUnsupportedType(t)
}
