package transcript

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/radmind-go/transcriptd/rpath"
)

// nameColumnWidth is the canonical padding width for the encoded name
// field.
const nameColumnWidth = 37

// WriteLine renders e in canonical transcript-line form. Round trip
// property: ParseLine(WriteLine(e)) parses back to an equivalent
// entry, modulo the padding whitespace itself.
func WriteLine(e *PathEntry) string {
	var b strings.Builder
	if e.Minus {
		b.WriteString("- ")
	}
	b.WriteByte(byte(e.Type))
	b.WriteByte(' ')

	name := rpath.Encode(string(e.Name))
	b.WriteString(name)
	if pad := nameColumnWidth - len(name); pad > 0 {
		b.WriteString(strings.Repeat(" ", pad))
	} else {
		b.WriteByte(' ')
	}

	switch e.Type {
	case TypeDirectory:
		fmt.Fprintf(&b, "%04o %d %d", e.Mode, e.UID, e.GID)
		if len(e.FinderInfo) > 0 {
			b.WriteByte(' ')
			b.WriteString(rpath.EncodeDigest(e.FinderInfo))
		}

	case TypeFIFO, TypeDoor, TypeSocket:
		fmt.Fprintf(&b, "%04o %d %d", e.Mode, e.UID, e.GID)

	case TypeBlockDevice, TypeCharDevice:
		fmt.Fprintf(&b, "%04o %d %d %d %d", e.Mode, e.UID, e.GID, e.Major, e.Minor)

	case TypeSymlink:
		fmt.Fprintf(&b, "%04o %d %d %s", e.Mode, e.UID, e.GID, rpath.Encode(e.Link))

	case TypeHardlink:
		b.WriteString(rpath.Encode(e.Link))

	case TypeFile, TypeArchivedFork:
		cksum := "-"
		if e.HasCksum() {
			cksum = e.Cksum
		}
		fmt.Fprintf(&b, "%04o %d %d %d %d %s", e.Mode, e.UID, e.GID, e.MTime, e.Size, cksum)
	}

	return b.String()
}

// Write writes e to w followed by a newline.
func Write(w io.Writer, e *PathEntry) error {
	_, err := io.WriteString(w, WriteLine(e)+"\n")
	return err
}

// WriteHeader writes the "<name>:" header line that precedes entries
// attributed to one transcript in an applicable transcript.
func WriteHeader(w io.Writer, name string) error {
	_, err := io.WriteString(w, name+":\n")
	return err
}

// formatMode renders mode in the original octal-with-leading-zero
// style radmind transcripts use. Nothing in this package calls it.
func formatMode(mode uint32) string {
	return "0" + strconv.FormatUint(uint64(mode), 8)
}
