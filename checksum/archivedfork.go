package checksum

import (
	"encoding/binary"
	"fmt"
	"io"
)

// archivedForkMagic identifies the packed multi-fork representation
// on disk for "a" (archived-fork) entries.
const archivedForkMagic uint32 = 0x52414446 // "RADF"

// EntryRecord is one of the three fixed-size records (data fork,
// resource fork, finder info) that precede the fork payloads in the
// canonical serialization.
type EntryRecord struct {
	Offset uint64
	Length uint64
}

// ArchivedFork is the in-memory form of an "a" entry's packed
// representation: header, three entry records, then the finder info,
// resource fork, and data fork payloads themselves, in that order -
// the literal layout this package uses for the digest.
type ArchivedFork struct {
	FinderInfo []byte
	ResourceFork io.Reader
	DataFork io.Reader

	resourceForkLen int64
	dataForkLen int64
}

// NewArchivedFork builds a fork set from known-length readers so the
// three EntryRecord offsets/lengths can be computed up front.
func NewArchivedFork(finderInfo []byte, resourceFork io.Reader, resourceForkLen int64, dataFork io.Reader, dataForkLen int64) *ArchivedFork {
	return &ArchivedFork{
		FinderInfo: finderInfo,
		ResourceFork: resourceFork,
		DataFork: dataFork,
		resourceForkLen: resourceForkLen,
		dataForkLen: dataForkLen,
	}
}

// header is fixed: magic, version, then the three entry records in
// big-endian, data/resource/finderinfo order.
type header struct {
	Magic uint32
	Version uint32
}

const headerSize = 8
const entryRecordSize = 16 // two uint64 fields, big-endian

// writeEntryRecord serializes one EntryRecord big-endian.
func writeEntryRecord(w io.Writer, e EntryRecord) error {
	var buf [entryRecordSize]byte
	binary.BigEndian.PutUint64(buf[0:8], e.Offset)
	binary.BigEndian.PutUint64(buf[8:16], e.Length)
	_, err := w.Write(buf[:])
	return err
}

// DigestArchivedFork streams the canonical serialization of af through
// algorithm's digest: fixed header, the three big-endian entry
// records (data, resource, finderinfo), then the finderinfo bytes,
// the resource fork bytes, and the data fork bytes, in that order
//.
func DigestArchivedFork(af *ArchivedFork, algorithm Algorithm, bufferSize int) (bytesRead int64, sum []byte, err error) {
	h, err := newHash(algorithm)
	if err != nil {
		return 0, nil, err
	}
	if bufferSize < MinReadBufferSize {
		bufferSize = MinReadBufferSize
	}

	var hdr [headerSize]byte
	binary.BigEndian.PutUint32(hdr[0:4], archivedForkMagic)
	binary.BigEndian.PutUint32(hdr[4:8], 1)
	n, err := h.Write(hdr[:])
	bytesRead += int64(n)
	if err != nil {
		return bytesRead, nil, fmt.Errorf("checksum: archived-fork header: %w", err)
	}

	finderInfoLen := uint64(len(af.FinderInfo))
	dataOff := uint64(0)
	resourceOff := dataOff + uint64(af.dataForkLen)
	finderOff := resourceOff + uint64(af.resourceForkLen)

	records := []EntryRecord{
		{Offset: dataOff, Length: uint64(af.dataForkLen)},
		{Offset: resourceOff, Length: uint64(af.resourceForkLen)},
		{Offset: finderOff, Length: finderInfoLen},
	}
	for _, rec := range records {
		if err := writeEntryRecord(h, rec); err != nil {
			return bytesRead, nil, fmt.Errorf("checksum: archived-fork entry record: %w", err)
		}
		bytesRead += entryRecordSize
	}

	nn, err := h.Write(af.FinderInfo)
	bytesRead += int64(nn)
	if err != nil {
		return bytesRead, nil, fmt.Errorf("checksum: archived-fork finderinfo: %w", err)
	}

	buf := make([]byte, bufferSize)
	type namedReader struct {
		name string
		r io.Reader
	}
	// Order matters: this format fixes finderinfo, resource fork,
	// data fork - a plain map would randomize this on every run.
	for _, nr := range []namedReader{
		{"resource fork", af.ResourceFork},
		{"data fork", af.DataFork},
	} {
		if nr.r == nil {
			continue
		}
		copied, err := io.CopyBuffer(h, nr.r, buf)
		bytesRead += copied
		if err != nil {
			return bytesRead, nil, fmt.Errorf("checksum: archived-fork %s: %w", nr.name, err)
		}
	}

	return bytesRead, h.Sum(nil), nil
}
