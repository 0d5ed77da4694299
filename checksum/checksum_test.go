package checksum

import (
	"bytes"
	"crypto/md5"
	"testing"
)

func TestStreamMD5(t *testing.T) {
	data := []byte("the quick brown fox")
	n, sum, err := Stream(bytes.NewReader(data), MD5, 0)
	if err != nil {
		t.Fatalf("Stream error: %v", err)
	}
	if n != int64(len(data)) {
		t.Errorf("bytesRead = %d, want %d", n, len(data))
	}
	want := md5.Sum(data)
	if !bytes.Equal(sum, want[:]) {
		t.Errorf("sum mismatch")
	}
}

func TestStreamUnknownAlgorithm(t *testing.T) {
	_, _, err := Stream(bytes.NewReader(nil), "bogus", 0)
	if err == nil {
		t.Fatal("expected error for unknown algorithm")
	}
}

func TestDigesterAccumulates(t *testing.T) {
	d, err := NewDigester(SHA256)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = d.Write([]byte("hello "))
	_, _ = d.Write([]byte("world"))
	if d.Size() != int64(len("hello world")) {
		t.Errorf("Size() = %d", d.Size())
	}
	if len(d.Sum()) == 0 {
		t.Errorf("Sum() empty")
	}
}

func TestSupportedIncludesCore(t *testing.T) {
	set := map[Algorithm]bool{}
	for _, a := range Supported() {
		set[a] = true
	}
	for _, want := range []Algorithm{MD5, SHA1, SHA256, CRC32, XXH3} {
		if !set[want] {
			t.Errorf("Supported() missing %v", want)
		}
	}
}

func TestDigestArchivedForkDeterministic(t *testing.T) {
	af := NewArchivedFork(
		[]byte{1, 2, 3, 4},
		bytes.NewReader([]byte("resource-bytes")), 14,
		bytes.NewReader([]byte("data-bytes-here")), 15,
	)
	_, sum1, err := DigestArchivedFork(af, SHA256, 0)
	if err != nil {
		t.Fatal(err)
	}

	af2 := NewArchivedFork(
		[]byte{1, 2, 3, 4},
		bytes.NewReader([]byte("resource-bytes")), 14,
		bytes.NewReader([]byte("data-bytes-here")), 15,
	)
	_, sum2, err := DigestArchivedFork(af2, SHA256, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(sum1, sum2) {
		t.Errorf("archived-fork digest not deterministic")
	}
}

func TestDigestArchivedForkOrderSensitive(t *testing.T) {
	a := NewArchivedFork(nil, bytes.NewReader([]byte("AAAA")), 4, bytes.NewReader([]byte("BBBB")), 4)
	_, sumA, _ := DigestArchivedFork(a, SHA256, 0)

	b := NewArchivedFork(nil, bytes.NewReader([]byte("BBBB")), 4, bytes.NewReader([]byte("AAAA")), 4)
	_, sumB, _ := DigestArchivedFork(b, SHA256, 0)

	if bytes.Equal(sumA, sumB) {
		t.Errorf("expected different digests when fork contents are swapped")
	}
}
