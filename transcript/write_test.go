package transcript

import (
	"reflect"
	"testing"
)

func TestRoundTripFile(t *testing.T) {
	lines := []string{
		`f /etc/hosts 0644 0 0 1700000000 120 YWFhYQ==`,
		`f /etc/hosts 0644 0 0 1700000000 120 -`,
		`d /var/log 0755 0 0`,
		`l /a/link 0777 0 0 /a/target`,
		`h /b /a`,
		`b /dev/sda 0660 0 0 8 0`,
		`p /tmp/fifo 0644 0 0`,
		`- f /etc/old 0644 0 0 1700000000 120 -`,
	}
	for _, line := range lines {
		e, err := ParseLine(line)
		if err != nil {
			t.Fatalf("ParseLine(%q): %v", line, err)
		}
		out := WriteLine(e)
		e2, err := ParseLine(out)
		if err != nil {
			t.Fatalf("re-parse of %q failed: %v", out, err)
		}
		if !reflect.DeepEqual(e2, e) {
			t.Errorf("round trip mismatch: %q -> %q -> %+v, want %+v", line, out, e2, e)
		}
	}
}

func TestWritePadsName(t *testing.T) {
	e := &PathEntry{Type: TypeDirectory, Name: "/a", Mode: 0755}
	out := WriteLine(e)
	// "d /a" plus padding to column 37, then fields.
	if len(out) < nameColumnWidth {
		t.Fatalf("expected padded output, got %q (len %d)", out, len(out))
	}
}
