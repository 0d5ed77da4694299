package transcript

import "testing"

func TestParseFile(t *testing.T) {
	e, err := ParseLine(`f /etc/hosts 0644 0 0 1700000000 120 YWFhYQ==`)
	if err != nil {
		t.Fatal(err)
	}
	if e.Type != TypeFile || e.Mode != 0644 || e.UID != 0 || e.GID != 0 {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if e.MTime != 1700000000 || e.Size != 120 {
		t.Fatalf("unexpected time/size: %+v", e)
	}
	if e.Cksum != "YWFhYQ==" {
		t.Fatalf("unexpected cksum: %q", e.Cksum)
	}
	if string(e.Name) != "/etc/hosts" {
		t.Fatalf("unexpected name: %q", e.Name)
	}
}

func TestParseNoCksum(t *testing.T) {
	e, err := ParseLine(`f /etc/hosts 0644 0 0 1700000000 120 -`)
	if err != nil {
		t.Fatal(err)
	}
	if e.HasCksum() {
		t.Fatalf("expected no checksum recorded")
	}
}

func TestParseMinus(t *testing.T) {
	e, err := ParseLine(`- f /etc/hosts 0644 0 0 1700000000 120 -`)
	if err != nil {
		t.Fatal(err)
	}
	if !e.Minus {
		t.Fatalf("expected minus flag set")
	}
}

func TestParseDirectory(t *testing.T) {
	e, err := ParseLine(`d /var/log 0755 0 0`)
	if err != nil {
		t.Fatal(err)
	}
	if e.Type != TypeDirectory || e.Mode != 0755 {
		t.Fatalf("unexpected entry: %+v", e)
	}
}

func TestParseSymlinkBothForms(t *testing.T) {
	e1, err := ParseLine(`l /a/link /a/target`)
	if err != nil {
		t.Fatal(err)
	}
	if e1.Link != "/a/target" {
		t.Fatalf("unexpected link: %q", e1.Link)
	}

	e2, err := ParseLine(`l /a/link 0777 0 0 /a/target`)
	if err != nil {
		t.Fatal(err)
	}
	if e2.Mode != 0777 || e2.Link != "/a/target" {
		t.Fatalf("unexpected entry: %+v", e2)
	}
}

func TestParseHardlink(t *testing.T) {
	e, err := ParseLine(`h /b /a`)
	if err != nil {
		t.Fatal(err)
	}
	if e.Type != TypeHardlink || e.Link != "/a" {
		t.Fatalf("unexpected entry: %+v", e)
	}
}

func TestParseDevice(t *testing.T) {
	e, err := ParseLine(`b /dev/sda 0660 0 0 8 0`)
	if err != nil {
		t.Fatal(err)
	}
	if e.Major != 8 || e.Minor != 0 {
		t.Fatalf("unexpected entry: %+v", e)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []string{
		``,
		`f`,
		`z /a 0644 0 0 0 0 -`,
		`f /a 0644 0 0 0 0`, // missing cksum field
		`d /a bad 0 0`, // bad mode
	}
	for _, c := range cases {
		if _, err := ParseLine(c); err == nil {
			t.Errorf("ParseLine(%q) expected error", c)
		}
	}
}

func TestParseHeaderLine(t *testing.T) {
	name, ok := ParseHeader("base:")
	if !ok || name != "base" {
		t.Fatalf("ParseHeader failed: %q %v", name, ok)
	}
	if _, ok := ParseHeader("f /a 0644 0 0 0 0 -"); ok {
		t.Fatalf("expected non-header line to not parse as header")
	}
}

func TestIsComment(t *testing.T) {
	if !IsComment("") || !IsComment(" ") || !IsComment("# hi") {
		t.Fatalf("IsComment false negative")
	}
	if IsComment("f /a 0644 0 0 0 0 -") {
		t.Fatalf("IsComment false positive")
	}
}
