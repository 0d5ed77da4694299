package rpath

import "testing"

func TestCompare(t *testing.T) {
	cases := []struct {
		a, b Path
		cs bool
		wantLT bool
		wantEQ bool
	}{
		{"/a", "/b", true, true, false},
		{"/A", "/a", true, true, false},
		{"/A", "/a", false, false, true},
		{"/a", "/a", true, false, true},
	}
	for _, c := range cases {
		got := Compare(c.a, c.b, c.cs)
		if c.wantEQ && got != 0 {
			t.Errorf("Compare(%q,%q,%v) = %d, want 0", c.a, c.b, c.cs, got)
		}
		if c.wantLT && got >= 0 {
			t.Errorf("Compare(%q,%q,%v) = %d, want <0", c.a, c.b, c.cs, got)
		}
	}
}

func TestIsChild(t *testing.T) {
	cases := []struct {
		parent, child Path
		cs bool
		want bool
	}{
		{"/etc", "/etc/hosts", true, true},
		{"/etc", "/etc", true, true},
		{"/etc", "/etcx", true, false},
		{"/etc", "/ETC/hosts", false, true},
		{"", "/etc/hosts", true, true},
		{"/etc", "/var", true, false},
	}
	for _, c := range cases {
		got := IsChild(c.parent, c.child, c.cs)
		if got != c.want {
			t.Errorf("IsChild(%q,%q,%v) = %v, want %v", c.parent, c.child, c.cs, got, c.want)
		}
	}
}

func TestDirBase(t *testing.T) {
	if Dir("/a/b") != "/a" {
		t.Fatalf("Dir(/a/b) = %q", Dir("/a/b"))
	}
	if Dir("/a") != "/" {
		t.Fatalf("Dir(/a) = %q", Dir("/a"))
	}
	if Base("/a/b") != "b" {
		t.Fatalf("Base(/a/b) = %q", Base("/a/b"))
	}
}

func TestJoin(t *testing.T) {
	if Join("/a", "b") != "/a/b" {
		t.Fatalf("Join(/a,b) = %q", Join("/a", "b"))
	}
	if Join("/", "b") != "/b" {
		t.Fatalf("Join(/,b) = %q", Join("/", "b"))
	}
}
