// Package rpath implements path comparison, encoding, and pattern
// matching for the transcript engine.
//
// A Path is an opaque byte sequence interpreted as a POSIX-style
// path. It has one of two normal forms fixed for the whole session:
// absolute (leading '/') or relative (leading '.' or './').
package rpath

import (
	"bytes"
	"strings"
)

// Path is a transcript path, kept in its encoded-on-disk form for
// comparison purposes.
type Path string

// Separator is the path component separator used by the transcript
// wire format, regardless of host OS.
const Separator = '/'

// IsAbsolute reports whether p is an absolute path (leading '/').
func (p Path) IsAbsolute() bool {
	return strings.HasPrefix(string(p), "/")
}

// Compare orders a and b, either bytewise (caseSensitive true) or
// case-folded (caseSensitive false). Path separators always compare
// as themselves; only the surrounding bytes are folded.
func Compare(a, b Path, caseSensitive bool) int {
	if caseSensitive {
		return bytes.Compare([]byte(a), []byte(b))
	}
	return strings.Compare(strings.ToLower(string(a)), strings.ToLower(string(b)))
}

// Equal reports whether a and b name the same path under the given
// case-sensitivity rule.
func Equal(a, b Path, caseSensitive bool) bool {
	return Compare(a, b, caseSensitive) == 0
}

// IsChild reports whether child is parent itself, or a path that
// starts with parent followed by a separator.
func IsChild(parent, child Path, caseSensitive bool) bool {
	p, c := string(parent), string(child)
	if caseSensitive {
		if p == c {
			return true
		}
	} else if strings.EqualFold(p, c) {
		return true
	}
	if p == "" {
		return true
	}
	prefix := p
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	if caseSensitive {
		return strings.HasPrefix(c, prefix)
	}
	return len(c) >= len(prefix) && strings.EqualFold(c[:len(prefix)], prefix)
}

// Dir returns the parent of p, "" if p has no parent.
func Dir(p Path) Path {
	s := string(p)
	i := strings.LastIndexByte(s, Separator)
	if i <= 0 {
		if i == 0 {
			return "/"
		}
		return ""
	}
	return Path(s[:i])
}

// Base returns the final component of p.
func Base(p Path) string {
	s := string(p)
	i := strings.LastIndexByte(s, Separator)
	return s[i+1:]
}

// Join joins parent and name with a single separator, not
// duplicating one that is already present.
func Join(parent Path, name string) Path {
	p := string(parent)
	if p == "" || strings.HasSuffix(p, "/") {
		return Path(p + name)
	}
	return Path(p + "/" + name)
}
