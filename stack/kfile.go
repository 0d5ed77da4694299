// Package stack builds the ordered transcript stack from a command
// file (K-file) and implements the precedence selector over it
//.
package stack

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// DirectiveKind is the single-character command verb in a K-file
// line.
type DirectiveKind byte

const (
	DirPositive DirectiveKind = 'p'
	DirNegative DirectiveKind = 'n'
	DirSpecial DirectiveKind = 's'
	DirKFile DirectiveKind = 'k'
	DirExclude DirectiveKind = 'x'
)

// Directive is one parsed K-file line.
type Directive struct {
	Kind DirectiveKind
	Remove bool // '-' prefix: reverse a prior insertion
	Arg string
}

// ParseKFileLine parses one line of a command file. Blank and
// '#'-prefixed lines return (nil, nil).
func ParseKFileLine(line string) (*Directive, error) {
	t := strings.TrimSpace(line)
	if t == "" || strings.HasPrefix(t, "#") {
		return nil, nil
	}
	remove := false
	if strings.HasPrefix(t, "-") {
		remove = true
		t = strings.TrimSpace(t[1:])
	}
	fields := strings.SplitN(t, " ", 2)
	if len(fields) != 2 || len(fields[0]) != 1 {
		return nil, fmt.Errorf("stack: malformed K-file line %q", line)
	}
	kind := DirectiveKind(fields[0][0])
	switch kind {
	case DirPositive, DirNegative, DirSpecial, DirKFile, DirExclude:
	default:
		return nil, fmt.Errorf("stack: malformed K-file line %q: unknown directive %q", line, fields[0])
	}
	return &Directive{Kind: kind, Remove: remove, Arg: strings.TrimSpace(fields[1])}, nil
}

// ReadKFile parses every directive line out of r, in file order,
// preserving comments' and blanks' absence (they are simply skipped).
func ReadKFile(r io.Reader) ([]*Directive, error) {
	var out []*Directive
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		d, err := ParseKFileLine(sc.Text())
		if err != nil {
			return nil, fmt.Errorf("stack: line %d: %w", lineNo, err)
		}
		if d != nil {
			out = append(out, d)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// absPath normalizes p against base the way the builder needs to when
// tracking "already opened" K-file paths for cycle detection.
func absPath(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Clean(filepath.Join(base, p))
}
