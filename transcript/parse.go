package transcript

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/radmind-go/transcriptd/rpath"
)

// ParseLine parses one transcript line into a
// PathEntry. It does not check invariant I1 (ascending order); callers
// (Cursor) verify that against the previously parsed entry.
func ParseLine(line string) (*PathEntry, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return nil, fmt.Errorf("transcript: malformed line %q: need at least type and name", line)
	}

	i := 0
	minus := false
	if fields[i] == "-" {
		minus = true
		i++
		if len(fields) < i+2 {
			return nil, fmt.Errorf("transcript: malformed line %q: missing type/name after '-'", line)
		}
	}

	typeTok := fields[i]
	if len(typeTok) != 1 {
		return nil, fmt.Errorf("transcript: malformed line %q: bad type token %q", line, typeTok)
	}
	et := EntryType(typeTok[0])
	if !et.IsValid() {
		return nil, fmt.Errorf("transcript: malformed line %q: unknown entry type %q", line, typeTok)
	}
	i++

	nameTok := fields[i]
	name, err := rpath.Decode(nameTok)
	if err != nil {
		return nil, fmt.Errorf("transcript: malformed line %q: %w", line, err)
	}
	i++

	rest := fields[i:]
	e := &PathEntry{Type: et, Minus: minus, Name: rpath.Path(name)}

	switch et {
	case TypeDirectory:
		if len(rest) != 3 && len(rest) != 4 {
			return nil, fieldCountErr(line, et, rest)
		}
		if err := parseModeUIDGID(e, rest[0:3]); err != nil {
			return nil, wrapParse(line, err)
		}
		if len(rest) == 4 {
			fi, err := base64.StdEncoding.DecodeString(rest[3])
			if err != nil {
				return nil, fmt.Errorf("transcript: malformed line %q: bad finderinfo: %w", line, err)
			}
			e.FinderInfo = fi
		}

	case TypeFIFO, TypeDoor, TypeSocket:
		if len(rest) != 3 {
			return nil, fieldCountErr(line, et, rest)
		}
		if err := parseModeUIDGID(e, rest); err != nil {
			return nil, wrapParse(line, err)
		}

	case TypeBlockDevice, TypeCharDevice:
		if len(rest) != 5 {
			return nil, fieldCountErr(line, et, rest)
		}
		if err := parseModeUIDGID(e, rest[0:3]); err != nil {
			return nil, wrapParse(line, err)
		}
		major, err := strconv.ParseUint(rest[3], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("transcript: malformed line %q: bad major: %w", line, err)
		}
		minor, err := strconv.ParseUint(rest[4], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("transcript: malformed line %q: bad minor: %w", line, err)
		}
		e.Major, e.Minor = uint32(major), uint32(minor)

	case TypeSymlink:
		switch len(rest) {
		case 1:
			link, err := rpath.Decode(rest[0])
			if err != nil {
				return nil, fmt.Errorf("transcript: malformed line %q: %w", line, err)
			}
			e.Link = link
		case 4:
			if err := parseModeUIDGID(e, rest[0:3]); err != nil {
				return nil, wrapParse(line, err)
			}
			link, err := rpath.Decode(rest[3])
			if err != nil {
				return nil, fmt.Errorf("transcript: malformed line %q: %w", line, err)
			}
			e.Link = link
		default:
			return nil, fieldCountErr(line, et, rest)
		}

	case TypeHardlink:
		if len(rest) != 1 {
			return nil, fieldCountErr(line, et, rest)
		}
		link, err := rpath.Decode(rest[0])
		if err != nil {
			return nil, fmt.Errorf("transcript: malformed line %q: %w", line, err)
		}
		e.Link = link

	case TypeFile, TypeArchivedFork:
		if len(rest) != 6 {
			return nil, fieldCountErr(line, et, rest)
		}
		if err := parseModeUIDGID(e, rest[0:3]); err != nil {
			return nil, wrapParse(line, err)
		}
		mtime, err := strconv.ParseInt(rest[3], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("transcript: malformed line %q: bad mtime: %w", line, err)
		}
		size, err := strconv.ParseInt(rest[4], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("transcript: malformed line %q: bad size: %w", line, err)
		}
		e.MTime, e.Size = mtime, size
		if rest[5] != "-" {
			if _, err := base64.StdEncoding.DecodeString(rest[5]); err != nil {
				return nil, fmt.Errorf("transcript: malformed line %q: bad cksum: %w", line, err)
			}
			e.Cksum = rest[5]
		}

	default:
		return nil, fmt.Errorf("transcript: malformed line %q: unsupported type %q", line, typeTok)
	}

	return e, nil
}

func parseModeUIDGID(e *PathEntry, tok []string) error {
	mode, err := strconv.ParseUint(tok[0], 8, 32)
	if err != nil {
		return fmt.Errorf("bad mode %q: %w", tok[0], err)
	}
	uid, err := strconv.Atoi(tok[1])
	if err != nil {
		return fmt.Errorf("bad uid %q: %w", tok[1], err)
	}
	gid, err := strconv.Atoi(tok[2])
	if err != nil {
		return fmt.Errorf("bad gid %q: %w", tok[2], err)
	}
	e.Mode, e.UID, e.GID = uint32(mode), uid, gid
	return nil
}

func fieldCountErr(line string, et EntryType, rest []string) error {
	return fmt.Errorf("transcript: malformed line %q: wrong field count (%d) for type %q", line, len(rest), string(rune(et)))
}

func wrapParse(line string, err error) error {
	return fmt.Errorf("transcript: malformed line %q: %w", line, err)
}

// IsComment reports whether line is blank or a '#' comment
// (invariant I3).
func IsComment(line string) bool {
	t := strings.TrimSpace(line)
	return t == "" || strings.HasPrefix(t, "#")
}

// ParseHeader recognizes a header line of the form "<name>:" alone
//; it returns ("", false) if line isn't a header.
func ParseHeader(line string) (name string, ok bool) {
	t := strings.TrimSpace(line)
	if len(t) < 2 || !strings.HasSuffix(t, ":") {
		return "", false
	}
	inner := t[:len(t)-1]
	if strings.ContainsAny(inner, " \t") {
		return "", false
	}
	return inner, true
}
