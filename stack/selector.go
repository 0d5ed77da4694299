package stack

import (
	"io"

	"github.com/radmind-go/transcriptd/rlog"
	"github.com/radmind-go/transcriptd/rpath"
	"github.com/radmind-go/transcriptd/transcript"
)

// Selection is one entry produced by Select, together with the
// transcript that produced it.
type Selection struct {
	Entry *transcript.PathEntry
	Kind transcript.Kind
	Origin string // the member name (transcript path) the entry came from
}

// active returns every member participating in selection, special
// entries first: the special list is an override layer applied ahead
// of the regular stack, so it always wins ties against a
// same-path regular member (Open Question resolution, see DESIGN.md).
func (s *Stack) active() []*member {
	all := make([]*member, 0, len(s.special)+len(s.members)+1)
	all = append(all, s.special...)
	all = append(all, s.members...)
	all = append(all, s.null)
	return all
}

// Select implements the selection algorithm: repeatedly
// pick the lowest-path not-EOF entry across the whole stack (ties
// broken by precedence), mask lower-precedence duplicates at the same
// path, then apply the minus/exclude/prefix filters, re-running
// selection for anything filtered out. Returns io.EOF when the whole
// stack is exhausted.
func (s *Stack) Select() (*Selection, error) {
	all := s.active()
	for {
		winner := -1
		for i, m := range all {
			if m.cursor.EOF() {
				continue
			}
			if winner == -1 {
				winner = i
				continue
			}
			cmp := rpath.Compare(m.cursor.Current().Name, all[winner].cursor.Current().Name, s.sess.CaseSensitive)
			if cmp < 0 {
				winner = i
			}
		}
		if winner == -1 {
			return nil, io.EOF
		}

		winEntry := all[winner].cursor.Current()
		winMember := all[winner]

		for i, m := range all {
			if i == winner || m.cursor.EOF() {
				continue
			}
			if rpath.Equal(m.cursor.Current().Name, winEntry.Name, s.sess.CaseSensitive) {
				if err := m.cursor.Advance(); err != nil && err != io.EOF {
					return nil, err
				}
			}
		}

		if err := winMember.cursor.Advance(); err != nil && err != io.EOF {
			return nil, err
		}

		if winEntry.Minus {
			continue
		}
		if winMember.kind != transcript.KindSpecial && s.ExcludeMatch(string(winEntry.Name)) {
			if s.sess.WarnOnExclude {
				rlog.Debugf(string(winEntry.Name), "excluded by pattern, skipping")
			}
			continue
		}
		if s.sess.PathPrefix != "" && !rpath.IsChild(rpath.Path(s.sess.PathPrefix), winEntry.Name, s.sess.CaseSensitive) {
			continue
		}

		return &Selection{Entry: winEntry, Kind: winMember.kind, Origin: winMember.name}, nil
	}
}
