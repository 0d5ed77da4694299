package stack

import (
	"io"
	"strings"
	"testing"

	"github.com/radmind-go/transcriptd/rpath"
	"github.com/radmind-go/transcriptd/session"
	"github.com/radmind-go/transcriptd/transcript"
)

func newMember(t *testing.T, name, data string, kind transcript.Kind, sess *session.Context) *member {
	t.Helper()
	c, err := transcript.OpenReader(strings.NewReader(data), name, kind, sess)
	if err != nil {
		t.Fatalf("OpenReader(%s): %v", name, err)
	}
	return &member{name: name, kind: kind, cursor: c}
}

func newTestStack(t *testing.T, sess *session.Context, members, special []*member, exclude []string) *Stack {
	t.Helper()
	st := &Stack{
		sess: sess,
		members: members,
		special: special,
		null: &member{name: "(null)", kind: transcript.KindNull, cursor: transcript.NewNull(sess)},
	}
	for _, pat := range exclude {
		w, err := rpath.Compile(pat, sess.CaseSensitive)
		if err != nil {
			t.Fatalf("compile %q: %v", pat, err)
		}
		st.exclude = append(st.exclude, &excludePattern{raw: pat, w: w})
	}
	return st
}

// TestSelectPrecedence verifies that when two transcripts disagree on
// the same path, the higher-precedence (earlier-pushed) transcript's
// entry wins and the lower-precedence duplicate is silently masked
// higher-precedence member wins ties.
func TestSelectPrecedence(t *testing.T) {
	sess := session.New()
	hi := newMember(t, "hi", "f /a 0644 0 0 1 1 -\n", transcript.KindPositive, sess)
	lo := newMember(t, "lo", "f /a 0755 9 9 1 1 -\n", transcript.KindPositive, sess)

	st := newTestStack(t, sess, []*member{hi, lo}, nil, nil)

	sel, err := st.Select()
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if sel.Origin != "hi" {
		t.Fatalf("expected higher-precedence member to win, got %q", sel.Origin)
	}
	if sel.Entry.Mode != 0644 {
		t.Fatalf("expected hi's mode 0644, got %o", sel.Entry.Mode)
	}

	if _, err := st.Select(); err != io.EOF {
		t.Fatalf("expected EOF after the masked duplicate is consumed, got %v", err)
	}
}

// TestSelectExcludeOverride verifies that an exclude pattern hides a
// match from a regular transcript but never from the special overlay
// exclusion is applied after precedence resolution.
func TestSelectExcludeOverride(t *testing.T) {
	sess := session.New()
	reg := newMember(t, "reg", "f /secret 0644 0 0 1 1 -\nf /visible 0644 0 0 1 1 -\n", transcript.KindPositive, sess)
	sp := newMember(t, "sp", "f /secret 0600 0 0 1 1 -\n", transcript.KindSpecial, sess)

	st := newTestStack(t, sess, []*member{reg}, []*member{sp}, []string{"/secret"})

	sel, err := st.Select()
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if sel.Entry.Name != "/secret" || sel.Kind != transcript.KindSpecial {
		t.Fatalf("expected special entry for /secret to survive exclusion, got %+v kind=%v", sel.Entry, sel.Kind)
	}

	sel2, err := st.Select()
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if sel2.Entry.Name != "/visible" {
		t.Fatalf("expected /visible next, got %+v", sel2.Entry)
	}

	if _, err := st.Select(); err != io.EOF {
		t.Fatalf("expected EOF, got %v", err)
	}
}

// TestSelectMinusLine verifies a minus-flagged entry is consumed and
// skipped rather than returned.
func TestSelectMinusLine(t *testing.T) {
	sess := session.New()
	m := newMember(t, "m", "- f /gone 0644 0 0 1 1 -\nf /keep 0644 0 0 1 1 -\n", transcript.KindPositive, sess)
	st := newTestStack(t, sess, []*member{m}, nil, nil)

	sel, err := st.Select()
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if sel.Entry.Name != "/keep" {
		t.Fatalf("expected minus line to be skipped, got %+v", sel.Entry)
	}
}
