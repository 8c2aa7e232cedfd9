package dataset

import (
	"testing"
)

func TestParseMark(t *testing.T) {
	cases := []struct {
		in      string
		kind    MarkKind
		display string
		legacy  string
	}{
		{"", MarkNone, "", ""},
		{"  ", MarkNone, "", ""},
		{"nan", MarkNone, "", ""},
		{"NaN", MarkNone, "", ""},
		{"yes", MarkFlagged, "x", "yes"},
		{"YES", MarkFlagged, "x", "yes"},
		{"1", MarkNumbered, "1", "1"},
		{"42", MarkNumbered, "42", "42"},
		{"hold", MarkCustom, "hold", "hold"},
		{"-3", MarkCustom, "-3", "-3"},
	}

	for _, c := range cases {
		m := ParseMark(c.in)
		if m.Kind != c.kind {
			t.Errorf("ParseMark(%q): expected kind %v, got %v", c.in, c.kind, m.Kind)
		}
		if got := m.Display(); got != c.display {
			t.Errorf("ParseMark(%q).Display(): expected %q, got %q", c.in, c.display, got)
		}
		if got := m.Legacy(); got != c.legacy {
			t.Errorf("ParseMark(%q).Legacy(): expected %q, got %q", c.in, c.legacy, got)
		}
	}
}

func TestFlagSentinelRoundTrip(t *testing.T) {
	// The display glyph "x" and the persisted sentinel "yes" are distinct:
	// the file never contains "x", the screen never shows "yes".
	m := Flagged()
	if m.Legacy() != "yes" || m.Display() != "x" {
		t.Fatalf("flag codec broken: legacy=%q display=%q", m.Legacy(), m.Display())
	}
	if got := ParseMark(m.Legacy()); got.Kind != MarkFlagged {
		t.Errorf("yes must parse back to a flag, got %v", got.Kind)
	}
}
