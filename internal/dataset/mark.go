package dataset

import (
	"strconv"
	"strings"
)

// MarkKind identifies the annotation state of a row.
type MarkKind int

const (
	MarkNone     MarkKind = iota // row is unmarked
	MarkFlagged                  // flagged with an "x" (persisted as "yes")
	MarkNumbered                 // sequential number assigned in number mode
	MarkCustom                   // free-form tag carried over from the source file
)

// Mark is the annotation state of a row. The zero value is unmarked.
//
// The source CSV encodes marks as raw strings: empty or "nan" means
// unmarked, "yes" is the flag sentinel, an all-digit string is a number,
// and anything else is a custom tag. Mark keeps that encoding out of the
// rest of the program; ParseMark and Legacy translate at the file boundary.
type Mark struct {
	Kind   MarkKind
	Number int
	Text   string
}

// Unmarked returns the zero mark.
func Unmarked() Mark {
	return Mark{}
}

// Flagged returns an "x" flag mark.
func Flagged() Mark {
	return Mark{Kind: MarkFlagged}
}

// Numbered returns a sequential number mark.
func Numbered(n int) Mark {
	return Mark{Kind: MarkNumbered, Number: n}
}

// Custom returns a free-form tag mark.
func Custom(text string) Mark {
	return Mark{Kind: MarkCustom, Text: text}
}

// ParseMark decodes the legacy string encoding of a mark.
func ParseMark(s string) Mark {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)
	if s == "" || lower == "nan" {
		return Mark{}
	}
	if lower == "yes" {
		return Mark{Kind: MarkFlagged}
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 {
		return Mark{Kind: MarkNumbered, Number: n}
	}
	return Mark{Kind: MarkCustom, Text: s}
}

// Legacy returns the string form persisted to CSV.
// The flag sentinel is "yes", not the "x" display glyph.
func (m Mark) Legacy() string {
	switch m.Kind {
	case MarkFlagged:
		return "yes"
	case MarkNumbered:
		return strconv.Itoa(m.Number)
	case MarkCustom:
		return m.Text
	default:
		return ""
	}
}

// Display returns the string form shown on screen. Flags display as "x".
func (m Mark) Display() string {
	if m.Kind == MarkFlagged {
		return "x"
	}
	return m.Legacy()
}

// IsSet reports whether the row carries any mark.
func (m Mark) IsSet() bool {
	return m.Kind != MarkNone
}
