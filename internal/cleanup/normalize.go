package cleanup

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reSpaceRun   = regexp.MustCompile(`[ \t]+`)
	reBlankLines = regexp.MustCompile(`\n{3,}`)
)

// Normalize produces the canonical plain-text form of a raw note body:
// NFKC unicode normalization, control characters stripped (newlines
// preserved), space runs collapsed, trailing space trimmed per line, and
// at most one blank line between paragraphs. Idempotent; empty input
// yields empty output.
func Normalize(s string) string {
	if s == "" {
		return s
	}

	s = norm.NFKC.String(s)
	s = reCRLF.ReplaceAllString(s, "\n")

	// Drop control characters; newlines survive, tabs become spaces.
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '\n':
			return r
		case r == '\t':
			return ' '
		case unicode.IsControl(r):
			return -1
		default:
			return r
		}
	}, s)

	s = reSpaceRun.ReplaceAllString(s, " ")

	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	s = strings.Join(lines, "\n")

	// Collapse after per-line trimming so whitespace-only lines count as blank.
	s = reBlankLines.ReplaceAllString(s, "\n\n")

	return strings.TrimSpace(s)
}
