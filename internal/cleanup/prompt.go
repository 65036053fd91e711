// Package cleanup implements the note transformation pipeline: normalize,
// build a cleanup prompt, call the model, validate and apply the result.
package cleanup

import (
	"errors"
	"strings"
)

// ErrNoFormatting is returned when every formatting option is disabled,
// leaving the request builder nothing to ask for.
var ErrNoFormatting = errors.New("no formatting options enabled")

// Options enumerates the recognized formatting instructions.
type Options struct {
	Headings bool
	Bullets  bool
	Tables   bool
}

// Any reports whether at least one formatting option is enabled.
func (o Options) Any() bool {
	return o.Headings || o.Bullets || o.Tables
}

const systemPrompt = `You are a note cleanup assistant. You receive the text of a personal note and return a cleaned-up version.

Rules:
1. Fix grammar, spelling and punctuation without changing the meaning
2. Keep all facts, names, numbers and dates exactly as written
3. Reply in markdown
4. Reply with the cleaned note only - no commentary, no preamble`

// SystemPrompt returns the system prompt for note cleanup.
func SystemPrompt() string {
	return systemPrompt
}

// BuildPrompt combines the instruction preamble with the canonical note
// text into a single prompt. Fails with ErrNoFormatting when every
// formatting option is false.
func BuildPrompt(text string, opts Options) (string, error) {
	if !opts.Any() {
		return "", ErrNoFormatting
	}

	var prompt strings.Builder
	prompt.WriteString("Clean up the following note. Fix grammar and rewrite it clearly.\n\n")
	prompt.WriteString("Formatting instructions:\n")
	if opts.Headings {
		prompt.WriteString("- Organize the content under short headings\n")
	}
	if opts.Bullets {
		prompt.WriteString("- Turn enumerations into bullet points\n")
	}
	if opts.Tables {
		prompt.WriteString("- Render tabular data as GitHub-style markdown tables\n")
	}

	prompt.WriteString("\n## Note\n")
	prompt.WriteString(text)
	prompt.WriteString("\n")

	return prompt.String(), nil
}
