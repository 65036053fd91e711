package cleanup

import (
	"fmt"
	"strings"

	"github.com/ryanfardeen/notecleaner/internal/llm"
)

// refusalPrefixes are response openings that signal the model declined or
// errored instead of cleaning the note. Matched case-insensitively against
// the start of the reply.
var refusalPrefixes = []string{
	"i'm sorry",
	"i am sorry",
	"i can't",
	"i cannot",
	"as an ai",
	"error:",
	"sorry,",
}

// validateResult checks that the model's reply is usable cleaned text:
// non-empty after trimming and not an echo of a refusal or error message.
// It returns the trimmed text on success.
func validateResult(content string) (string, error) {
	cleaned := strings.TrimSpace(content)
	if cleaned == "" {
		return "", llm.ErrEmptyResponse
	}

	lower := strings.ToLower(cleaned)
	for _, prefix := range refusalPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return "", fmt.Errorf("%w: model declined: %s", llm.ErrEmptyResponse, truncate(cleaned, 120))
		}
	}

	return cleaned, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
