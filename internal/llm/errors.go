package llm

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/openai/openai-go"
)

// Sentinel errors for provider call failures. Per-note processing records
// these and continues; none of them aborts the run.
var (
	ErrNetwork       = errors.New("network error")
	ErrAuth          = errors.New("authentication failed")
	ErrRateLimit     = errors.New("rate limited")
	ErrEmptyResponse = errors.New("empty response")
)

// Classify maps an error from a Provider.Complete call onto the sentinel
// taxonomy. Already-classified errors pass through unchanged. Anything that
// is not an HTTP-level auth or rate-limit failure is treated as a network
// error, including timeouts.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	for _, sentinel := range []error{ErrNetwork, ErrAuth, ErrRateLimit, ErrEmptyResponse} {
		if errors.Is(err, sentinel) {
			return err
		}
	}

	if status, ok := statusCode(err); ok {
		switch {
		case status == 401 || status == 403:
			return fmt.Errorf("%w: %v", ErrAuth, err)
		case status == 429:
			return fmt.Errorf("%w: %v", ErrRateLimit, err)
		default:
			return fmt.Errorf("%w: %v", ErrNetwork, err)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: request timed out", ErrNetwork)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	return fmt.Errorf("%w: %v", ErrNetwork, err)
}

// statusCode extracts the HTTP status from SDK API errors.
func statusCode(err error) (int, bool) {
	var anthropicErr *anthropic.Error
	if errors.As(err, &anthropicErr) {
		return anthropicErr.StatusCode, true
	}
	var openaiErr *openai.Error
	if errors.As(err, &openaiErr) {
		return openaiErr.StatusCode, true
	}
	return 0, false
}
