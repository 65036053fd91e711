package cleanup

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ryanfardeen/notecleaner/internal/llm"
	"github.com/ryanfardeen/notecleaner/internal/logger"
	"github.com/ryanfardeen/notecleaner/internal/notes"
	"github.com/ryanfardeen/notecleaner/internal/render"
)

// Status is the per-note outcome.
type Status string

const (
	StatusCleaned Status = "cleaned"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// NoteResult records the outcome for a single note.
type NoteResult struct {
	ID     string `json:"id" yaml:"id"`
	Title  string `json:"title" yaml:"title"`
	Status Status `json:"status" yaml:"status"`
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Report aggregates a full run.
type Report struct {
	Folder   string       `json:"folder" yaml:"folder"`
	Provider string       `json:"provider" yaml:"provider"`
	Cleaned  int          `json:"cleaned" yaml:"cleaned"`
	Skipped  int          `json:"skipped" yaml:"skipped"`
	Failed   int          `json:"failed" yaml:"failed"`
	Results  []NoteResult `json:"results" yaml:"results"`
}

// HasFailures reports whether any note failed during the run.
func (r *Report) HasFailures() bool {
	return r.Failed > 0
}

// Config holds the settings for one cleanup run.
type Config struct {
	Folder      string `validate:"required"`
	TitleFilter string // substring match on note titles, empty selects all
	Options     Options

	// DestFolder switches to copy mode: cleaned notes are written as new
	// "Enhanced - <title>" notes there instead of updating in place.
	DestFolder string

	// RenderPlain converts the model's markdown reply into readable plain
	// text (bullets, underlined headings, pipe tables) before writing.
	RenderPlain bool

	DryRun      bool
	MaxTokens   int           `validate:"gte=0"`
	Temperature float64       `validate:"gte=0,lte=2"`
	Timeout     time.Duration `validate:"gte=0"`
}

var validate = validator.New()

// Runner drives the sequential note cleanup pipeline.
type Runner struct {
	source   notes.Source
	provider llm.Provider
	cfg      Config
}

// NewRunner validates the configuration and builds a runner.
func NewRunner(source notes.Source, provider llm.Provider, cfg Config) (*Runner, error) {
	if source == nil {
		return nil, fmt.Errorf("cleanup: source is required")
	}
	if provider == nil {
		return nil, fmt.Errorf("cleanup: provider is required")
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("cleanup: invalid config: %w", err)
	}
	return &Runner{source: source, provider: provider, cfg: cfg}, nil
}

// Run processes each selected note in sequence: normalize, build the
// prompt, call the provider, validate and write back. Per-note failures
// are recorded and the run continues with the next note.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		Folder:   r.cfg.Folder,
		Provider: r.provider.Name(),
	}

	selected, err := r.source.List(ctx, r.cfg.Folder)
	if err != nil {
		return nil, fmt.Errorf("cleanup: list notes: %w", err)
	}

	if r.cfg.DestFolder != "" && !r.cfg.DryRun {
		if err := r.source.CreateFolder(ctx, r.cfg.DestFolder); err != nil {
			return nil, fmt.Errorf("cleanup: prepare destination folder: %w", err)
		}
	}

	for _, note := range selected {
		if r.cfg.TitleFilter != "" && !strings.Contains(strings.ToLower(note.Title), strings.ToLower(r.cfg.TitleFilter)) {
			continue
		}

		result := r.processNote(ctx, note)
		report.Results = append(report.Results, result)

		switch result.Status {
		case StatusCleaned:
			report.Cleaned++
			logger.Info("note cleaned", "title", note.Title)
		case StatusSkipped:
			report.Skipped++
			logger.Info("note skipped", "title", note.Title, "reason", result.Reason)
		case StatusFailed:
			report.Failed++
			logger.Error("note failed", "title", note.Title, "reason", result.Reason)
		}
	}

	return report, nil
}

// processNote runs the full pipeline for one note. The note is a borrowed
// copy; the source is only touched again for the final write.
func (r *Runner) processNote(ctx context.Context, note notes.Note) NoteResult {
	result := NoteResult{ID: note.ID, Title: note.Title}

	canonical := Normalize(note.Body)
	if canonical == "" {
		result.Status = StatusSkipped
		result.Reason = "empty note"
		return result
	}

	prompt, err := BuildPrompt(canonical, r.cfg.Options)
	if err != nil {
		result.Status = StatusFailed
		result.Reason = err.Error()
		return result
	}

	callCtx := ctx
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	logger.Debug("calling provider",
		"provider", r.provider.Name(),
		"note", note.Title,
		"prompt_size", len(prompt))

	resp, err := r.provider.Complete(callCtx, llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: SystemPrompt()},
			{Role: llm.RoleUser, Content: prompt},
		},
		MaxTokens:   r.cfg.MaxTokens,
		Temperature: r.cfg.Temperature,
	})
	if err != nil {
		result.Status = StatusFailed
		result.Reason = llm.Classify(err).Error()
		return result
	}

	logger.Debug("provider responded",
		"note", note.Title,
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens)

	cleaned, err := validateResult(resp.Content)
	if err != nil {
		result.Status = StatusFailed
		result.Reason = err.Error()
		return result
	}

	if r.cfg.RenderPlain {
		cleaned, err = render.ToPlainText(cleaned)
		if err != nil {
			result.Status = StatusFailed
			result.Reason = err.Error()
			return result
		}
	}

	if r.cfg.DryRun {
		result.Status = StatusCleaned
		result.Reason = "dry run, not written"
		return result
	}

	// Exactly one write per note.
	if r.cfg.DestFolder != "" {
		err = r.source.Create(ctx, r.cfg.DestFolder, "Enhanced - "+note.Title, cleaned)
	} else {
		err = r.source.Update(ctx, note.ID, cleaned)
	}
	if err != nil {
		result.Status = StatusFailed
		result.Reason = err.Error()
		return result
	}

	result.Status = StatusCleaned
	return result
}
