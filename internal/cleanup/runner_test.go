package cleanup

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/ryanfardeen/notecleaner/internal/llm"
	"github.com/ryanfardeen/notecleaner/internal/notes"
)

// fakeSource is an in-memory notes.Source.
type fakeSource struct {
	notes   []notes.Note
	folders map[string]bool
	updates map[string]string // id -> written text
	created map[string]string // "folder/title" -> written text
}

func newFakeSource(ns ...notes.Note) *fakeSource {
	return &fakeSource{
		notes:   ns,
		folders: map[string]bool{"Inbox": true},
		updates: map[string]string{},
		created: map[string]string{},
	}
}

func (f *fakeSource) Folders(ctx context.Context) ([]string, error) {
	var out []string
	for name := range f.folders {
		out = append(out, name)
	}
	return out, nil
}

func (f *fakeSource) List(ctx context.Context, folder string) ([]notes.Note, error) {
	if !f.folders[folder] {
		return nil, fmt.Errorf("%w: %s", notes.ErrFolderNotFound, folder)
	}
	var out []notes.Note
	for _, n := range f.notes {
		if n.Folder == folder {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeSource) Update(ctx context.Context, id, text string) error {
	for i, n := range f.notes {
		if n.ID == id {
			f.notes[i].Body = text
			f.updates[id] = text
			return nil
		}
	}
	return fmt.Errorf("%w: %s", notes.ErrNotFound, id)
}

func (f *fakeSource) Create(ctx context.Context, folder, title, text string) error {
	f.created[folder+"/"+title] = text
	return nil
}

func (f *fakeSource) CreateFolder(ctx context.Context, name string) error {
	f.folders[name] = true
	return nil
}

func (f *fakeSource) body(id string) string {
	for _, n := range f.notes {
		if n.ID == id {
			return n.Body
		}
	}
	return ""
}

// fakeProvider returns scripted responses or errors, one per call.
type fakeProvider struct {
	replies []string
	errs    []error
	calls   int
	prompts []string
}

func (p *fakeProvider) Complete(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
	i := p.calls
	p.calls++
	for _, m := range req.Messages {
		if m.Role == llm.RoleUser {
			p.prompts = append(p.prompts, m.Content)
		}
	}
	if i < len(p.errs) && p.errs[i] != nil {
		return llm.CompletionResponse{}, p.errs[i]
	}
	reply := ""
	if i < len(p.replies) {
		reply = p.replies[i]
	}
	return llm.CompletionResponse{Content: reply, FinishReason: "stop"}, nil
}

func (p *fakeProvider) Name() string { return "fake" }

func note(id, title, body string) notes.Note {
	return notes.Note{ID: id, Folder: "Inbox", Title: title, Body: body}
}

func mustRunner(t *testing.T, src notes.Source, p llm.Provider, cfg Config) *Runner {
	t.Helper()
	r, err := NewRunner(src, p, cfg)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	return r
}

func TestRun_SuccessWritesCleanedTextExactly(t *testing.T) {
	src := newFakeSource(note("n1", "Groceries", "  hello   world  \n\n"))
	p := &fakeProvider{replies: []string{"- hello\n- world"}}

	r := mustRunner(t, src, p, Config{Folder: "Inbox", Options: Options{Bullets: true}})
	report, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.Cleaned != 1 || report.Failed != 0 {
		t.Fatalf("report = %+v", report)
	}
	if got := src.body("n1"); got != "- hello\n- world" {
		t.Errorf("body = %q, want the cleaned text exactly", got)
	}
	// The prompt carries the canonical text, not the raw body.
	if len(p.prompts) != 1 || !strings.Contains(p.prompts[0], "hello world") {
		t.Errorf("prompt = %q", p.prompts)
	}
	if strings.Contains(p.prompts[0], "hello   world") {
		t.Errorf("prompt contains unnormalized text: %q", p.prompts[0])
	}
}

func TestRun_EmptyResponseLeavesNoteUnchanged(t *testing.T) {
	src := newFakeSource(note("n1", "Draft", "original body"))
	p := &fakeProvider{errs: []error{llm.ErrEmptyResponse}}

	r := mustRunner(t, src, p, Config{Folder: "Inbox", Options: Options{Bullets: true}})
	report, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.Failed != 1 {
		t.Fatalf("report = %+v", report)
	}
	if got := src.body("n1"); got != "original body" {
		t.Errorf("failed result must not mutate the note, body = %q", got)
	}
	if len(src.updates) != 0 {
		t.Errorf("no write expected, got %v", src.updates)
	}
}

func TestRun_RateLimitOnSecondNoteContinues(t *testing.T) {
	src := newFakeSource(
		note("n1", "One", "first note"),
		note("n2", "Two", "second note"),
		note("n3", "Three", "third note"),
	)
	p := &fakeProvider{
		replies: []string{"clean one", "", "clean three"},
		errs:    []error{nil, fmt.Errorf("%w: 429", llm.ErrRateLimit), nil},
	}

	r := mustRunner(t, src, p, Config{Folder: "Inbox", Options: Options{Bullets: true}})
	report, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.Cleaned != 2 || report.Failed != 1 {
		t.Fatalf("report = %+v", report)
	}
	if !report.HasFailures() {
		t.Error("HasFailures() should be true")
	}
	if src.body("n1") != "clean one" || src.body("n3") != "clean three" {
		t.Error("notes 1 and 3 should still be written")
	}
	if src.body("n2") != "second note" {
		t.Errorf("note 2 must be unchanged, got %q", src.body("n2"))
	}

	var failed *NoteResult
	for i := range report.Results {
		if report.Results[i].Status == StatusFailed {
			failed = &report.Results[i]
		}
	}
	if failed == nil || failed.ID != "n2" {
		t.Fatalf("report should list note 2 as failed: %+v", report.Results)
	}
	if !strings.Contains(failed.Reason, "rate limited") {
		t.Errorf("failure reason = %q", failed.Reason)
	}
}

func TestRun_NoFormattingOptionsNoAICall(t *testing.T) {
	src := newFakeSource(note("n1", "One", "text"))
	p := &fakeProvider{}

	r := mustRunner(t, src, p, Config{Folder: "Inbox"})
	report, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if p.calls != 0 {
		t.Errorf("provider called %d times, want 0", p.calls)
	}
	if report.Failed != 1 || !strings.Contains(report.Results[0].Reason, "no formatting options") {
		t.Errorf("report = %+v", report)
	}
}

func TestRun_EmptyBodySkipped(t *testing.T) {
	src := newFakeSource(note("n1", "Blank", "   \n\t \n"))
	p := &fakeProvider{}

	r := mustRunner(t, src, p, Config{Folder: "Inbox", Options: Options{Bullets: true}})
	report, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.Skipped != 1 || report.Failed != 0 {
		t.Fatalf("report = %+v", report)
	}
	if p.calls != 0 {
		t.Errorf("empty note should short-circuit before the provider, calls = %d", p.calls)
	}
}

func TestRun_RefusalNotWritten(t *testing.T) {
	src := newFakeSource(note("n1", "One", "some text"))
	p := &fakeProvider{replies: []string{"I'm sorry, I can't clean this note."}}

	r := mustRunner(t, src, p, Config{Folder: "Inbox", Options: Options{Bullets: true}})
	report, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.Failed != 1 {
		t.Fatalf("report = %+v", report)
	}
	if src.body("n1") != "some text" {
		t.Error("refusal must not overwrite the note")
	}
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	src := newFakeSource(note("n1", "One", "text"))
	p := &fakeProvider{replies: []string{"cleaned"}}

	r := mustRunner(t, src, p, Config{Folder: "Inbox", Options: Options{Bullets: true}, DryRun: true})
	report, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.Cleaned != 1 {
		t.Fatalf("report = %+v", report)
	}
	if len(src.updates) != 0 || len(src.created) != 0 {
		t.Error("dry run must not write")
	}
	if src.body("n1") != "text" {
		t.Error("dry run must not mutate the note")
	}
}

func TestRun_DestFolderCopiesEnhancedNote(t *testing.T) {
	src := newFakeSource(note("n1", "Recipes", "text"))
	p := &fakeProvider{replies: []string{"cleaned recipes"}}

	r := mustRunner(t, src, p, Config{
		Folder:     "Inbox",
		Options:    Options{Bullets: true},
		DestFolder: "Enhanced",
	})
	report, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.Cleaned != 1 {
		t.Fatalf("report = %+v", report)
	}
	if !src.folders["Enhanced"] {
		t.Error("destination folder should be created")
	}
	if got := src.created["Enhanced/Enhanced - Recipes"]; got != "cleaned recipes" {
		t.Errorf("created note = %q", got)
	}
	if src.body("n1") != "text" {
		t.Error("copy mode must not touch the original note")
	}
}

func TestRun_RenderPlainConvertsMarkdown(t *testing.T) {
	src := newFakeSource(note("n1", "One", "hello world"))
	p := &fakeProvider{replies: []string{"- hello\n- world"}}

	r := mustRunner(t, src, p, Config{
		Folder:      "Inbox",
		Options:     Options{Bullets: true},
		RenderPlain: true,
	})
	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	got := src.body("n1")
	if !strings.Contains(got, "• hello") || !strings.Contains(got, "• world") {
		t.Errorf("expected rendered bullets, got %q", got)
	}
}

func TestRun_TitleFilter(t *testing.T) {
	src := newFakeSource(
		note("n1", "Groceries", "a"),
		note("n2", "Work log", "b"),
	)
	p := &fakeProvider{replies: []string{"cleaned"}}

	r := mustRunner(t, src, p, Config{
		Folder:      "Inbox",
		TitleFilter: "grocer",
		Options:     Options{Bullets: true},
	})
	report, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(report.Results) != 1 || report.Results[0].ID != "n1" {
		t.Errorf("expected only the matching note, got %+v", report.Results)
	}
}

func TestNewRunner_Validation(t *testing.T) {
	src := newFakeSource()
	p := &fakeProvider{}

	if _, err := NewRunner(nil, p, Config{Folder: "Inbox"}); err == nil {
		t.Error("expected error for nil source")
	}
	if _, err := NewRunner(src, nil, Config{Folder: "Inbox"}); err == nil {
		t.Error("expected error for nil provider")
	}
	if _, err := NewRunner(src, p, Config{}); err == nil {
		t.Error("expected error for missing folder")
	}
	if _, err := NewRunner(src, p, Config{Folder: "Inbox", Temperature: 9}); err == nil {
		t.Error("expected error for out-of-range temperature")
	}
}

func TestRun_MissingFolderFails(t *testing.T) {
	src := newFakeSource()
	p := &fakeProvider{}

	r := mustRunner(t, src, p, Config{Folder: "Nope", Options: Options{Bullets: true}})
	if _, err := r.Run(context.Background()); err == nil {
		t.Error("expected error for missing folder")
	}
}
