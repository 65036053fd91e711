package notes

import (
	"context"
	"strings"
	"testing"
)

// fakeScript installs a canned osascript runner and records scripts.
func fakeScript(a *AppleScript, output string, err error) *[]string {
	var scripts []string
	a.runScript = func(ctx context.Context, script string) (string, error) {
		scripts = append(scripts, script)
		return output, err
	}
	return &scripts
}

func TestAppleScriptFolders_DedupesAndTrims(t *testing.T) {
	a := NewAppleScript()
	fakeScript(a, "Notes, Work, Notes,  Recipes", nil)

	got, err := a.Folders(context.Background())
	if err != nil {
		t.Fatalf("Folders: %v", err)
	}
	want := []string{"Notes", "Work", "Recipes"}
	if len(got) != len(want) {
		t.Fatalf("Folders = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Folders[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestAppleScriptList_ParsesRecords(t *testing.T) {
	a := NewAppleScript()
	out := "x-coredata://1/p1" + fieldSep + "Groceries" + fieldSep + "<div>milk<br>eggs</div>" + recordSep +
		"x-coredata://1/p2" + fieldSep + "Todo, maybe" + fieldSep + "<div>call dentist</div>" + recordSep
	fakeScript(a, out, nil)

	got, err := a.List(context.Background(), "Inbox")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 notes, got %d", len(got))
	}
	if got[0].ID != "x-coredata://1/p1" {
		t.Errorf("ID = %q", got[0].ID)
	}
	if got[1].Title != "Todo, maybe" {
		t.Errorf("Title = %q (commas in titles must survive)", got[1].Title)
	}
	// Body comes back as markdown, not HTML
	if strings.Contains(got[0].Body, "<div>") {
		t.Errorf("Body still contains HTML: %q", got[0].Body)
	}
	if !strings.Contains(got[0].Body, "milk") {
		t.Errorf("Body lost content: %q", got[0].Body)
	}
}

func TestAppleScriptList_SkipsMalformedRecords(t *testing.T) {
	a := NewAppleScript()
	out := "only-one-field" + recordSep +
		"id" + fieldSep + "Title" + fieldSep + "body" + recordSep
	fakeScript(a, out, nil)

	got, err := a.List(context.Background(), "Inbox")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 note, got %d", len(got))
	}
}

func TestAppleScriptUpdate_WrapsAndEscapes(t *testing.T) {
	a := NewAppleScript()
	scripts := fakeScript(a, "", nil)

	if err := a.Update(context.Background(), "x-coredata://1/p1", "say \"hi\""); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(*scripts) != 1 {
		t.Fatalf("expected 1 script, got %d", len(*scripts))
	}
	script := (*scripts)[0]
	if !strings.Contains(script, `set body of note id "x-coredata://1/p1"`) {
		t.Errorf("script missing note id clause: %q", script)
	}
	// Quotes in the body must be escaped for AppleScript, and the body is
	// HTML-escaped inside the pre wrapper.
	if !strings.Contains(script, "pre style") {
		t.Errorf("script missing HTML wrapper: %q", script)
	}
	if strings.Contains(script, `say "hi"`) {
		t.Errorf("unescaped quotes leaked into script: %q", script)
	}
}

func TestEscape(t *testing.T) {
	got := escape(`back\slash "quote"`)
	want := `back\\slash \"quote\"`
	if got != want {
		t.Errorf("escape = %q, want %q", got, want)
	}
}
