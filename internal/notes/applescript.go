package notes

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"

	"github.com/ryanfardeen/notecleaner/internal/logger"
	"github.com/ryanfardeen/notecleaner/internal/render"
)

// Record separators used by the list script. Apple Notes titles and bodies
// can contain commas and newlines, so the script joins fields with unit
// separators and records with record separators.
const (
	fieldSep  = "\x1f"
	recordSep = "\x1e"
)

// AppleScript reads and writes Apple Notes by shelling out to osascript.
// Note bodies are stored as HTML by Notes.app; this adapter converts them
// to markdown on read and wraps plain text back into HTML on write.
type AppleScript struct {
	converter *md.Converter

	// runScript is swappable for tests.
	runScript func(ctx context.Context, script string) (string, error)
}

// NewAppleScript creates an Apple Notes source.
func NewAppleScript() *AppleScript {
	return &AppleScript{
		converter: md.NewConverter("", true, nil),
		runScript: runOsascript,
	}
}

func runOsascript(ctx context.Context, script string) (string, error) {
	cmd := exec.CommandContext(ctx, "osascript", "-e", script)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("osascript: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return strings.TrimRight(string(out), "\n"), nil
}

// escape quotes a string for embedding in an AppleScript string literal.
func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}

// Folders lists the Apple Notes folder names.
func (a *AppleScript) Folders(ctx context.Context) ([]string, error) {
	out, err := a.runScript(ctx, `tell application "Notes" to get name of every folder`)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	// osascript joins list output with ", "; folder names repeat across
	// accounts, so dedupe while preserving order.
	seen := make(map[string]bool)
	var folders []string
	for _, name := range strings.Split(out, ", ") {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		folders = append(folders, name)
	}
	return folders, nil
}

// List returns every note in folder with its body converted to markdown.
func (a *AppleScript) List(ctx context.Context, folder string) ([]Note, error) {
	script := fmt.Sprintf(`tell application "Notes"
  set us to character id 31
  set rs to character id 30
  set out to ""
  repeat with n in notes of folder "%s"
    set out to out & (id of n) & us & (name of n) & us & (body of n) & rs
  end repeat
  return out
end tell`, escape(folder))

	out, err := a.runScript(ctx, script)
	if err != nil {
		if strings.Contains(err.Error(), "Can’t get folder") || strings.Contains(err.Error(), "Can't get folder") {
			return nil, fmt.Errorf("%w: %s", ErrFolderNotFound, folder)
		}
		return nil, fmt.Errorf("list notes of %q: %w", folder, err)
	}

	var result []Note
	for _, record := range strings.Split(out, recordSep) {
		if strings.TrimSpace(record) == "" {
			continue
		}
		fields := strings.SplitN(record, fieldSep, 3)
		if len(fields) != 3 {
			logger.Warn("skipping malformed note record", "folder", folder, "fields", len(fields))
			continue
		}
		body, err := a.converter.ConvertString(fields[2])
		if err != nil {
			logger.Warn("failed to convert note body", "note", fields[1], "error", err)
			body = fields[2]
		}
		result = append(result, Note{
			ID:     strings.TrimSpace(fields[0]),
			Folder: folder,
			Title:  fields[1],
			Body:   body,
		})
	}
	return result, nil
}

// Update overwrites the body of the note with the given ID. The plain text
// is wrapped in HTML so Notes.app preserves line breaks.
func (a *AppleScript) Update(ctx context.Context, id string, text string) error {
	html := render.WrapHTML(text)
	script := fmt.Sprintf(`tell application "Notes" to set body of note id "%s" to "%s"`,
		escape(id), escape(html))
	if _, err := a.runScript(ctx, script); err != nil {
		return fmt.Errorf("update note %s: %w", id, err)
	}
	return nil
}

// Create adds a new note with the given title to folder.
func (a *AppleScript) Create(ctx context.Context, folder, title, text string) error {
	html := render.WrapHTML(text)
	script := fmt.Sprintf(`tell application "Notes"
  tell folder "%s"
    make new note with properties {name:"%s", body:"%s"}
  end tell
end tell`, escape(folder), escape(title), escape(html))
	if _, err := a.runScript(ctx, script); err != nil {
		return fmt.Errorf("create note %q in %q: %w", title, folder, err)
	}
	return nil
}

// CreateFolder creates the folder if it does not already exist.
func (a *AppleScript) CreateFolder(ctx context.Context, name string) error {
	script := fmt.Sprintf(`tell application "Notes"
  if not (exists folder "%s") then
    make new folder with properties {name:"%s"}
  end if
end tell`, escape(name), escape(name))
	if _, err := a.runScript(ctx, script); err != nil {
		return fmt.Errorf("create folder %q: %w", name, err)
	}
	return nil
}
