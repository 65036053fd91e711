package notes

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Vault implements Source over a directory of markdown files. Each
// top-level subdirectory is a folder and each .md file inside it is a
// note; the note ID is its path relative to the vault root.
//
// It exists for non-macOS use and for exercising the pipeline without
// Notes.app.
type Vault struct {
	root string // absolute path to the vault directory
}

// NewVault creates a vault source rooted at dir. The directory must exist.
func NewVault(dir string) (*Vault, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("vault: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("vault: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("vault: root is not a directory: %s", abs)
	}
	return &Vault{root: abs}, nil
}

// safePath resolves a relative path against the vault root and rejects
// any result that escapes it (directory traversal).
func (v *Vault) safePath(rel string) (string, error) {
	cleaned := filepath.Clean(rel)
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("vault: absolute paths not allowed: %s", rel)
	}
	joined := filepath.Join(v.root, cleaned)
	abs, err := filepath.Abs(joined)
	if err != nil {
		return "", fmt.Errorf("vault: resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, v.root+string(os.PathSeparator)) && abs != v.root {
		return "", fmt.Errorf("vault: path escapes vault root: %s", rel)
	}
	return abs, nil
}

// Folders lists the vault's top-level directories.
func (v *Vault) Folders(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(v.root)
	if err != nil {
		return nil, fmt.Errorf("vault: list folders: %w", err)
	}
	var folders []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			folders = append(folders, e.Name())
		}
	}
	sort.Strings(folders)
	return folders, nil
}

// List returns every .md note in folder.
func (v *Vault) List(ctx context.Context, folder string) ([]Note, error) {
	base, err := v.safePath(folder)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(base)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFolderNotFound, folder)
		}
		return nil, fmt.Errorf("vault: list %q: %w", folder, err)
	}

	var result []Note
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		rel := filepath.Join(folder, e.Name())
		abs, err := v.safePath(rel)
		if err != nil {
			return nil, err
		}
		data, err := os.ReadFile(abs)
		if err != nil {
			return nil, fmt.Errorf("vault: read %q: %w", rel, err)
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("vault: stat %q: %w", rel, err)
		}
		result = append(result, Note{
			ID:        rel,
			Folder:    folder,
			Title:     strings.TrimSuffix(e.Name(), ".md"),
			Body:      string(data),
			UpdatedAt: info.ModTime(),
		})
	}
	return result, nil
}

// Update atomically overwrites the note at the given ID (relative path).
func (v *Vault) Update(ctx context.Context, id string, text string) error {
	abs, err := v.safePath(id)
	if err != nil {
		return err
	}
	if _, err := os.Stat(abs); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return fmt.Errorf("vault: stat %q: %w", id, err)
	}
	return atomicWrite(abs, []byte(text))
}

// Create writes a new note named after the title into folder.
func (v *Vault) Create(ctx context.Context, folder, title, text string) error {
	rel := filepath.Join(folder, title+".md")
	abs, err := v.safePath(rel)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("vault: create folder for %q: %w", rel, err)
	}
	return atomicWrite(abs, []byte(text))
}

// CreateFolder creates a top-level directory if missing.
func (v *Vault) CreateFolder(ctx context.Context, name string) error {
	abs, err := v.safePath(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return fmt.Errorf("vault: create folder %q: %w", name, err)
	}
	return nil
}

// atomicWrite writes via a temp file and rename so readers never observe
// a partially written note.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".notecleaner-*")
	if err != nil {
		return fmt.Errorf("vault: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("vault: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("vault: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("vault: rename temp file: %w", err)
	}
	return nil
}
