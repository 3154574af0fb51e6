package upload

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

const (
	inputName  = "input.pdf"
	outputName = "output.xlsx"
)

// Workspace is a private directory holding one conversion's input and
// output.
type Workspace struct {
	ID  string
	Dir string
}

// NewWorkspace creates a uniquely named directory under root.
func NewWorkspace(root string) (*Workspace, error) {
	if err := os.MkdirAll(root, 0o700); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	id := uuid.NewString()
	dir := filepath.Join(root, id)
	if err := os.Mkdir(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	return &Workspace{ID: id, Dir: dir}, nil
}

// InputPath is where the uploaded document is stored.
func (w *Workspace) InputPath() string { return filepath.Join(w.Dir, inputName) }

// OutputPath is where the spreadsheet is written.
func (w *Workspace) OutputPath() string { return filepath.Join(w.Dir, outputName) }

// SaveInput writes the uploaded bytes to InputPath.
func (w *Workspace) SaveInput(data []byte) error {
	if err := os.WriteFile(w.InputPath(), data, 0o600); err != nil {
		return fmt.Errorf("save upload: %w", err)
	}
	return nil
}

// Remove deletes the workspace and everything in it. Removing twice is
// not an error.
func (w *Workspace) Remove() error {
	if err := os.RemoveAll(w.Dir); err != nil {
		return fmt.Errorf("remove workspace %s: %w", w.ID, err)
	}
	return nil
}

// PurgeWorkspaces removes workspaces left under root by a previous process.
// Only directories named like a workspace are touched.
func PurgeWorkspaces(root string) (int, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read storage dir: %w", err)
	}
	removed := 0
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := uuid.Parse(e.Name()); err != nil {
			continue
		}
		if err := os.RemoveAll(filepath.Join(root, e.Name())); err != nil {
			return removed, fmt.Errorf("remove stale workspace %s: %w", e.Name(), err)
		}
		removed++
	}
	return removed, nil
}
