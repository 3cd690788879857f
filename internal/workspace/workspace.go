package workspace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Workspace is the per-run artifact directory. Every stage persists its
// output here before the next stage begins, so a failed run leaves
// forensic state instead of discarding work.
type Workspace struct {
	root  string
	runID string
	dir   string
}

// New creates the run directory and its stage subdirectories.
func New(root, runID string) (*Workspace, error) {
	if runID == "" {
		return nil, fmt.Errorf("run id is empty")
	}

	dir := filepath.Join(root, runID)
	for _, sub := range []string{"audio", "visuals", "assembly"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0755); err != nil {
			return nil, fmt.Errorf("failed to create workspace %s: %w", dir, err)
		}
	}

	return &Workspace{root: root, runID: runID, dir: dir}, nil
}

func (w *Workspace) RunID() string { return w.runID }
func (w *Workspace) Dir() string   { return w.dir }

// Path resolves elem relative to the run directory.
func (w *Workspace) Path(elem ...string) string {
	return filepath.Join(append([]string{w.dir}, elem...)...)
}

func (w *Workspace) AudioDir() string    { return w.Path("audio") }
func (w *Workspace) VisualsDir() string  { return w.Path("visuals") }
func (w *Workspace) AssemblyDir() string { return w.Path("assembly") }

// SaveJSON persists v as indented JSON under the run directory.
func (w *Workspace) SaveJSON(name string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}

	path := w.Path(name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", name, err)
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// LoadJSON reads a document previously written with SaveJSON.
func (w *Workspace) LoadJSON(name string, v any) error {
	raw, err := os.ReadFile(w.Path(name))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return nil
}
