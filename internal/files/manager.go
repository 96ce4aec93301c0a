package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidName is returned for file names that cannot be stored.
var ErrInvalidName = errors.New("invalid file name")

// Manager creates and removes request workspaces under a root directory.
type Manager struct {
	root   string
	keep   bool
	logger *slog.Logger
}

// NewManager creates a manager rooted at root. When keep is true workspaces
// survive Cleanup, which helps when debugging a report.
func NewManager(root string, keep bool, logger *slog.Logger) *Manager {
	if root == "" {
		root = filepath.Join(os.TempDir(), "weeklyreport")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		root:   root,
		keep:   keep,
		logger: logger.With(slog.String("component", "workspace")),
	}
}

// Root returns the directory holding all workspaces.
func (m *Manager) Root() string {
	return m.root
}

// NewWorkspace creates an empty uniquely named directory.
func (m *Manager) NewWorkspace(ctx context.Context) (*Workspace, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	dir := filepath.Join(m.root, id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}

	m.logger.DebugContext(ctx, "Workspace created",
		slog.String("workspace_id", id),
		slog.String("dir", dir))

	return &Workspace{ID: id, Dir: dir, manager: m}, nil
}

// Workspace is one request's private directory.
type Workspace struct {
	ID  string
	Dir string

	manager *Manager
}

// Path returns the location of name inside the workspace. Only the base
// name is used so callers cannot escape the directory.
func (w *Workspace) Path(name string) (string, error) {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == ".." || base == "/" || strings.TrimSpace(base) == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(w.Dir, base), nil
}

// Save copies r into the workspace under name and returns the path.
func (w *Workspace) Save(name string, r io.Reader) (string, error) {
	path, err := w.Path(name)
	if err != nil {
		return "", err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	n, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to close file: %w", err)
	}

	w.manager.logger.Debug("File saved",
		slog.String("workspace_id", w.ID),
		slog.String("file", filepath.Base(path)),
		slog.Int64("size_bytes", n))
	return path, nil
}

// Cleanup removes the workspace unless the manager keeps artifacts.
func (w *Workspace) Cleanup() error {
	if w.manager.keep {
		w.manager.logger.Info("Keeping workspace",
			slog.String("workspace_id", w.ID),
			slog.String("dir", w.Dir))
		return nil
	}
	if err := os.RemoveAll(w.Dir); err != nil {
		w.manager.logger.Warn("Failed to remove workspace",
			slog.String("workspace_id", w.ID),
			slog.String("error", err.Error()))
		return err
	}
	return nil
}
