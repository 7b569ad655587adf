// Package workspace manages per-request scratch directories. Every media
// request gets an exclusively owned directory for its artifacts; nothing in
// it survives the request.
package workspace

import (
	"fmt"
	"os"
)

// dirPrefix marks workspace directories so stray ones are identifiable in
// the base directory.
const dirPrefix = "video_dl_"

// Manager creates workspaces under a base directory.
type Manager struct {
	baseDir string
}

// NewManager creates a workspace manager rooted at baseDir.
func NewManager(baseDir string) *Manager {
	return &Manager{baseDir: baseDir}
}

// Create makes a fresh workspace directory with a unique name.
func (m *Manager) Create() (*Workspace, error) {
	dir, err := os.MkdirTemp(m.baseDir, dirPrefix)
	if err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	return &Workspace{dir: dir}, nil
}

// Workspace is one request's scratch directory.
type Workspace struct {
	dir string
}

// Dir returns the workspace directory path.
func (w *Workspace) Dir() string {
	return w.dir
}

// Cleanup removes the workspace and everything in it. Removal is
// best-effort and idempotent; errors are deliberately ignored so teardown
// never masks the request's real outcome.
func (w *Workspace) Cleanup() {
	os.RemoveAll(w.dir)
}
