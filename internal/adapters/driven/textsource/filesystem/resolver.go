package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/lexmerge/internal/core/domain"
)

// ResolveRoot converts a configured projects root to a local path.
// Handles file:// URIs and bare paths; empty selects ~/.lexmerge/projects.
func ResolveRoot(root string) (string, error) {
	root = strings.TrimPrefix(strings.TrimSpace(root), "file://")
	if root != "" {
		return root, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".lexmerge", "projects"), nil
}

// ResolveProjectDir returns the directory of a project under root.
// Project IDs are single path elements; anything that could escape root is rejected.
func ResolveProjectDir(root, projectID string) (string, error) {
	id := strings.TrimSpace(projectID)
	switch {
	case id == "", id == ".", id == "..":
		return "", fmt.Errorf("%w: project id %q", domain.ErrInvalidInput, projectID)
	case strings.ContainsAny(id, `/\`), isHidden(id):
		return "", fmt.Errorf("%w: project id %q", domain.ErrInvalidInput, projectID)
	}
	return filepath.Join(root, id), nil
}

// isHidden checks if a path element is hidden (starts with .).
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
