package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/lexmerge/internal/core/domain"
	"github.com/custodia-labs/lexmerge/internal/core/ports/driven"
	"github.com/custodia-labs/lexmerge/internal/logger"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// promptReadme is written next to the instruction files.
const promptReadme = `# lexmerge prompts

These files hold the instructions sent to the generation service when no
stored prompt id is configured (always the case for Gemini).

- classify.txt: classifies each project document and proposes an order
- merge.txt: merges the ordered documents into one contract
- continue.txt: sent after a response was cut off by the token limit

Edits take effect on the next command. Keep the JSON reply shapes intact;
replies that do not decode fall back to the built-in heuristic result.
An empty file restores the built-in instructions.
`

// PromptStore reads generation instructions from <dir>/<name>.txt.
// Only the names in driven.DefaultPrompts are served. A missing, empty or
// unreadable file yields the built-in text.
//
// Nothing touches the disk until the first Load, which creates the
// directory and writes any default file that does not exist yet.
type PromptStore struct {
	dir string

	initOnce sync.Once
	initErr  error

	mu    sync.Mutex
	cache map[string]string
}

// NewPromptStore creates a prompt store rooted at dir.
// If dir is empty, defaults to ~/.lexmerge/prompts.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, ".lexmerge", "prompts")
	}
	return &PromptStore{dir: dir, cache: make(map[string]string)}, nil
}

// Load returns the instructions for name.
func (s *PromptStore) Load(name string) (string, error) {
	builtin, ok := driven.DefaultPrompts[name]
	if !ok {
		return "", fmt.Errorf("%w: prompt %q", domain.ErrNotFound, name)
	}

	s.initOnce.Do(s.writeDefaults)
	if s.initErr != nil {
		return builtin, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if prompt, ok := s.cache[name]; ok {
		return prompt, nil
	}

	prompt := builtin
	data, err := os.ReadFile(s.path(name))
	switch {
	case err == nil && strings.TrimSpace(string(data)) != "":
		prompt = strings.TrimSpace(string(data))
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		logger.Warn("prompt %s: %v, using built-in instructions", name, err)
	}
	s.cache[name] = prompt
	return prompt, nil
}

// Reload drops cached prompts so the next Load reads the files again.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.dir
}

func (s *PromptStore) path(name string) string {
	return filepath.Join(s.dir, name+".txt")
}

// writeDefaults creates the directory, the default instruction files and
// the README. Existing files are left untouched.
func (s *PromptStore) writeDefaults() {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		logger.Debug("prompts: %v", s.initErr)
		return
	}

	files := map[string]string{"README.md": promptReadme}
	for name, content := range driven.DefaultPrompts {
		files[name+".txt"] = content
	}
	for file, content := range files {
		path := filepath.Join(s.dir, file)
		if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			s.initErr = fmt.Errorf("write %s: %w", file, err)
			logger.Debug("prompts: %v", s.initErr)
			return
		}
	}
}
