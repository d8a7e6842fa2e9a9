package adapter

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mmcdole/cachegen/internal/domain"
	"github.com/spf13/viper"
)

// StateFile persists last-used directories as KEY=value lines.
// It implements domain.StateStore.
type StateFile struct {
	path string

	mu   sync.Mutex
	dirs map[domain.StateKey]string
}

// LoadState reads the state file at path. A missing file yields empty state.
// Lines that are malformed, use an unknown key, or point at a directory that
// no longer exists are dropped.
func LoadState(path string) (*StateFile, error) {
	s := &StateFile{
		path: ExpandHome(path),
		dirs: make(map[domain.StateKey]string),
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	v := viper.New()
	v.SetConfigType("env")
	if err := v.ReadConfig(bytes.NewReader(recognizedLines(data))); err != nil {
		// Unparseable content is treated like an empty file
		return s, nil
	}

	for _, key := range domain.StateKeys() {
		dir := v.GetString(string(key))
		if isDir(dir) {
			s.dirs[key] = dir
		}
	}

	return s, nil
}

// recognizedLines keeps only key=value lines whose key is a known state key
// and re-emits them in the form write produces
func recognizedLines(data []byte) []byte {
	known := make(map[string]bool)
	for _, key := range domain.StateKeys() {
		known[string(key)] = true
	}

	var out bytes.Buffer
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = unquote(strings.TrimSpace(value))
		if !known[key] || value == "" {
			continue
		}
		out.WriteString(formatLine(key, value))
	}
	return out.Bytes()
}

// formatLine renders one state line. Values are single-quoted so the dotenv
// reader keeps $ and # literally. A trailing backslash would read as an
// escaped closing quote, so such values stay bare.
func formatLine(key, value string) string {
	if !strings.HasSuffix(value, `\`) {
		value = "'" + value + "'"
	}
	return strings.ToUpper(key) + "=" + value + "\n"
}

func unquote(value string) string {
	if n := len(value); n >= 2 && (value[0] == '\'' || value[0] == '"') && value[n-1] == value[0] {
		return value[1 : n-1]
	}
	return value
}

func isDir(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Path returns the state file location
func (s *StateFile) Path() string {
	return s.path
}

// LastDir returns the remembered directory for key, or ""
func (s *StateFile) LastDir(key domain.StateKey) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirs[key]
}

// SetLastDir remembers dir under key and rewrites the whole file so the
// other keys are preserved
func (s *StateFile) SetLastDir(key domain.StateKey, dir string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	abs, err := filepath.Abs(dir)
	if err == nil {
		dir = abs
	}
	s.dirs[key] = dir

	return s.write()
}

func (s *StateFile) write() error {
	var buf bytes.Buffer
	for _, key := range domain.StateKeys() {
		if dir, ok := s.dirs[key]; ok {
			buf.WriteString(formatLine(string(key), dir))
		}
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	if err := os.WriteFile(s.path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	return nil
}
