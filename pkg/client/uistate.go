package client

import (
	"os"
	"strings"
	"sync"
)

// TabStore remembers the last-active editor tab across sessions. It is
// the one piece of durable client-side state, kept behind an interface
// so the rest of the client stays free of global storage concerns.
type TabStore interface {
	Load() (string, error)
	Save(tab string) error
}

// MemoryTabStore keeps the tab for the current process only.
type MemoryTabStore struct {
	mu  sync.Mutex
	tab string
}

func (s *MemoryTabStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tab, nil
}

func (s *MemoryTabStore) Save(tab string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tab = tab
	return nil
}

// FileTabStore persists the tab name to a single file. A missing file
// reads as an empty tab, not an error.
type FileTabStore struct {
	Path string
}

func (s *FileTabStore) Load() (string, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *FileTabStore) Save(tab string) error {
	return os.WriteFile(s.Path, []byte(tab+"\n"), 0o644)
}
