package checksum

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/ccollins476ad/docmirror/fileutil"
)

// Store is the cumulative mapping of resource name to content digest. It is
// persisted as a single JSON object and rewritten wholesale on every change.
type Store struct {
	path string // constant

	mtx     sync.Mutex        // Protects "entries" and the backing file.
	entries map[string]string // Resource name -> hex digest.
}

// LoadStore reads the store at path. A missing file yields an empty store
// that will be created on the first Put.
func LoadStore(path string) (*Store, error) {
	s := &Store{
		path:    path,
		entries: map[string]string{},
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read checksum store: %w", err)
	}

	if err := json.Unmarshal(b, &s.entries); err != nil {
		return nil, fmt.Errorf("failed to parse checksum store %s: %w", path, err)
	}
	if s.entries == nil {
		s.entries = map[string]string{}
	}

	return s, nil
}

// Get returns the digest recorded for name.
func (s *Store) Get(name string) (string, bool) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	d, ok := s.entries[name]
	return d, ok
}

// Len returns the number of recorded entries.
func (s *Store) Len() int {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return len(s.entries)
}

// Names returns all recorded resource names in sorted order.
func (s *Store) Names() []string {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Put records digest for name and persists the whole store before returning.
// Concurrent callers are serialized so each write contains every entry
// recorded so far.
func (s *Store) Put(name string, digest string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.entries[name] = digest
	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	b, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return err
	}

	if err := fileutil.WriteFileAtomic(s.path, b, 0644); err != nil {
		return fmt.Errorf("failed to write checksum store: %w", err)
	}
	return nil
}
