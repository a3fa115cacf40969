package checksum

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/ccollins476ad/docmirror/fileutil"
)

// Record describes one resource downloaded during a run.
type Record struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Size     int64  `json:"size"`
	Checksum string `json:"checksum"`
}

type indexedRecord struct {
	idx int
	rec Record
}

// Manifest accumulates the records of a single download run. Unlike Store it
// is not cumulative: saving it replaces any manifest left by an earlier run.
type Manifest struct {
	mtx     sync.Mutex // Protects "records".
	records []indexedRecord
}

func NewManifest() *Manifest {
	return &Manifest{}
}

// Append adds a record for the resource at the given sequence index. Records
// are kept in sequence order regardless of the order they are appended in.
func (m *Manifest) Append(idx int, rec Record) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.records = append(m.records, indexedRecord{idx, rec})
}

// Records returns a copy of the records ordered by sequence index.
func (m *Manifest) Records() []Record {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	sorted := make([]indexedRecord, len(m.records))
	copy(sorted, m.records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].idx < sorted[j].idx
	})

	recs := make([]Record, len(sorted))
	for i, r := range sorted {
		recs[i] = r.rec
	}
	return recs
}

// Save writes the manifest to path as a JSON array, overwriting any existing
// file.
func (m *Manifest) Save(path string) error {
	recs := m.Records()

	b, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return err
	}

	if err := fileutil.WriteFileAtomic(path, b, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// ReadManifest reads the records of a saved manifest.
func ReadManifest(path string) ([]Record, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var recs []Record
	if err := json.Unmarshal(b, &recs); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	return recs, nil
}
