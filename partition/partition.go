package partition

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

// DefaultCapacity is the maximum number of resources stored in one partition.
const DefaultCapacity = 500

const dirPrefix = "Partition_"

// Assigner maps a resource's position in the discovered sequence to the
// partition directory it is stored in.
type Assigner struct {
	root     string // constant
	capacity int    // constant
}

// NewAssigner returns an assigner that creates partitions under root, each
// holding at most capacity resources. A non-positive capacity selects
// DefaultCapacity.
func NewAssigner(root string, capacity int) *Assigner {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Assigner{
		root:     root,
		capacity: capacity,
	}
}

// Number returns the 1-based partition number of the resource at the given
// 1-based sequence index.
func Number(idx int, capacity int) int {
	return (idx-1)/capacity + 1
}

// DirName returns the directory name of partition n.
func DirName(n int) string {
	return dirPrefix + strconv.Itoa(n)
}

// Root returns the directory containing all partitions.
func (a *Assigner) Root() string {
	return a.root
}

// Path returns the partition directory of the resource at idx without
// touching the filesystem.
func (a *Assigner) Path(idx int) string {
	return filepath.Join(a.root, DirName(Number(idx, a.capacity)))
}

// Assign returns the partition directory of the resource at idx, creating it
// if it does not exist yet. Concurrent calls for the same partition are safe.
func (a *Assigner) Assign(idx int) (string, error) {
	if idx < 1 {
		return "", fmt.Errorf("invalid sequence index: %d", idx)
	}

	dir := a.Path(idx)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create partition: %w", err)
	}

	return dir, nil
}

// List returns the paths of all existing partition directories under root,
// ordered by partition number. A missing root yields no partitions.
func List(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	type numbered struct {
		n    int
		path string
	}

	var parts []numbered
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), dirPrefix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(e.Name(), dirPrefix))
		if err != nil || n < 1 {
			log.Debugf("ignoring non-partition directory: %s", e.Name())
			continue
		}
		parts = append(parts, numbered{n, filepath.Join(root, e.Name())})
	}

	sort.Slice(parts, func(i, j int) bool {
		return parts[i].n < parts[j].n
	})

	paths := make([]string, len(parts))
	for i, p := range parts {
		paths[i] = p.path
	}

	return paths, nil
}
