package mirror

import (
	"errors"
	"path/filepath"

	"github.com/ccollins476ad/docmirror/checksum"
	"github.com/ccollins476ad/docmirror/fileutil"
	"github.com/ccollins476ad/docmirror/partition"
	log "github.com/sirupsen/logrus"
)

// ErrNoChecksums indicates there is no checksum store to verify against.
var ErrNoChecksums = errors.New("no checksums recorded")

type ProblemKind int

const (
	Missing ProblemKind = iota
	Corrupted
)

func (k ProblemKind) String() string {
	switch k {
	case Missing:
		return "missing"
	case Corrupted:
		return "corrupted"
	default:
		return "unknown"
	}
}

// Problem identifies a recorded resource that failed verification.
type Problem struct {
	Name string
	Kind ProblemKind
}

// Report is the result of a verification pass.
type Report struct {
	OK       int
	Problems []Problem // Ordered by resource name.
}

// Intact returns true if every recorded resource verified successfully.
func (r Report) Intact() bool {
	return len(r.Problems) == 0
}

// Verifier re-hashes stored resources and compares them against the checksum
// store.
type Verifier struct {
	root         string // Directory containing the partitions.
	checksumPath string
	hasher       Hasher
}

func NewVerifier(root string, checksumPath string, hasher Hasher) *Verifier {
	return &Verifier{
		root:         root,
		checksumPath: checksumPath,
		hasher:       hasher,
	}
}

// Verify checks every entry of the checksum store. Each resource is looked up
// by name across all partitions; the first match is re-hashed. It returns
// ErrNoChecksums, without scanning any partition, if the store does not exist.
// The store is never modified.
func (v *Verifier) Verify() (Report, error) {
	if !fileutil.FileExists(v.checksumPath) {
		return Report{}, ErrNoChecksums
	}

	store, err := checksum.LoadStore(v.checksumPath)
	if err != nil {
		return Report{}, err
	}

	dirs, err := partition.List(v.root)
	if err != nil {
		return Report{}, err
	}

	var rep Report
	for _, name := range store.Names() {
		want, _ := store.Get(name)

		path := locate(dirs, name)
		if path == "" {
			log.Warnf("MISSING  %s", name)
			rep.Problems = append(rep.Problems, Problem{name, Missing})
			continue
		}

		got, err := v.hasher.HashFile(path)
		if err != nil {
			log.WithError(err).Warnf("CORRUPT  %s: unreadable", name)
			rep.Problems = append(rep.Problems, Problem{name, Corrupted})
			continue
		}

		if got != want {
			log.Warnf("CORRUPT  %s: have=%s want=%s", name, got, want)
			rep.Problems = append(rep.Problems, Problem{name, Corrupted})
			continue
		}

		log.Infof("OK       %s", name)
		rep.OK++
	}

	if rep.Intact() {
		log.Infof("all %d files intact", rep.OK)
	} else {
		log.Warnf("%d problems found (%d files intact)", len(rep.Problems), rep.OK)
	}

	return rep, nil
}

// locate returns the path of the first regular file named name in dirs, or
// the empty string if there is none.
func locate(dirs []string, name string) string {
	for _, dir := range dirs {
		p := filepath.Join(dir, name)
		if fileutil.IsRegular(p) {
			return p
		}
	}
	return ""
}
