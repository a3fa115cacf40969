package mirror

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ccollins476ad/docmirror/checksum"
	"github.com/ccollins476ad/docmirror/download"
	"github.com/ccollins476ad/docmirror/fileutil"
	"github.com/ccollins476ad/docmirror/partition"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// DefaultWidth is the number of downloads run concurrently in one group.
const DefaultWidth = 5

// Fetcher streams a remote resource into a temporary file in dir. It is
// implemented by download.Fetcher.
type Fetcher interface {
	FetchTemp(ctx context.Context, u string, dir string, pattern string) (string, int64, error)
}

// Hasher computes a file's content digest. It is implemented by
// checksum.Hasher.
type Hasher interface {
	HashFile(path string) (string, error)
}

// Options configures an Orchestrator.
type Options struct {
	Width        int    // Downloads per concurrency group.
	ChecksumPath string // Location of the checksum store.
	ManifestPath string // Location of the run manifest.
}

// Summary tallies the outcome of one download run.
type Summary struct {
	Downloaded int
	Skipped    int
	Failed     int
}

// Orchestrator downloads an ordered list of resources into partitioned
// storage, recording a checksum for each new download.
type Orchestrator struct {
	assigner *partition.Assigner
	fetcher  Fetcher
	hasher   Hasher
	opts     Options
}

func NewOrchestrator(assigner *partition.Assigner, fetcher Fetcher, hasher Hasher, opts Options) *Orchestrator {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	return &Orchestrator{
		assigner: assigner,
		fetcher:  fetcher,
		hasher:   hasher,
		opts:     opts,
	}
}

// run holds the state shared by the downloads of a single Run call.
type run struct {
	store    *checksum.Store
	manifest *checksum.Manifest

	mtx     sync.Mutex // Protects "summary".
	summary Summary
}

func (r *run) count(fn func(s *Summary)) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	fn(&r.summary)
}

// Run downloads every locator not already present on disk. Locators are
// processed in groups of Options.Width; a group starts only after every
// download in the previous group has finished. A failure to download one
// resource is logged and counted, never returned. Run returns an error if
// the checksum store or manifest cannot be read or written, or if ctx is done
// before every group has started; the manifest is replaced with the records
// of this run's new downloads.
func (o *Orchestrator) Run(ctx context.Context, locators []string) (Summary, error) {
	store, err := checksum.LoadStore(o.opts.ChecksumPath)
	if err != nil {
		return Summary{}, err
	}

	r := &run{
		store:    store,
		manifest: checksum.NewManifest(),
	}

	log.Debugf("loaded %d checksums from %s", store.Len(), o.opts.ChecksumPath)
	log.Infof("downloading %d documents into %s", len(locators), o.assigner.Root())

	for start := 0; start < len(locators); start += o.opts.Width {
		if err := ctx.Err(); err != nil {
			// Keep the record of what this run did finish.
			if serr := r.manifest.Save(o.opts.ManifestPath); serr != nil {
				log.WithError(serr).Errorf("failed to save manifest")
			}
			log.Warnf("download interrupted: downloaded=%d skipped=%d failed=%d remaining=%d",
				r.summary.Downloaded, r.summary.Skipped, r.summary.Failed, len(locators)-start)
			return r.summary, err
		}

		end := min(start+o.opts.Width, len(locators))

		g := &errgroup.Group{}
		for i := start; i < end; i++ {
			idx, u := i+1, locators[i]
			g.Go(func() error {
				return o.processOne(ctx, r, idx, u)
			})
		}

		if err := g.Wait(); err != nil {
			return r.summary, err
		}
	}

	if err := r.manifest.Save(o.opts.ManifestPath); err != nil {
		return r.summary, err
	}

	log.Infof("download complete: downloaded=%d skipped=%d failed=%d",
		r.summary.Downloaded, r.summary.Skipped, r.summary.Failed)

	return r.summary, nil
}

// errPersist marks failures of the checksum store, which abort the run.
type errPersist struct {
	err error
}

func (e *errPersist) Error() string { return e.err.Error() }
func (e *errPersist) Unwrap() error { return e.err }

// processOne handles the resource at the given 1-based sequence index. It
// returns an error only for failures that must abort the whole run.
func (o *Orchestrator) processOne(ctx context.Context, r *run, idx int, u string) error {
	skipped, err := o.downloadOne(ctx, r, idx, u)
	if err != nil {
		var pe *errPersist
		if errors.As(err, &pe) {
			return pe.err
		}
		log.WithError(err).Errorf("failed to download: idx=%d url=%s", idx, u)
		r.count(func(s *Summary) { s.Failed++ })
		return nil
	}

	if skipped {
		r.count(func(s *Summary) { s.Skipped++ })
	} else {
		r.count(func(s *Summary) { s.Downloaded++ })
	}
	return nil
}

// downloadOne ensures the resource is stored on disk. The fetched bytes are
// hashed and their checksum persisted before they are moved to their final
// path, so a stored file always has a checksum entry.
func (o *Orchestrator) downloadOne(ctx context.Context, r *run, idx int, u string) (bool, error) {
	name, err := download.ResourceName(u)
	if err != nil {
		return false, err
	}

	dir, err := o.assigner.Assign(idx)
	if err != nil {
		return false, err
	}

	destPath := filepath.Join(dir, name)
	if fileutil.FileExists(destPath) {
		log.Debugf("skipping %s: file already exists: %s", u, destPath)
		return true, nil
	}

	log.Infof("downloading %s", destPath)

	tmpPath, size, err := o.fetcher.FetchTemp(ctx, u, dir, name)
	if err != nil {
		return false, err
	}

	digest, err := o.hasher.HashFile(tmpPath)
	if err != nil {
		os.Remove(tmpPath)
		return false, err
	}

	// The checksum is persisted before the file appears under its final name.
	// A failure in between leaves an entry without a file, which verify
	// reports as missing and the next run downloads again.
	if err := r.store.Put(name, digest); err != nil {
		os.Remove(tmpPath)
		return false, &errPersist{err}
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return false, fmt.Errorf("could not finalize file: %w", err)
	}

	r.manifest.Append(idx, checksum.Record{
		Name:     name,
		URL:      u,
		Size:     size,
		Checksum: digest,
	})

	log.Debugf("stored %s: size=%d checksum=%s", destPath, size, digest)
	return false, nil
}
