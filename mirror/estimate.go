package mirror

import (
	"context"
	"path/filepath"

	"github.com/ccollins476ad/docmirror/fileutil"
	"github.com/shirou/gopsutil/v3/disk"
	log "github.com/sirupsen/logrus"
)

// Sizer reports the advertised size of a remote resource, or -1 if unknown.
// It is implemented by download.Fetcher.
type Sizer interface {
	Size(ctx context.Context, u string) (int64, error)
}

// Estimate is the result of a size estimation pass.
type Estimate struct {
	Count   int    // Locators examined.
	Unknown int    // Locators whose size could not be determined.
	Bytes   int64  // Sum of known sizes.
	Free    uint64 // Free bytes on the destination volume; 0 if unknown.
}

// Fits returns true if the known total fits in the free space of the
// destination volume.
func (e Estimate) Fits() bool {
	return e.Free > 0 && uint64(e.Bytes) <= e.Free
}

// EstimateSize queries the size of each locator in turn and sums the results.
// Locators whose size cannot be determined are counted, not fatal.
func EstimateSize(ctx context.Context, sizer Sizer, locators []string, dest string) (Estimate, error) {
	est := Estimate{Count: len(locators)}

	for _, u := range locators {
		if err := ctx.Err(); err != nil {
			return est, err
		}

		n, err := sizer.Size(ctx, u)
		if err != nil {
			log.WithError(err).Errorf("failed to get size: url=%s", u)
			est.Unknown++
			continue
		}
		if n < 0 {
			log.Debugf("no content length: %s", u)
			est.Unknown++
			continue
		}

		log.Debugf("size %d: %s", n, u)
		est.Bytes += n
	}

	usage, err := disk.UsageWithContext(ctx, existingAncestor(dest))
	if err != nil {
		log.WithError(err).Debugf("failed to get disk usage: %s", dest)
	} else {
		est.Free = usage.Free
	}

	return est, nil
}

// existingAncestor returns the nearest existing directory at or above p.
func existingAncestor(p string) string {
	p, err := filepath.Abs(p)
	if err != nil {
		return "."
	}
	for {
		if fileutil.IsDir(p) {
			return p
		}
		parent := filepath.Dir(p)
		if parent == p {
			return p
		}
		p = parent
	}
}
