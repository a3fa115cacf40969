package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ccollins476ad/docmirror/checksum"
	"github.com/ccollins476ad/docmirror/download"
	"github.com/ccollins476ad/docmirror/mirror"
	"github.com/ccollins476ad/docmirror/partition"
	"github.com/ccollins476ad/docmirror/web"
	log "github.com/sirupsen/logrus"
)

// app wires the configured components together. It is shared by the
// subcommands and the interactive menu.
type app struct {
	cfg     *Config
	hc      *http.Client
	fetcher *download.Fetcher
	hasher  *checksum.Hasher
}

type appAction func(a *app, ctx context.Context, out io.Writer) error

func newApp(cfg *Config) (*app, error) {
	hasher, err := checksum.NewHasher(cfg.Algorithm)
	if err != nil {
		return nil, err
	}

	hc := &http.Client{}
	return &app{
		cfg:     cfg,
		hc:      hc,
		fetcher: download.NewFetcher(hc, cfg.Timeout),
		hasher:  hasher,
	}, nil
}

// discover returns the locators linked from the listing page. Discovery
// failures are logged and yield an empty sequence.
func (a *app) discover(ctx context.Context) []string {
	if a.cfg.Source == "" {
		log.Errorf("no listing page configured; use --source")
		return nil
	}

	locators, err := web.NewLister(a.hc, a.cfg.Source, a.cfg.Extensions).Discover(ctx)
	if err != nil {
		log.WithError(err).Errorf("failed to discover documents: source=%s", a.cfg.Source)
		return nil
	}

	log.Infof("discovered %d documents", len(locators))
	return locators
}

func (a *app) estimate(ctx context.Context, out io.Writer) error {
	locators := a.discover(ctx)
	if len(locators) == 0 {
		fmt.Fprintln(out, "nothing to estimate")
		return nil
	}

	est, err := mirror.EstimateSize(ctx, a.fetcher, locators, a.cfg.DestDir)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "documents: %d\n", est.Count)
	fmt.Fprintf(out, "total size: %s\n", humanBytes(uint64(est.Bytes)))
	if est.Unknown > 0 {
		fmt.Fprintf(out, "unknown size: %d documents\n", est.Unknown)
	}
	if est.Free > 0 {
		fmt.Fprintf(out, "free space: %s\n", humanBytes(est.Free))
		if !est.Fits() {
			fmt.Fprintln(out, "warning: not enough free space")
		}
	}

	return nil
}

func (a *app) downloadAll(ctx context.Context, out io.Writer) error {
	locators := a.discover(ctx)
	if len(locators) == 0 {
		fmt.Fprintln(out, "nothing to download")
		return nil
	}

	o := mirror.NewOrchestrator(
		partition.NewAssigner(a.cfg.DestDir, a.cfg.Capacity),
		a.fetcher,
		a.hasher,
		mirror.Options{
			Width:        a.cfg.Jobs,
			ChecksumPath: a.cfg.Checksums,
			ManifestPath: a.cfg.Manifest,
		})

	sum, err := o.Run(ctx, locators)
	fmt.Fprintf(out, "downloaded: %d, skipped: %d, failed: %d\n", sum.Downloaded, sum.Skipped, sum.Failed)
	return err
}

func (a *app) verify(ctx context.Context, out io.Writer) error {
	log.Infof("verifying %s checksums from %s", a.hasher.Algorithm(), a.cfg.Checksums)

	rep, err := mirror.NewVerifier(a.cfg.DestDir, a.cfg.Checksums, a.hasher).Verify()
	if err != nil {
		if errors.Is(err, mirror.ErrNoChecksums) {
			fmt.Fprintf(out, "%v: run a download first\n", err)
		}
		return err
	}

	if rep.Intact() {
		fmt.Fprintf(out, "all %d files intact\n", rep.OK)
		return nil
	}

	for _, p := range rep.Problems {
		fmt.Fprintf(out, "%-9s %s\n", p.Kind, p.Name)
	}
	return fmt.Errorf("%d problems found", len(rep.Problems))
}

func humanBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
