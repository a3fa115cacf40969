package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ccollins476ad/docmirror/checksum"
	"github.com/ccollins476ad/docmirror/mirror"
	"github.com/ccollins476ad/docmirror/partition"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var errConfig = errors.New("invalid configuration")

type Config struct {
	Source     string        `yaml:"source"`     // Url of the listing page.
	DestDir    string        `yaml:"dest"`       // Directory containing the partitions.
	Checksums  string        `yaml:"checksums"`  // Path of the checksum store.
	Manifest   string        `yaml:"manifest"`   // Path of the run manifest.
	Jobs       int           `yaml:"jobs"`       // Downloads per concurrency group.
	Capacity   int           `yaml:"capacity"`   // Resources per partition.
	Algorithm  string        `yaml:"algorithm"`  // Digest algorithm.
	Timeout    time.Duration `yaml:"timeout"`    // Per resource; 0 disables.
	Extensions []string      `yaml:"extensions"` // Resource extensions to discover.
	Verbose    bool          `yaml:"verbose"`    // True for verbose output.
}

func defaultConfig() Config {
	return Config{
		DestDir:   "downloads",
		Jobs:      mirror.DefaultWidth,
		Capacity:  partition.DefaultCapacity,
		Algorithm: checksum.MD5,
		Timeout:   5 * time.Minute,
	}
}

// addFlags registers the persistent flags that populate cfg.
func addFlags(cmd *cobra.Command, cfg *Config, configPath *string) {
	fs := cmd.PersistentFlags()
	fs.StringVar(configPath, "config", "", "yaml config file")
	fs.StringVarP(&cfg.Source, "source", "s", cfg.Source, "url of the listing page")
	fs.StringVarP(&cfg.DestDir, "dest", "d", cfg.DestDir, "download directory")
	fs.StringVar(&cfg.Checksums, "checksums", cfg.Checksums, "checksum store path (default <dest>/checksums.json)")
	fs.StringVar(&cfg.Manifest, "manifest", cfg.Manifest, "manifest path (default <dest>/manifest.json)")
	fs.IntVarP(&cfg.Jobs, "jobs", "j", cfg.Jobs, "downloads per concurrency group")
	fs.IntVar(&cfg.Capacity, "capacity", cfg.Capacity, "resources per partition")
	fs.StringVar(&cfg.Algorithm, "algorithm", cfg.Algorithm, "digest algorithm (md5, sha256)")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "per resource download timeout (0 disables)")
	fs.StringSliceVar(&cfg.Extensions, "ext", cfg.Extensions, "resource extensions to discover (default .pdf)")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "verbose output")
}

// readConfigFile unmarshals the yaml config file at path.
func readConfigFile(path string) (Config, error) {
	var fc Config

	b, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return fc, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return fc, nil
}

// mergeFile copies the settings of a config file into cfg, except those given
// explicitly on the command line.
func mergeFile(cfg *Config, fc Config, changed func(name string) bool) {
	if !changed("source") && fc.Source != "" {
		cfg.Source = fc.Source
	}
	if !changed("dest") && fc.DestDir != "" {
		cfg.DestDir = fc.DestDir
	}
	if !changed("checksums") && fc.Checksums != "" {
		cfg.Checksums = fc.Checksums
	}
	if !changed("manifest") && fc.Manifest != "" {
		cfg.Manifest = fc.Manifest
	}
	if !changed("jobs") && fc.Jobs != 0 {
		cfg.Jobs = fc.Jobs
	}
	if !changed("capacity") && fc.Capacity != 0 {
		cfg.Capacity = fc.Capacity
	}
	if !changed("algorithm") && fc.Algorithm != "" {
		cfg.Algorithm = fc.Algorithm
	}
	if !changed("timeout") && fc.Timeout != 0 {
		cfg.Timeout = fc.Timeout
	}
	if !changed("ext") && len(fc.Extensions) > 0 {
		cfg.Extensions = fc.Extensions
	}
	if !changed("verbose") && fc.Verbose {
		cfg.Verbose = true
	}
}

// finalize fills in derived defaults and validates the result.
func (cfg *Config) finalize() error {
	if cfg.DestDir == "" {
		return fmt.Errorf("%w: empty download directory", errConfig)
	}
	if cfg.Checksums == "" {
		cfg.Checksums = filepath.Join(cfg.DestDir, "checksums.json")
	}
	if cfg.Manifest == "" {
		cfg.Manifest = filepath.Join(cfg.DestDir, "manifest.json")
	}
	if cfg.Jobs < 1 {
		return fmt.Errorf("%w: jobs must be at least 1: %d", errConfig, cfg.Jobs)
	}
	if cfg.Capacity < 1 {
		return fmt.Errorf("%w: capacity must be at least 1: %d", errConfig, cfg.Capacity)
	}
	if cfg.Timeout < 0 {
		return fmt.Errorf("%w: negative timeout: %s", errConfig, cfg.Timeout)
	}
	if _, err := checksum.NewHasher(cfg.Algorithm); err != nil {
		return fmt.Errorf("%w: %v", errConfig, err)
	}

	return nil
}
