package checksum

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"
)

var ErrUnknownAlgorithm = errors.New("unknown hash algorithm")

const (
	MD5    = "md5"
	SHA256 = "sha256"
)

// Hasher computes hex content digests with a fixed algorithm.
type Hasher struct {
	algo    string
	newHash func() hash.Hash
}

// NewHasher returns a hasher for the named algorithm. The empty string selects
// md5.
func NewHasher(algo string) (*Hasher, error) {
	algo = strings.ToLower(strings.TrimSpace(algo))

	switch algo {
	case MD5, "":
		return &Hasher{algo: MD5, newHash: md5.New}, nil
	case SHA256:
		return &Hasher{algo: SHA256, newHash: sha256.New}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, algo)
	}
}

// Algorithm returns the name of the hasher's digest algorithm.
func (h *Hasher) Algorithm() string {
	return h.algo
}

// Hash streams r through the digest and returns the lowercase hex result.
func (h *Hasher) Hash(r io.Reader) (string, error) {
	d := h.newHash()
	if _, err := io.Copy(d, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(d.Sum(nil)), nil
}

// HashFile returns the digest of the file at path. Memory use is bounded
// regardless of file size.
func (h *Hasher) HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open for checksum: %w", err)
	}
	defer f.Close()

	sum, err := h.Hash(f)
	if err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return sum, nil
}
