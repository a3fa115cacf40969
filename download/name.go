package download

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/flytam/filenamify"
)

// ErrNoName indicates a url without a usable final path segment.
var ErrNoName = errors.New("url has no file name")

// MaxNameLength bounds resource names. It leaves room below the common
// 255-byte filename limit for the temp file pattern used by FetchTemp.
const MaxNameLength = 255 - 20

// ResourceName returns the local filename a resource is stored under: the
// final path segment of its decoded url path, made safe for the local
// filesystem. Distinct urls sharing a final segment map to the same name.
func ResourceName(u string) (string, error) {
	pu, err := url.Parse(u)
	if err != nil {
		return "", fmt.Errorf("failed to parse url: %w", err)
	}

	seg := path.Base(pu.Path)
	if strings.HasSuffix(pu.Path, "/") || seg == "." || seg == ".." || seg == "/" || seg == "" {
		return "", fmt.Errorf("%w: %s", ErrNoName, u)
	}

	name, err := filenamify.Filenamify(seg, filenamify.Options{
		MaxLength: MaxNameLength,
	})
	if err != nil {
		return "", err
	}
	if name == "" {
		return "", fmt.Errorf("%w: %s", ErrNoName, u)
	}

	return name, nil
}
