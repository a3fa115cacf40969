package web

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/ccollins476ad/docmirror/download"
	log "github.com/sirupsen/logrus"
	"golang.org/x/net/html"
	"mvdan.cc/xurls/v2"
)

// DefaultExtensions lists the resource file extensions collected when none
// are configured.
var DefaultExtensions = []string{".pdf"}

// Lister discovers resource urls from a single listing page.
type Lister struct {
	hc   *http.Client
	page string   // Listing page url.
	exts []string // Lowercase extensions with leading dot.
}

// NewLister returns a lister for the given page. Only links whose path ends
// in one of exts are kept; an empty exts selects DefaultExtensions.
func NewLister(hc *http.Client, page string, exts []string) *Lister {
	if hc == nil {
		hc = &http.Client{}
	}
	if len(exts) == 0 {
		exts = DefaultExtensions
	}

	norm := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		norm = append(norm, e)
	}

	return &Lister{
		hc:   hc,
		page: page,
		exts: norm,
	}
}

// Discover fetches the listing page and returns the absolute urls of the
// resources it links to, in first-seen order with duplicates removed. Links
// are taken from `a href` elements; if the page has none (e.g., a plain text
// listing) urls are extracted from the raw body instead.
func (l *Lister) Discover(ctx context.Context) ([]string, error) {
	base, err := url.Parse(l.page)
	if err != nil {
		return nil, fmt.Errorf("invalid listing url: %w", err)
	}

	body, err := download.GetBody(ctx, l.hc, l.page, nil)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	b, err := io.ReadAll(download.NewContextReader(ctx, body))
	if err != nil {
		return nil, fmt.Errorf("failed to read listing: %w", err)
	}

	doc, err := html.Parse(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing: %w", err)
	}

	var links []string
	ForEachLink(doc, func(n *html.Node) error {
		links = append(links, LinkHref(n))
		return nil
	})

	if len(links) == 0 {
		log.Debugf("no anchors in listing; scanning raw text: %s", l.page)
		links = xurls.Strict().FindAllString(string(b), -1)
	}

	return l.filter(base, links), nil
}

func (l *Lister) filter(base *url.URL, links []string) []string {
	seen := map[string]struct{}{}
	var out []string

	for _, link := range links {
		ref, err := url.Parse(strings.TrimSpace(link))
		if err != nil {
			log.Debugf("skipping unparseable link: %s", link)
			continue
		}

		abs := base.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			continue
		}
		abs.Fragment = ""

		if !l.wanted(abs.Path) {
			continue
		}

		s := abs.String()
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	return out
}

func (l *Lister) wanted(p string) bool {
	ext := strings.ToLower(path.Ext(p))
	for _, e := range l.exts {
		if ext == e {
			return true
		}
	}
	return false
}
