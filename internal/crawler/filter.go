package crawler

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// PageSuffix marks the files of a directory that belong to the corpus
const PageSuffix = ".html"

// ListPages returns the names of the corpus pages in dir, sorted.
// Only regular files ending in PageSuffix count; subdirectories are not
// descended into.
func ListPages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus directory: %w", err)
	}

	var pages []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !strings.HasSuffix(entry.Name(), PageSuffix) {
			continue
		}
		pages = append(pages, entry.Name())
	}
	return pages, nil
}

// PageURL returns the file:// URL of a page in dir
func PageURL(dir, page string) string {
	u := url.URL{
		Scheme: "file",
		Path:   filepath.ToSlash(filepath.Join(dir, page)),
	}
	return u.String()
}

// ResolveLink resolves href as found on the page at sourceURL and returns
// the name of the corpus page it points to. ok is false for links that leave
// dir, use another scheme, or name a file outside pages. Query strings and
// fragments are ignored.
func ResolveLink(dir, sourceURL, href string, pages map[string]bool) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}

	base, err := url.Parse(sourceURL)
	if err != nil {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}

	target := base.ResolveReference(ref)
	if target.Scheme != "file" || target.Host != "" {
		return "", false
	}
	if path.Dir(target.Path) != filepath.ToSlash(filepath.Clean(dir)) {
		return "", false
	}

	name := path.Base(target.Path)
	if !pages[name] {
		return "", false
	}
	return name, true
}

// PageName returns the corpus page a file:// URL refers to
func PageName(u *url.URL) string {
	return path.Base(u.Path)
}
