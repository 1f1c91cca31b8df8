package crawler

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"gotest.tools/v3/assert"
)

func TestResolveLink(t *testing.T) {
	t.Parallel()
	dir := "/corpus"
	source := PageURL(dir, "a.html")
	pages := map[string]bool{"a.html": true, "b.html": true, "c d.html": true}

	tests := []struct {
		href string
		want string
		ok   bool
	}{
		{href: "b.html", want: "b.html", ok: true},
		{href: "./b.html", want: "b.html", ok: true},
		{href: "b.html#top", want: "b.html", ok: true},
		{href: "b.html?page=2", want: "b.html", ok: true},
		{href: "/corpus/b.html", want: "b.html", ok: true},
		{href: "c%20d.html", want: "c d.html", ok: true},
		{href: "a.html", want: "a.html", ok: true},
		{href: "", ok: false},
		{href: "#top", ok: false},
		{href: "missing.html", ok: false},
		{href: "sub/b.html", ok: false},
		{href: "../b.html", ok: false},
		{href: "https://example.com/b.html", ok: false},
		{href: "mailto:someone@example.com", ok: false},
	}

	for _, tt := range tests {
		got, ok := ResolveLink(dir, source, tt.href, pages)
		assert.Equal(t, ok, tt.ok, "href %q", tt.href)
		assert.Equal(t, got, tt.want, "href %q", tt.href)
	}
}

func TestListPages(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	for _, name := range []string{"b.html", "a.html", "readme.md", "page.HTML"} {
		assert.NilError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}
	assert.NilError(t, os.Mkdir(filepath.Join(dir, "nested.html"), 0755))

	pages, err := ListPages(dir)
	assert.NilError(t, err)
	assert.DeepEqual(t, pages, []string{"a.html", "b.html"})
}

func TestPageURL(t *testing.T) {
	t.Parallel()
	raw := PageURL("/tmp/my corpus", "1.html")
	u, err := url.Parse(raw)
	assert.NilError(t, err)
	assert.Equal(t, u.Scheme, "file")
	assert.Equal(t, u.Path, "/tmp/my corpus/1.html")
	assert.Equal(t, PageName(u), "1.html")
}
