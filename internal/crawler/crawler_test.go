package crawler

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/alvmarrod/rank-weaver/internal/storage"
	"gotest.tools/v3/assert"
)

func writeCorpus(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, contents := range files {
		assert.NilError(t, os.WriteFile(filepath.Join(dir, name), []byte(contents), 0644))
	}
	return dir
}

var sampleFiles = map[string]string{
	"1.html": `<html><head><title>One</title></head><body>
		<a href="2.html">Two</a>
		<a href="1.html">Self</a>
		<a href="https://example.com/3.html">External</a>
	</body></html>`,
	"2.html": `<html><body>
		<a href="1.html">One</a>
		<a href="./3.html#section">Three</a>
		<a href="missing.html">Missing</a>
		<a href="notes.txt">Notes</a>
	</body></html>`,
	"3.html": `<html><body><a href="index.html?x=1">Index</a><a href="2.html">Two</a></body></html>`,
	"index.html": `<html><body><p>No links here.</p></body></html>`,
	"notes.txt":  `<a href="1.html">ignored</a>`,
}

func TestCrawl(t *testing.T) {
	t.Parallel()
	dir := writeCorpus(t, sampleFiles)

	c, err := Crawl(context.Background(), dir, 2)
	assert.NilError(t, err)

	assert.DeepEqual(t, c.Pages(), []string{"1.html", "2.html", "3.html", "index.html"})
	assert.DeepEqual(t, c.Links("1.html"), []string{"2.html"})
	assert.DeepEqual(t, c.Links("2.html"), []string{"1.html", "3.html"})
	assert.DeepEqual(t, c.Links("3.html"), []string{"2.html", "index.html"})
	assert.DeepEqual(t, c.Links("index.html"), []string{})
}

func TestCrawlerMetricsAndFlush(t *testing.T) {
	t.Parallel()
	dir := writeCorpus(t, sampleFiles)

	var mu sync.Mutex
	var parsed, links, failed int
	cr, err := NewCrawler(dir, 3, func(p, l, f int) {
		mu.Lock()
		defer mu.Unlock()
		parsed += p
		links += l
		failed += f
	})
	assert.NilError(t, err)
	assert.NilError(t, cr.Run(context.Background()))

	assert.Equal(t, parsed, 4)
	assert.Equal(t, links, 5)
	assert.Equal(t, failed, 0)

	store, err := storage.NewStorage(filepath.Join(t.TempDir(), "corpus.db"))
	assert.NilError(t, err)
	defer store.Close()
	assert.NilError(t, cr.FlushToStorage(store))

	node, err := store.GetNode("1.html")
	assert.NilError(t, err)
	assert.Equal(t, node.Description, "One")
	assert.Equal(t, node.CrawlCount, 1)

	loaded, err := store.LoadCorpus()
	assert.NilError(t, err)
	assert.DeepEqual(t, loaded.Edges(), cr.Corpus().Edges())
}

func TestCrawlEmptyDirectory(t *testing.T) {
	t.Parallel()
	c, err := Crawl(context.Background(), t.TempDir(), 1)
	assert.NilError(t, err)
	assert.Equal(t, c.Len(), 0)
}

func TestCrawlMissingDirectory(t *testing.T) {
	t.Parallel()
	_, err := Crawl(context.Background(), filepath.Join(t.TempDir(), "nope"), 1)
	assert.ErrorContains(t, err, "failed to read corpus directory")
}

func TestCrawlCancelled(t *testing.T) {
	t.Parallel()
	dir := writeCorpus(t, sampleFiles)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Crawl(ctx, dir, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCrawlVisitsEachPageOnce(t *testing.T) {
	t.Parallel()
	dir := writeCorpus(t, sampleFiles)

	cr, err := NewCrawler(dir, 2, nil)
	assert.NilError(t, err)
	assert.Equal(t, cr.collector.MaxDepth, 1)
	assert.NilError(t, cr.Run(context.Background()))

	for _, page := range cr.Corpus().Pages() {
		node := cr.graph.GetNode(page)
		assert.Assert(t, node != nil, page)
		assert.Equal(t, node.CrawlCount, 1, page)
	}
}
