package crawler

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/alvmarrod/rank-weaver/internal/corpus"
	"github.com/alvmarrod/rank-weaver/internal/memory"
	"github.com/alvmarrod/rank-weaver/internal/storage"
	"github.com/gocolly/colly/v2"
	"github.com/sirupsen/logrus"
)

// Crawler builds a corpus from a directory of HTML pages
type Crawler struct {
	dir             string
	workers         int
	pages           map[string]bool
	graph           *memory.MemoryGraph
	collector       *colly.Collector
	metricsCallback func(pagesParsed, linksRecorded, pagesFailed int)
}

// NewCrawler creates a crawler over dir using at most workers parallel
// fetches. metricsCallback may be nil.
func NewCrawler(dir string, workers int, metricsCallback func(int, int, int)) (*Crawler, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid corpus directory: %w", err)
	}
	if workers < 1 {
		workers = 1
	}

	c := &Crawler{
		dir:             absDir,
		workers:         workers,
		pages:           make(map[string]bool),
		graph:           memory.NewMemoryGraph(),
		metricsCallback: metricsCallback,
	}

	c.setupColly()
	return c, nil
}

// setupColly configures the Colly collector with callbacks
func (c *Crawler) setupColly() {
	c.collector = colly.NewCollector(
		colly.Async(true),
		colly.MaxDepth(1), // only the pages Run visits; links are never followed
	)
	c.collector.WithTransport(fileTransport{})

	c.collector.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: c.workers,
	})

	// Page title becomes the node description
	c.collector.OnHTML("title", func(e *colly.HTMLElement) {
		page := PageName(e.Request.URL)
		if !c.pages[page] {
			return
		}

		title := strings.TrimSpace(e.Text)
		if len(title) > 60 {
			title = title[:60]
		}
		c.graph.UpsertNode(page, title)
	})

	// Extract links
	c.collector.OnHTML("a[href]", func(e *colly.HTMLElement) {
		source := PageName(e.Request.URL)
		if !c.pages[source] {
			return
		}

		target, ok := ResolveLink(c.dir, e.Request.URL.String(), e.Attr("href"), c.pages)
		if !ok {
			logrus.Debugf("Skipping link %q on %s", e.Attr("href"), source)
			return
		}
		c.handleLink(source, target)
	})

	c.collector.OnResponse(func(r *colly.Response) {
		page := PageName(r.Request.URL)
		if err := c.graph.IncrementCrawlCount(page); err != nil {
			logrus.Warnf("Fetched untracked page %s: %v", r.Request.URL, err)
			return
		}

		if node := c.graph.GetNode(page); node != nil && node.CrawlCount > 1 {
			logrus.Warnf("Page %s fetched %d times", page, node.CrawlCount)
		}

		logrus.Debugf("Parsed %s (%d bytes)", page, len(r.Body))
		if c.metricsCallback != nil {
			c.metricsCallback(1, 0, 0) // pagesParsed++
		}
	})

	c.collector.OnError(func(r *colly.Response, err error) {
		if r != nil && r.Request != nil {
			logrus.Errorf("Failed to parse %s: %v", r.Request.URL, err)
		} else {
			logrus.Errorf("Failed to parse page: %v", err)
		}
		if c.metricsCallback != nil {
			c.metricsCallback(0, 0, 1) // pagesFailed++
		}
	})
}

// handleLink records a single resolved link
func (c *Crawler) handleLink(source, target string) {
	recorded, err := c.graph.UpsertEdge(source, target)
	if err != nil {
		logrus.Warnf("Failed to record link %s -> %s: %v", source, target, err)
		return
	}
	if !recorded {
		return
	}

	if c.metricsCallback != nil {
		c.metricsCallback(0, 1, 0) // linksRecorded++
	}
	logrus.Debugf("Link: %s -> %s", source, target)
}

// Run visits every page of the directory and blocks until all are parsed.
// Pages are registered before any visit so that links between them resolve
// regardless of fetch order.
func (c *Crawler) Run(ctx context.Context) error {
	pages, err := ListPages(c.dir)
	if err != nil {
		return err
	}

	for _, page := range pages {
		c.pages[page] = true
		c.graph.UpsertNode(page, "")
	}
	logrus.Infof("Crawling %d pages in %s with %d workers", len(pages), c.dir, c.workers)

	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			c.collector.Wait()
			return err
		}
		if err := c.collector.Visit(PageURL(c.dir, page)); err != nil {
			logrus.Warnf("Visit failed for %s: %v", page, err)
		}
	}

	c.collector.Wait()

	nodes, edges := c.graph.GetStats()
	logrus.Infof("Crawl complete: %d pages, %d links", nodes, edges)
	return ctx.Err()
}

// Corpus snapshots the crawled pages into a corpus
func (c *Crawler) Corpus() *corpus.Corpus {
	return c.graph.Corpus()
}

// FlushToStorage writes the crawled graph to a crawl database
func (c *Crawler) FlushToStorage(store *storage.Storage) error {
	return c.graph.Flush(store)
}

// Crawl is a convenience wrapper that crawls dir and returns its corpus
func Crawl(ctx context.Context, dir string, workers int) (*corpus.Corpus, error) {
	c, err := NewCrawler(dir, workers, nil)
	if err != nil {
		return nil, err
	}
	if err := c.Run(ctx); err != nil {
		return nil, err
	}
	return c.Corpus(), nil
}

// fileTransport serves file:// requests from disk. http.NewFileTransport is
// not used because its file server redirects any path ending in index.html.
type fileTransport struct{}

func (fileTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Scheme != "file" {
		return nil, fmt.Errorf("unsupported scheme %q", req.URL.Scheme)
	}

	f, err := os.Open(filepath.FromSlash(req.URL.Path))
	if err != nil {
		return nil, err
	}

	return &http.Response{
		Status:        "200 OK",
		StatusCode:    http.StatusOK,
		Proto:         "HTTP/1.0",
		ProtoMajor:    1,
		Header:        http.Header{"Content-Type": []string{"text/html; charset=utf-8"}},
		Body:          f,
		ContentLength: -1,
		Request:       req,
	}, nil
}
