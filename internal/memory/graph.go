package memory

import (
	"fmt"
	"sync"
	"time"

	"github.com/alvmarrod/rank-weaver/internal/corpus"
	"github.com/alvmarrod/rank-weaver/internal/storage"
	"github.com/sirupsen/logrus"
)

// MemoryGraph accumulates pages and links in memory while a corpus is
// discovered. It is safe for concurrent use by crawler callbacks.
type MemoryGraph struct {
	nodes       map[string]*storage.Node // page -> node
	nodesById   map[int]*storage.Node    // nodeID -> node
	edges       map[[2]int]int           // {fromID, toID} -> weight
	nodeCounter int                      // auto-increment for node IDs
	mu          sync.RWMutex
}

// NewMemoryGraph creates a new in-memory graph
func NewMemoryGraph() *MemoryGraph {
	return &MemoryGraph{
		nodes:     make(map[string]*storage.Node),
		nodesById: make(map[int]*storage.Node),
		edges:     make(map[[2]int]int),
	}
}

// UpsertNode inserts a page or fills in its description if it was empty.
// Returns the node_id of the inserted/existing node
func (mg *MemoryGraph) UpsertNode(page, description string) int {
	mg.mu.Lock()
	defer mg.mu.Unlock()

	if node, exists := mg.nodes[page]; exists {
		if description != "" && node.Description == "" {
			node.Description = description
		}
		return node.NodeID
	}

	mg.nodeCounter++
	node := &storage.Node{
		NodeID:      mg.nodeCounter,
		Name:        page,
		Description: description,
		CreatedAt:   time.Now(),
	}

	mg.nodes[page] = node
	mg.nodesById[node.NodeID] = node

	return node.NodeID
}

// GetNode retrieves a copy of a page's node, or nil if unknown
func (mg *MemoryGraph) GetNode(page string) *storage.Node {
	mg.mu.RLock()
	defer mg.mu.RUnlock()

	if node, exists := mg.nodes[page]; exists {
		nodeCopy := *node
		return &nodeCopy
	}
	return nil
}

// IncrementCrawlCount marks one more fetch of a page
func (mg *MemoryGraph) IncrementCrawlCount(page string) error {
	mg.mu.Lock()
	defer mg.mu.Unlock()

	node, exists := mg.nodes[page]
	if !exists {
		return fmt.Errorf("page %q not found", page)
	}

	node.CrawlCount++
	return nil
}

// UpsertEdge records a link between two known pages, incrementing its weight
// when seen again. Self-links are ignored and reported as not recorded.
func (mg *MemoryGraph) UpsertEdge(from, to string) (bool, error) {
	mg.mu.Lock()
	defer mg.mu.Unlock()

	source, exists := mg.nodes[from]
	if !exists {
		return false, fmt.Errorf("source page %q not found", from)
	}
	target, exists := mg.nodes[to]
	if !exists {
		return false, fmt.Errorf("target page %q not found", to)
	}
	if source.NodeID == target.NodeID {
		return false, nil
	}

	mg.edges[[2]int{source.NodeID, target.NodeID}]++
	return true, nil
}

// GetStats returns current graph statistics
func (mg *MemoryGraph) GetStats() (nodeCount, edgeCount int) {
	mg.mu.RLock()
	defer mg.mu.RUnlock()

	return len(mg.nodes), len(mg.edges)
}

// Corpus snapshots the graph into an immutable corpus
func (mg *MemoryGraph) Corpus() *corpus.Corpus {
	mg.mu.RLock()
	defer mg.mu.RUnlock()

	links := make(map[string][]string, len(mg.nodes))
	for page := range mg.nodes {
		links[page] = nil
	}
	for key := range mg.edges {
		from := mg.nodesById[key[0]].Name
		to := mg.nodesById[key[1]].Name
		links[from] = append(links[from], to)
	}

	return corpus.New(links)
}

// Flush writes all in-memory pages and links to SQLite storage
func (mg *MemoryGraph) Flush(store *storage.Storage) error {
	mg.mu.RLock()
	defer mg.mu.RUnlock()

	startTime := time.Now()
	logrus.Info("Starting flush to database...")

	nodesWritten := 0
	edgesWritten := 0
	var firstErr error

	// memory ID -> DB ID
	idMap := make(map[int]int, len(mg.nodes))

	for _, node := range mg.nodes {
		dbID, err := store.UpsertNode(node.Name, node.Description)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			logrus.Warnf("Failed to flush node %s: %v", node.Name, err)
			continue
		}
		idMap[node.NodeID] = dbID

		if err := store.SetCrawlCount(dbID, node.CrawlCount); err != nil {
			logrus.Warnf("Failed to set crawl count for %s: %v", node.Name, err)
		}

		nodesWritten++
	}

	for key, weight := range mg.edges {
		dbFromID, fromExists := idMap[key[0]]
		dbToID, toExists := idMap[key[1]]

		if !fromExists || !toExists {
			logrus.Warnf("Skipping edge %d->%d: node ID mapping not found", key[0], key[1])
			continue
		}

		if err := store.UpsertEdge(dbFromID, dbToID, weight); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			logrus.Warnf("Failed to flush edge %d->%d: %v", dbFromID, dbToID, err)
			continue
		}

		edgesWritten++
	}

	duration := time.Since(startTime)
	logrus.Infof("Flush complete: %d nodes, %d edges written in %v", nodesWritten, edgesWritten, duration)

	return firstErr
}
