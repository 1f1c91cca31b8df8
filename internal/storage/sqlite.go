package storage

import (
	"database/sql"
	"fmt"

	"github.com/alvmarrod/rank-weaver/internal/corpus"
	_ "github.com/mattn/go-sqlite3"
)

// Storage handles all database operations
type Storage struct {
	db *sql.DB
}

// NewStorage creates a new Storage instance, opening/creating the DB and initializing schema
func NewStorage(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	storage := &Storage{db: db}

	if err := storage.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

// initSchema creates tables and indices if they don't exist
func (s *Storage) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS nodes (
		node_id INTEGER PRIMARY KEY AUTOINCREMENT,
		domain_name TEXT UNIQUE NOT NULL,
		description TEXT,
		crawl_count INTEGER DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS edges (
		edge_id INTEGER PRIMARY KEY AUTOINCREMENT,
		from_node_id INTEGER NOT NULL,
		to_node_id INTEGER NOT NULL,
		weight INTEGER DEFAULT 1,
		FOREIGN KEY (from_node_id) REFERENCES nodes(node_id),
		FOREIGN KEY (to_node_id) REFERENCES nodes(node_id),
		UNIQUE(from_node_id, to_node_id)
	);

	CREATE INDEX IF NOT EXISTS idx_nodes_domain ON nodes(domain_name);
	CREATE INDEX IF NOT EXISTS idx_edges_from ON edges(from_node_id);
	CREATE INDEX IF NOT EXISTS idx_edges_to ON edges(to_node_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// UpsertNode inserts a new node or updates a non-empty description if it exists.
// Returns the node_id of the inserted/existing node
func (s *Storage) UpsertNode(name, description string) (int, error) {
	_, err := s.db.Exec(`
		INSERT INTO nodes (domain_name, description, crawl_count)
		VALUES (?, ?, 0)
		ON CONFLICT(domain_name) DO UPDATE SET
			description = COALESCE(NULLIF(EXCLUDED.description, ''), nodes.description)
	`, name, description)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert node: %w", err)
	}

	var nodeID int
	err = s.db.QueryRow("SELECT node_id FROM nodes WHERE domain_name = ?", name).Scan(&nodeID)
	if err != nil {
		return 0, fmt.Errorf("failed to retrieve node_id: %w", err)
	}

	return nodeID, nil
}

// SetCrawlCount overwrites the crawl_count of a node
func (s *Storage) SetCrawlCount(nodeID, count int) error {
	_, err := s.db.Exec("UPDATE nodes SET crawl_count = ? WHERE node_id = ?", count, nodeID)
	if err != nil {
		return fmt.Errorf("failed to set crawl count: %w", err)
	}
	return nil
}

// GetNode retrieves a node by name, returns nil if not found
func (s *Storage) GetNode(name string) (*Node, error) {
	var node Node
	var description sql.NullString
	err := s.db.QueryRow(`
		SELECT node_id, domain_name, description, crawl_count, created_at
		FROM nodes
		WHERE domain_name = ?
	`, name).Scan(&node.NodeID, &node.Name, &description, &node.CrawlCount, &node.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get node: %w", err)
	}
	node.Description = description.String

	return &node, nil
}

// UpsertEdge inserts a new edge or adds weight to an existing one
func (s *Storage) UpsertEdge(fromID, toID, weight int) error {
	_, err := s.db.Exec(`
		INSERT INTO edges (from_node_id, to_node_id, weight)
		VALUES (?, ?, ?)
		ON CONFLICT(from_node_id, to_node_id) DO UPDATE SET
			weight = weight + EXCLUDED.weight
	`, fromID, toID, weight)

	if err != nil {
		return fmt.Errorf("failed to upsert edge: %w", err)
	}
	return nil
}

// LoadNodes returns every node ordered by creation
func (s *Storage) LoadNodes() ([]*Node, error) {
	rows, err := s.db.Query(`
		SELECT node_id, domain_name, description, crawl_count, created_at
		FROM nodes
		ORDER BY created_at ASC, node_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load nodes: %w", err)
	}
	defer rows.Close()

	var nodes []*Node
	for rows.Next() {
		var node Node
		var description sql.NullString
		if err := rows.Scan(&node.NodeID, &node.Name, &description, &node.CrawlCount, &node.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}
		node.Description = description.String
		nodes = append(nodes, &node)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating nodes: %w", err)
	}

	return nodes, nil
}

// LoadEdges returns every edge in the database
func (s *Storage) LoadEdges() ([]*Edge, error) {
	rows, err := s.db.Query(`
		SELECT edge_id, from_node_id, to_node_id, weight
		FROM edges
		ORDER BY edge_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load edges: %w", err)
	}
	defer rows.Close()

	var edges []*Edge
	for rows.Next() {
		var edge Edge
		if err := rows.Scan(&edge.EdgeID, &edge.FromNodeID, &edge.ToNodeID, &edge.Weight); err != nil {
			return nil, fmt.Errorf("failed to scan edge: %w", err)
		}
		edges = append(edges, &edge)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating edges: %w", err)
	}

	return edges, nil
}

// LoadCorpus builds a corpus from every node and edge in the database.
// Edge weights are ignored: a page either links to another or it does not.
func (s *Storage) LoadCorpus() (*corpus.Corpus, error) {
	nodes, err := s.LoadNodes()
	if err != nil {
		return nil, err
	}
	edges, err := s.LoadEdges()
	if err != nil {
		return nil, err
	}

	names := make(map[int]string, len(nodes))
	links := make(map[string][]string, len(nodes))
	for _, node := range nodes {
		names[node.NodeID] = node.Name
		links[node.Name] = nil
	}

	for _, edge := range edges {
		from, fromExists := names[edge.FromNodeID]
		to, toExists := names[edge.ToNodeID]
		if !fromExists || !toExists {
			return nil, fmt.Errorf("edge %d references a missing node", edge.EdgeID)
		}
		links[from] = append(links[from], to)
	}

	return corpus.New(links), nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}
