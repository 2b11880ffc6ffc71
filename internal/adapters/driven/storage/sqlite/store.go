package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/kush-lhmm/sampann-search/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/kush-lhmm/sampann-search/internal/adapters/driven/storage/vecmath"
	"github.com/kush-lhmm/sampann-search/internal/core/domain"
	"github.com/kush-lhmm/sampann-search/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to the
// card store and passage index through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.sampann/data/catalog.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".sampann", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "catalog.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// CardStore returns a CardStore interface backed by this store.
func (s *Store) CardStore() driven.CardStore {
	return &cardStore{store: s}
}

// PassageIndex returns a PassageIndex interface backed by this store.
// Closing the index does not close the store.
func (s *Store) PassageIndex() driven.PassageIndex {
	return &passageIndex{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys fs.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Card Store ====================

// cardStore implements driven.CardStore.
type cardStore struct {
	store *Store
}

var _ driven.CardStore = (*cardStore)(nil)

// SaveCards inserts or replaces cards in one transaction.
func (s *cardStore) SaveCards(ctx context.Context, cards []domain.ProductCard) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cards (sku_id, brand, title, category, net_value, net_unit, mrp,
			link, description, claims, dietary_tags, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(sku_id) DO UPDATE SET
			brand = excluded.brand,
			title = excluded.title,
			category = excluded.category,
			net_value = excluded.net_value,
			net_unit = excluded.net_unit,
			mrp = excluded.mrp,
			link = excluded.link,
			description = excluded.description,
			claims = excluded.claims,
			dietary_tags = excluded.dietary_tags,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, card := range cards {
		claimsJSON, err := json.Marshal(card.Claims)
		if err != nil {
			return fmt.Errorf("marshalling claims: %w", err)
		}
		tagsJSON, err := json.Marshal(card.DietaryTags)
		if err != nil {
			return fmt.Errorf("marshalling dietary tags: %w", err)
		}

		var netValue sql.NullFloat64
		var netUnit sql.NullString
		if card.NetQuantity != nil {
			netValue = sql.NullFloat64{Float64: card.NetQuantity.Value, Valid: true}
			netUnit = sql.NullString{String: card.NetQuantity.Unit, Valid: true}
		}
		var mrp sql.NullFloat64
		if card.MRP != nil {
			mrp = sql.NullFloat64{Float64: *card.MRP, Valid: true}
		}

		if _, err := stmt.ExecContext(ctx, card.SKUID, card.Brand, card.Title, card.Category,
			netValue, netUnit, mrp, card.Link, card.Description,
			string(claimsJSON), string(tagsJSON)); err != nil {
			return fmt.Errorf("saving card %s: %w", card.SKUID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetCard retrieves a card by SKU.
func (s *cardStore) GetCard(ctx context.Context, skuID string) (*domain.ProductCard, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT sku_id, brand, title, category, net_value, net_unit, mrp,
			link, description, claims, dietary_tags
		FROM cards WHERE sku_id = ?
	`, skuID)

	card, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return card, err
}

// ListCards returns every card ordered by SKU.
func (s *cardStore) ListCards(ctx context.Context) ([]domain.ProductCard, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT sku_id, brand, title, category, net_value, net_unit, mrp,
			link, description, claims, dietary_tags
		FROM cards ORDER BY sku_id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying cards: %w", err)
	}
	defer rows.Close()

	var cards []domain.ProductCard //nolint:prealloc // size unknown from query
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, *card)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating cards: %w", err)
	}

	return cards, nil
}

// CountCards returns the number of stored cards.
func (s *cardStore) CountCards(ctx context.Context) (int, error) {
	var n int
	if err := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM cards").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting cards: %w", err)
	}
	return n, nil
}

// ==================== Passage Index ====================

// passageIndex implements driven.PassageIndex with an exhaustive cosine scan.
type passageIndex struct {
	store *Store
}

var _ driven.PassageIndex = (*passageIndex)(nil)

// Upsert stores passages with their embeddings in one transaction.
func (x *passageIndex) Upsert(ctx context.Context, passages []domain.Passage, embeddings [][]float32) error {
	if len(passages) != len(embeddings) {
		return fmt.Errorf("%d passages but %d embeddings", len(passages), len(embeddings))
	}

	tx, err := x.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO passages (id, sku_id, section, content, category, metadata, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			sku_id = excluded.sku_id,
			section = excluded.section,
			content = excluded.content,
			category = excluded.category,
			metadata = excluded.metadata,
			embedding = excluded.embedding
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i, p := range passages {
		metadataJSON, err := json.Marshal(p.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling passage metadata: %w", err)
		}

		if _, err := stmt.ExecContext(ctx, p.ID, p.SKUID, p.Section, p.Text,
			p.Metadata["category"], string(metadataJSON), vecmath.Encode(embeddings[i])); err != nil {
			return fmt.Errorf("saving passage %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Search scans every passage (optionally within one category) and returns
// the k nearest by cosine distance. Ties are broken by passage ID.
func (x *passageIndex) Search(
	ctx context.Context, query []float32, k int, filter driven.PassageFilter,
) ([]driven.PassageMatch, error) {
	if k <= 0 {
		return nil, nil
	}

	q := "SELECT id, sku_id, section, content, metadata, embedding FROM passages"
	var args []any
	if filter.Category != "" {
		q += " WHERE category = ?"
		args = append(args, filter.Category)
	}

	rows, err := x.store.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying passages: %w", err)
	}
	defer rows.Close()

	var matches []driven.PassageMatch //nolint:prealloc // size unknown from query
	for rows.Next() {
		var p domain.Passage
		var metadataJSON string
		var blob []byte
		if err := rows.Scan(&p.ID, &p.SKUID, &p.Section, &p.Text, &metadataJSON, &blob); err != nil {
			return nil, fmt.Errorf("scanning passage: %w", err)
		}

		vec, err := vecmath.Decode(blob)
		if err != nil {
			return nil, fmt.Errorf("decoding passage %s: %w", p.ID, err)
		}
		if metadataJSON != "" {
			if err := json.Unmarshal([]byte(metadataJSON), &p.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshaling passage metadata: %w", err)
			}
		}

		matches = append(matches, driven.PassageMatch{
			Passage:  p,
			Distance: vecmath.CosineDistance(query, vec),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating passages: %w", err)
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].Passage.ID < matches[j].Passage.ID
	})
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// Count returns the number of indexed passages.
func (x *passageIndex) Count(ctx context.Context) (int, error) {
	var n int
	if err := x.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM passages").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting passages: %w", err)
	}
	return n, nil
}

// Close is a no-op; the owning Store holds the connection.
func (x *passageIndex) Close() error {
	return nil
}

// ==================== Helper Functions ====================

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanCard scans a single card row.
func scanCard(row rowScanner) (*domain.ProductCard, error) {
	var card domain.ProductCard
	var netValue, mrp sql.NullFloat64
	var netUnit sql.NullString
	var claimsJSON, tagsJSON string

	if err := row.Scan(&card.SKUID, &card.Brand, &card.Title, &card.Category,
		&netValue, &netUnit, &mrp, &card.Link, &card.Description,
		&claimsJSON, &tagsJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning card: %w", err)
	}

	if netValue.Valid && netUnit.Valid {
		card.NetQuantity = &domain.NetQuantity{Value: netValue.Float64, Unit: netUnit.String}
	}
	if mrp.Valid {
		v := mrp.Float64
		card.MRP = &v
	}

	if claimsJSON != "" {
		if err := json.Unmarshal([]byte(claimsJSON), &card.Claims); err != nil {
			return nil, fmt.Errorf("unmarshaling claims: %w", err)
		}
	}
	if tagsJSON != "" {
		if err := json.Unmarshal([]byte(tagsJSON), &card.DietaryTags); err != nil {
			return nil, fmt.Errorf("unmarshaling dietary tags: %w", err)
		}
	}

	return &card, nil
}
