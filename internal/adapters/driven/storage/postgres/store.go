package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/pgvector/pgvector-go"

	"github.com/kush-lhmm/sampann-search/internal/core/domain"
	"github.com/kush-lhmm/sampann-search/internal/core/ports/driven"
)

//go:embed schema.sql
var schemaSQL string

// initTimeout bounds schema creation at startup.
const initTimeout = 10 * time.Second

// Store is a PostgreSQL-backed storage that provides access to the
// card store and passage index through wrapper types.
type Store struct {
	db         *sql.DB
	dimensions int
}

// NewStore connects to dsn and creates the schema if needed.
// dimensions fixes the width of the embedding column; it must match the
// embedding model in use.
func NewStore(ctx context.Context, dsn string, dimensions int) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is empty: %w", domain.ErrInvalidInput)
	}
	if dimensions <= 0 {
		return nil, fmt.Errorf("embedding dimensions must be positive: %w", domain.ErrInvalidInput)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, initTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf(schemaSQL, dimensions)); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db, dimensions: dimensions}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Dimensions returns the embedding width the schema was created with.
func (s *Store) Dimensions() int {
	return s.dimensions
}

// CardStore returns a CardStore interface backed by this store.
func (s *Store) CardStore() driven.CardStore {
	return &cardStore{db: s.db}
}

// PassageIndex returns a PassageIndex interface backed by this store.
// Closing the index does not close the store.
func (s *Store) PassageIndex() driven.PassageIndex {
	return &passageIndex{db: s.db}
}

// ==================== Card Store ====================

type cardStore struct {
	db *sql.DB
}

var _ driven.CardStore = (*cardStore)(nil)

// SaveCards inserts or replaces cards in one transaction.
func (s *cardStore) SaveCards(ctx context.Context, cards []domain.ProductCard) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cards (sku_id, brand, title, category, net_value, net_unit, mrp,
			link, description, claims, dietary_tags, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now())
		ON CONFLICT (sku_id) DO UPDATE SET
			brand = EXCLUDED.brand,
			title = EXCLUDED.title,
			category = EXCLUDED.category,
			net_value = EXCLUDED.net_value,
			net_unit = EXCLUDED.net_unit,
			mrp = EXCLUDED.mrp,
			link = EXCLUDED.link,
			description = EXCLUDED.description,
			claims = EXCLUDED.claims,
			dietary_tags = EXCLUDED.dietary_tags,
			updated_at = EXCLUDED.updated_at
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, card := range cards {
		claims := card.Claims
		if claims == nil {
			claims = []domain.Claim{}
		}
		claimsJSON, err := json.Marshal(claims)
		if err != nil {
			return fmt.Errorf("marshalling claims: %w", err)
		}
		tags := card.DietaryTags
		if tags == nil {
			tags = []string{}
		}
		tagsJSON, err := json.Marshal(tags)
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
			netValue, netUnit, mrp, card.Link, card.Description, claimsJSON, tagsJSON); err != nil {
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
	row := s.db.QueryRowContext(ctx, `
		SELECT sku_id, brand, title, category, net_value, net_unit, mrp,
			link, description, claims, dietary_tags
		FROM cards WHERE sku_id = $1
	`, skuID)

	card, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return card, err
}

// ListCards returns every card ordered by SKU.
func (s *cardStore) ListCards(ctx context.Context) ([]domain.ProductCard, error) {
	rows, err := s.db.QueryContext(ctx, `
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
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM cards").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting cards: %w", err)
	}
	return n, nil
}

// ==================== Passage Index ====================

// passageIndex implements driven.PassageIndex on a pgvector column.
type passageIndex struct {
	db *sql.DB
}

var _ driven.PassageIndex = (*passageIndex)(nil)

// Upsert stores passages with their embeddings in one transaction.
func (x *passageIndex) Upsert(ctx context.Context, passages []domain.Passage, embeddings [][]float32) error {
	if len(passages) != len(embeddings) {
		return fmt.Errorf("%d passages but %d embeddings", len(passages), len(embeddings))
	}

	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO passages (id, sku_id, section, content, category, metadata, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			sku_id = EXCLUDED.sku_id,
			section = EXCLUDED.section,
			content = EXCLUDED.content,
			category = EXCLUDED.category,
			metadata = EXCLUDED.metadata,
			embedding = EXCLUDED.embedding
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i, p := range passages {
		metadata := p.Metadata
		if metadata == nil {
			metadata = map[string]string{}
		}
		metadataJSON, err := json.Marshal(metadata)
		if err != nil {
			return fmt.Errorf("marshalling passage metadata: %w", err)
		}

		if _, err := stmt.ExecContext(ctx, p.ID, p.SKUID, p.Section, p.Text,
			p.Metadata["category"], metadataJSON, pgvector.NewVector(embeddings[i])); err != nil {
			return fmt.Errorf("saving passage %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Search returns the k nearest passages by cosine distance.
// Ties are broken by passage ID.
func (x *passageIndex) Search(
	ctx context.Context, query []float32, k int, filter driven.PassageFilter,
) ([]driven.PassageMatch, error) {
	if k <= 0 {
		return nil, nil
	}

	q := `SELECT id, sku_id, section, content, metadata, embedding <=> $1 AS distance FROM passages`
	args := []any{pgvector.NewVector(query), k}
	if filter.Category != "" {
		q += ` WHERE category = $3`
		args = append(args, filter.Category)
	}
	q += ` ORDER BY distance, id LIMIT $2`

	rows, err := x.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying passages: %w", err)
	}
	defer rows.Close()

	matches := make([]driven.PassageMatch, 0, k)
	for rows.Next() {
		var p domain.Passage
		var metadataJSON []byte
		var distance float64
		if err := rows.Scan(&p.ID, &p.SKUID, &p.Section, &p.Text, &metadataJSON, &distance); err != nil {
			return nil, fmt.Errorf("scanning passage: %w", err)
		}
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &p.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshaling passage metadata: %w", err)
			}
		}
		matches = append(matches, driven.PassageMatch{Passage: p, Distance: distance})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating passages: %w", err)
	}
	return matches, nil
}

// Count returns the number of indexed passages.
func (x *passageIndex) Count(ctx context.Context) (int, error) {
	var n int
	if err := x.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM passages").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting passages: %w", err)
	}
	return n, nil
}

// Close is a no-op; the owning Store holds the connection.
func (x *passageIndex) Close() error {
	return nil
}

// ==================== Helper Functions ====================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (*domain.ProductCard, error) {
	var card domain.ProductCard
	var netValue, mrp sql.NullFloat64
	var netUnit sql.NullString
	var claimsJSON, tagsJSON []byte

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

	if err := json.Unmarshal(claimsJSON, &card.Claims); err != nil {
		return nil, fmt.Errorf("unmarshaling claims: %w", err)
	}
	if err := json.Unmarshal(tagsJSON, &card.DietaryTags); err != nil {
		return nil, fmt.Errorf("unmarshaling dietary tags: %w", err)
	}
	if len(card.Claims) == 0 {
		card.Claims = nil
	}
	if len(card.DietaryTags) == 0 {
		card.DietaryTags = nil
	}

	return &card, nil
}
