package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotlist/internal/models"
	"github.com/desertthunder/spotlist/internal/shared"
)

// CollectionRepository persists completed paginated collections keyed by canonical request identity.
//
// It satisfies the catalog collection cache contract: rows are write-once while live, and an expired row is
// replaced by the next write.
type CollectionRepository struct {
	db     *sql.DB
	ttl    time.Duration
	now    func() time.Time
	logger *log.Logger
}

// NewCollectionRepository creates a repository whose new rows expire after ttl. A zero ttl never expires rows.
func NewCollectionRepository(db *sql.DB, ttl time.Duration, logger *log.Logger) *CollectionRepository {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &CollectionRepository{db: db, ttl: ttl, now: time.Now, logger: logger}
}

// Load retrieves the snapshot and items stored for identity, expired or not.
func (r *CollectionRepository) Load(identity string) (*models.CollectionSnapshot, []json.RawMessage, error) {
	query := `
		SELECT id, identity, endpoint, items, item_count, created_at, expires_at
		FROM collections
		WHERE identity = ?
	`

	var (
		snapshot  models.CollectionSnapshot
		body      string
		expiresAt sql.NullTime
	)
	err := r.db.QueryRow(query, identity).Scan(
		&snapshot.ID, &snapshot.Identity, &snapshot.Endpoint, &body, &snapshot.ItemCount, &snapshot.CreatedAt, &expiresAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("%w: %s", shared.ErrCollectionNotFound, identity)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to scan collection: %w", err)
	}
	if expiresAt.Valid {
		snapshot.ExpiresAt = &expiresAt.Time
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(body), &items); err != nil {
		return nil, nil, fmt.Errorf("failed to decode collection %s: %w", identity, err)
	}
	if items == nil {
		items = []json.RawMessage{}
	}
	return &snapshot, items, nil
}

// Get returns the items of a live collection. Missing, expired, and unreadable rows are all misses.
func (r *CollectionRepository) Get(identity string) ([]json.RawMessage, bool) {
	snapshot, items, err := r.Load(identity)
	if err != nil {
		if !errors.Is(err, shared.ErrCollectionNotFound) {
			r.logger.Warn("failed to read cached collection", "identity", identity, "error", err)
		}
		return nil, false
	}
	if r.expired(snapshot) {
		return nil, false
	}
	return items, true
}

// Put stores items under identity unless a live row already exists. An expired row is replaced.
func (r *CollectionRepository) Put(identity string, items []json.RawMessage) error {
	if items == nil {
		items = []json.RawMessage{}
	}
	body, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode collection: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var expiresAt sql.NullTime
	err = tx.QueryRow("SELECT expires_at FROM collections WHERE identity = ?", identity).Scan(&expiresAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("failed to check collection: %w", err)
	case !expiresAt.Valid || !r.now().After(expiresAt.Time):
		return nil
	default:
		if _, err := tx.Exec("DELETE FROM collections WHERE identity = ?", identity); err != nil {
			return fmt.Errorf("failed to replace expired collection: %w", err)
		}
	}

	now := r.now().UTC()
	var expires any
	if r.ttl > 0 {
		expires = now.Add(r.ttl)
	}

	endpoint, _, _ := strings.Cut(identity, "?")
	query := `
		INSERT INTO collections (id, identity, endpoint, items, item_count, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := tx.Exec(query, shared.GenerateID(), identity, endpoint, string(body), len(items), now, expires); err != nil {
		return fmt.Errorf("failed to insert collection: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit collection: %w", err)
	}
	return nil
}

// List returns every stored snapshot, oldest first.
func (r *CollectionRepository) List() ([]models.CollectionSnapshot, error) {
	query := `
		SELECT id, identity, endpoint, item_count, created_at, expires_at
		FROM collections
		ORDER BY created_at ASC, identity ASC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query collections: %w", err)
	}
	defer rows.Close()

	snapshots := []models.CollectionSnapshot{}
	for rows.Next() {
		var (
			s         models.CollectionSnapshot
			expiresAt sql.NullTime
		)
		if err := rows.Scan(&s.ID, &s.Identity, &s.Endpoint, &s.ItemCount, &s.CreatedAt, &expiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan collection: %w", err)
		}
		if expiresAt.Valid {
			s.ExpiresAt = &expiresAt.Time
		}
		snapshots = append(snapshots, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return snapshots, nil
}

// Delete removes the collection stored for identity.
func (r *CollectionRepository) Delete(identity string) error {
	result, err := r.db.Exec("DELETE FROM collections WHERE identity = ?", identity)
	if err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrCollectionNotFound, identity)
	}
	return nil
}

// Clear removes every stored collection and returns how many were removed.
func (r *CollectionRepository) Clear() (int64, error) {
	result, err := r.db.Exec("DELETE FROM collections")
	if err != nil {
		return 0, fmt.Errorf("failed to clear collections: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows, nil
}

// Expired reports whether snapshot is past its expiry.
func (r *CollectionRepository) Expired(snapshot models.CollectionSnapshot) bool {
	return r.expired(&snapshot)
}

func (r *CollectionRepository) expired(s *models.CollectionSnapshot) bool {
	return s.ExpiresAt != nil && r.now().After(*s.ExpiresAt)
}
