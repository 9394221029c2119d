package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/oneday-labs/intake-api/internal/models"
)

const defaultLogTable = "submission_log"

// EntryLogRepository appends to and reads the tabular submission log.
// Rows are append-only; there is no update or delete path.
type EntryLogRepository struct {
	db    *sqlx.DB
	table string
}

// NewEntryLogRepository constructs the repository. An empty table name falls
// back to the default.
func NewEntryLogRepository(db *sqlx.DB, table string) *EntryLogRepository {
	if table == "" {
		table = defaultLogTable
	}
	return &EntryLogRepository{db: db, table: table}
}

// Append inserts one log row and fills in the generated id and timestamp.
func (r *EntryLogRepository) Append(ctx context.Context, row *models.EntryLogRow) error {
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	query := fmt.Sprintf(`INSERT INTO %s (field_values, image_url, doc_id, created_at)
	VALUES ($1, $2, $3, $4) RETURNING id`, r.table)
	if err := r.db.QueryRowxContext(ctx, query, row.Values, row.ImageURL, row.DocID, row.CreatedAt).Scan(&row.ID); err != nil {
		return fmt.Errorf("append submission log row: %w", err)
	}
	return nil
}

// List returns log rows newest first for the admin surface.
func (r *EntryLogRepository) List(ctx context.Context, limit, offset int) ([]models.EntryLogRow, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query := fmt.Sprintf(`SELECT id, field_values, image_url, doc_id, created_at
	FROM %s ORDER BY id DESC LIMIT $1 OFFSET $2`, r.table)

	rows := []models.EntryLogRow{}
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("list submission log: %w", err)
	}
	return rows, nil
}

// ListAll returns the full log oldest first, for exports.
func (r *EntryLogRepository) ListAll(ctx context.Context) ([]models.EntryLogRow, error) {
	query := fmt.Sprintf(`SELECT id, field_values, image_url, doc_id, created_at
	FROM %s ORDER BY id ASC`, r.table)

	rows := []models.EntryLogRow{}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list submission log: %w", err)
	}
	return rows, nil
}

// Count returns the total number of log rows.
func (r *EntryLogRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, r.table)
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("count submission log: %w", err)
	}
	return count, nil
}
