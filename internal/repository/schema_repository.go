package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/oneday-labs/intake-api/internal/models"
)

const defaultSchemaTable = "form_fields"

// SchemaRepository reads and replaces the tabular field-schema source.
type SchemaRepository struct {
	db    *sqlx.DB
	table string
}

// NewSchemaRepository constructs the repository. An empty table name falls
// back to the default.
func NewSchemaRepository(db *sqlx.DB, table string) *SchemaRepository {
	if table == "" {
		table = defaultSchemaTable
	}
	return &SchemaRepository{db: db, table: table}
}

// ListFields returns every schema row in position order. An empty table
// yields an empty slice, not an error.
func (r *SchemaRepository) ListFields(ctx context.Context) ([]models.FormFieldRow, error) {
	query := fmt.Sprintf(`SELECT position, name, type, required, options
	FROM %s ORDER BY position ASC`, r.table)

	rows := []models.FormFieldRow{}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list form fields: %w", err)
	}
	return rows, nil
}

// ReplaceFields swaps the whole schema in one transaction.
func (r *SchemaRepository) ReplaceFields(ctx context.Context, fields []models.FormFieldRow) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace form fields: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, r.table)); err != nil {
		return fmt.Errorf("clear form fields: %w", err)
	}

	insert := fmt.Sprintf(`INSERT INTO %s (position, name, type, required, options)
	VALUES (:position, :name, :type, :required, :options)`, r.table)
	for _, field := range fields {
		if _, err := tx.NamedExecContext(ctx, insert, field); err != nil {
			return fmt.Errorf("insert form field %q: %w", field.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit form fields: %w", err)
	}
	return nil
}
