// Command seedfields creates the intake tables and loads a starter field
// schema, so a fresh environment serves a working form immediately.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/oneday-labs/intake-api/internal/models"
	"github.com/oneday-labs/intake-api/internal/repository"
	"github.com/oneday-labs/intake-api/pkg/config"
	"github.com/oneday-labs/intake-api/pkg/database"
)

const createTablesFormat = `
CREATE TABLE IF NOT EXISTS %s (
	position INTEGER NOT NULL,
	name     TEXT NOT NULL,
	type     TEXT NOT NULL DEFAULT 'text',
	required BOOLEAN NOT NULL DEFAULT FALSE,
	options  TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (position)
);

CREATE TABLE IF NOT EXISTS %s (
	id           BIGSERIAL PRIMARY KEY,
	field_values JSONB NOT NULL,
	image_url    TEXT,
	doc_id       TEXT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

func main() {
	var replace bool
	flag.BoolVar(&replace, "replace", false, "replace any existing field schema")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	createTables := fmt.Sprintf(createTablesFormat, cfg.Schema.Table, cfg.Submissions.LogTable)
	if _, err := db.ExecContext(ctx, createTables); err != nil {
		log.Fatalf("failed to create tables: %v", err)
	}

	repo := repository.NewSchemaRepository(db, cfg.Schema.Table)

	existing, err := repo.ListFields(ctx)
	if err != nil {
		log.Fatalf("failed to read field schema: %v", err)
	}
	if len(existing) > 0 && !replace {
		log.Printf("field schema already has %d rows, pass -replace to overwrite", len(existing))
		return
	}

	fields := []models.FormFieldRow{
		{Position: 1, Name: "name", Type: "text", Required: true},
		{Position: 2, Name: "email", Type: "email", Required: true},
		{Position: 3, Name: "phone", Type: "tel", Required: true},
		{Position: 4, Name: "photo", Type: "file"},
	}
	if err := repo.ReplaceFields(ctx, fields); err != nil {
		log.Fatalf("failed to seed field schema: %v", err)
	}
	log.Printf("seeded %d form fields", len(fields))
}
