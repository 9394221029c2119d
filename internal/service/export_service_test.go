package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneday-labs/intake-api/internal/models"
	appErrors "github.com/oneday-labs/intake-api/pkg/errors"
)

type stubExportLog struct {
	rows []models.EntryLogRow
	err  error
}

func (s *stubExportLog) ListAll(ctx context.Context) ([]models.EntryLogRow, error) {
	return s.rows, s.err
}

func exportFixtures() (*stubSchema, *stubExportLog) {
	url := "https://cdn.example.com/jane_1710072000.png"
	schema := &stubSchema{fields: defaultFields()}
	log := &stubExportLog{rows: []models.EntryLogRow{
		{
			ID:        1,
			Values:    models.ValueList{"Jane", "jane@example.com", "9876543210"},
			ImageURL:  &url,
			DocID:     "65f000000000000000000001",
			CreatedAt: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
		},
		{
			ID:        2,
			Values:    models.ValueList{"Bob", "bob@example.com", "0123456789"},
			DocID:     "65f000000000000000000002",
			CreatedAt: time.Date(2024, 3, 11, 9, 30, 0, 0, time.UTC),
		},
	}}
	return schema, log
}

func TestExportCSV(t *testing.T) {
	schema, log := exportFixtures()
	svc := NewExportService(log, schema, nil)

	file, err := svc.Export(context.Background(), "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.Equal(t, "submissions.csv", file.Filename)

	lines := strings.Split(strings.TrimSpace(string(file.Content)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id,name,email,phone,image_url,doc_id,created_at", lines[0])
	assert.Contains(t, lines[1], "Jane")
	assert.Contains(t, lines[1], "https://cdn.example.com/jane_1710072000.png")
	assert.Contains(t, lines[2], "Bob")
}

func TestExportPDF(t *testing.T) {
	schema, log := exportFixtures()
	svc := NewExportService(log, schema, nil)

	file, err := svc.Export(context.Background(), "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.Equal(t, "submissions.pdf", file.Filename)
	assert.True(t, strings.HasPrefix(string(file.Content), "%PDF"))
}

func TestExportDefaultsToCSV(t *testing.T) {
	schema, log := exportFixtures()
	svc := NewExportService(log, schema, nil)

	file, err := svc.Export(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", file.ContentType)
}

func TestExportUnsupportedFormat(t *testing.T) {
	schema, log := exportFixtures()
	svc := NewExportService(log, schema, nil)

	_, err := svc.Export(context.Background(), "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportEmptyLog(t *testing.T) {
	schema := &stubSchema{fields: defaultFields()}
	svc := NewExportService(&stubExportLog{}, schema, nil)

	file, err := svc.Export(context.Background(), "csv")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(file.Content)), "\n")
	assert.Len(t, lines, 1, "header only")
}
