package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/oneday-labs/intake-api/internal/models"
	appErrors "github.com/oneday-labs/intake-api/pkg/errors"
	"github.com/oneday-labs/intake-api/pkg/export"
)

type exportLogStore interface {
	ListAll(ctx context.Context) ([]models.EntryLogRow, error)
}

// ExportService turns the submission log into downloadable CSV or PDF
// documents for the admin surface.
type ExportService struct {
	log    exportLogStore
	schema schemaProvider
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	logger *zap.Logger
}

// NewExportService constructs the export service.
func NewExportService(log exportLogStore, schema schemaProvider, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		log:    log,
		schema: schema,
		csv:    export.NewCSVExporter(),
		pdf:    export.NewPDFExporter(),
		logger: logger,
	}
}

// ExportFile is the rendered document plus its download metadata.
type ExportFile struct {
	Content     []byte
	ContentType string
	Filename    string
}

// Export renders the full submission log in the requested format.
// Supported formats are "csv" and "pdf".
func (s *ExportService) Export(ctx context.Context, format string) (*ExportFile, error) {
	dataset, err := s.dataset(ctx)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(format) {
	case "csv", "":
		content, err := s.csv.Render(*dataset)
		if err != nil {
			return nil, appErrors.WrapAs(err, appErrors.ErrInternal)
		}
		return &ExportFile{Content: content, ContentType: "text/csv", Filename: "submissions.csv"}, nil
	case "pdf":
		content, err := s.pdf.Render(*dataset, "Submissions")
		if err != nil {
			return nil, appErrors.WrapAs(err, appErrors.ErrInternal)
		}
		return &ExportFile{Content: content, ContentType: "application/pdf", Filename: "submissions.pdf"}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

// dataset lays out one column per schema text field plus the bookkeeping
// columns, matching the order the log rows were written in.
func (s *ExportService) dataset(ctx context.Context) (*export.Dataset, error) {
	fields, err := s.schema.Fields(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.log.ListAll(ctx)
	if err != nil {
		s.logger.Error("failed to read submission log for export", zap.Error(err))
		return nil, appErrors.WrapAs(err, appErrors.ErrUpstream)
	}

	valueHeaders := make([]string, 0, len(fields))
	for _, field := range fields {
		if field.Type == models.FieldTypeFile {
			continue
		}
		valueHeaders = append(valueHeaders, field.Name)
	}

	headers := append([]string{"id"}, valueHeaders...)
	headers = append(headers, "image_url", "doc_id", "created_at")

	dataset := &export.Dataset{Headers: headers, Rows: make([]map[string]string, 0, len(rows))}
	for _, row := range rows {
		record := map[string]string{
			"id":         fmt.Sprintf("%d", row.ID),
			"doc_id":     row.DocID,
			"created_at": row.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		}
		if row.ImageURL != nil {
			record["image_url"] = *row.ImageURL
		}
		for i, header := range valueHeaders {
			if i < len(row.Values) {
				record[header] = row.Values[i]
			}
		}
		// rows written under an older schema may carry extra columns
		for i := len(valueHeaders); i < len(row.Values); i++ {
			key := fmt.Sprintf("extra_%d", i-len(valueHeaders)+1)
			record[key] = row.Values[i]
			if !contains(dataset.Headers, key) {
				dataset.Headers = append(dataset.Headers, key)
			}
		}
		dataset.Rows = append(dataset.Rows, record)
	}
	return dataset, nil
}

func contains(list []string, target string) bool {
	for _, item := range list {
		if item == target {
			return true
		}
	}
	return false
}
