package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/oneday-labs/intake-api/internal/formkit"
	"github.com/oneday-labs/intake-api/internal/models"
	appErrors "github.com/oneday-labs/intake-api/pkg/errors"
)

const (
	idempotencyKeyPrefix = "submission:idem:"
	defaultObjectBase    = "uploaded_image"
	defaultLogTable      = "submission_log"
)

// UploadedFile carries one incoming file through the pipeline.
type UploadedFile struct {
	Name        string
	Size        int64
	ContentType string
	Reader      io.Reader
}

// SubmissionInput is the parsed multipart payload.
type SubmissionInput struct {
	Values         map[string]string
	File           *UploadedFile
	IdempotencyKey string
}

// SubmissionResult is what the handler turns into the wire envelope.
type SubmissionResult struct {
	Message  string  `json:"message"`
	ImageURL *string `json:"imageUrl"`
	Replayed bool    `json:"-"`
}

type objectStore interface {
	Upload(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) (string, error)
}

type documentStore interface {
	NewDocumentID() string
	Create(ctx context.Context, record *models.SubmissionRecord) error
}

type entryLogStore interface {
	Append(ctx context.Context, row *models.EntryLogRow) error
}

type schemaProvider interface {
	Fields(ctx context.Context) ([]models.FieldDescriptor, error)
}

// SubmissionOptions tunes orchestrator behaviour from configuration.
type SubmissionOptions struct {
	MaxFileSize      int64
	AllowedFileTypes []string
	StrictValidation bool
	IdempotencyTTL   time.Duration
	LogTable         string
}

// SubmissionService runs the write pipeline for one form submission:
// object store first, then the tabular log, then the document store.
// There is no compensating rollback between the sinks.
type SubmissionService struct {
	schema  schemaProvider
	objects objectStore
	log     entryLogStore
	docs    documentStore
	cache   *CacheService
	metrics *MetricsService
	opts    SubmissionOptions
	logger  *zap.Logger

	allowed map[string]struct{}
	now     func() time.Time
}

// NewSubmissionService constructs the orchestrator.
func NewSubmissionService(schema schemaProvider, objects objectStore, log entryLogStore, docs documentStore, cache *CacheService, metrics *MetricsService, opts SubmissionOptions, logger *zap.Logger) *SubmissionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = formkit.MaxFileSize
	}
	if len(opts.AllowedFileTypes) == 0 {
		opts.AllowedFileTypes = []string{"jpeg", "jpg", "png", "gif"}
	}
	if opts.IdempotencyTTL <= 0 {
		opts.IdempotencyTTL = 24 * time.Hour
	}
	if opts.LogTable == "" {
		opts.LogTable = defaultLogTable
	}

	allowed := make(map[string]struct{}, len(opts.AllowedFileTypes))
	for _, t := range opts.AllowedFileTypes {
		allowed[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}

	return &SubmissionService{
		schema:  schema,
		objects: objects,
		log:     log,
		docs:    docs,
		cache:   cache,
		metrics: metrics,
		opts:    opts,
		logger:  logger,
		allowed: allowed,
		now:     time.Now,
	}
}

// Submit claims the idempotency key, runs the pipeline and caches the
// outcome under that key. A repeated key replays the stored envelope once
// the first request finished, and is refused while it is still in flight.
func (s *SubmissionService) Submit(ctx context.Context, input SubmissionInput) (*SubmissionResult, error) {
	key := ""
	if input.IdempotencyKey != "" && s.cache != nil {
		key = idempotencyKeyPrefix + input.IdempotencyKey
		claimed, err := s.cache.Claim(ctx, key, SubmissionResult{}, s.opts.IdempotencyTTL)
		if err != nil {
			s.logger.Warn("idempotency claim failed", zap.Error(err))
			key = ""
		} else if !claimed {
			var stored SubmissionResult
			if hit, err := s.cache.Get(ctx, key, &stored); err == nil && hit && stored.Message != "" {
				stored.Replayed = true
				s.metrics.RecordSubmission("replayed")
				return &stored, nil
			}
			s.metrics.RecordSubmission("rejected")
			return nil, appErrors.ErrDuplicateRequest
		}
	}

	result, err := s.store(ctx, input)
	if key != "" {
		if err != nil {
			// release the claim so the client may retry with the same key
			s.cache.Invalidate(ctx, key)
		} else {
			s.cache.Set(ctx, key, result, s.opts.IdempotencyTTL)
		}
	}
	return result, err
}

// store runs the write pipeline for one submission.
func (s *SubmissionService) store(ctx context.Context, input SubmissionInput) (*SubmissionResult, error) {
	values := make(map[string]string, len(input.Values))
	for name, value := range input.Values {
		if name == "submit" || name == "idempotency_key" {
			continue
		}
		values[name] = value
	}

	fields, err := s.schema.Fields(ctx)
	if err != nil {
		s.metrics.RecordSubmission("error")
		return nil, err
	}

	if s.opts.StrictValidation {
		var meta *formkit.FileMeta
		if input.File != nil {
			meta = &formkit.FileMeta{Name: input.File.Name, Size: input.File.Size}
		}
		if result := formkit.Validate(fields, values, meta); !result.OK() {
			s.metrics.RecordSubmission("rejected")
			return nil, appErrors.Clone(appErrors.ErrValidation, result.Summary)
		}
	}

	if input.File != nil {
		if err := s.checkFile(input.File); err != nil {
			s.metrics.RecordSubmission("rejected")
			return nil, err
		}
	}

	var imageURL *string
	if input.File != nil {
		objectName := s.objectName(values, input.File.Name)
		start := s.now()
		url, err := s.objects.Upload(ctx, objectName, input.File.Reader, input.File.Size, input.File.ContentType)
		s.metrics.ObserveSinkWrite("object_store", time.Since(start))
		if err != nil {
			s.logger.Error("object upload failed", zap.String("object", objectName), zap.Error(err))
			s.metrics.RecordSubmission("error")
			return nil, appErrors.WrapAs(err, appErrors.ErrUpstream)
		}
		imageURL = &url
		s.metrics.ObserveUploadSize(input.File.Size)
	}

	docID := s.docs.NewDocumentID()

	row := &models.EntryLogRow{
		Values:   orderValues(fields, values),
		ImageURL: imageURL,
		DocID:    docID,
	}
	start := s.now()
	err = s.log.Append(ctx, row)
	s.metrics.ObserveSinkWrite("entry_log", time.Since(start))
	if err != nil {
		s.logger.Error("log append failed", zap.String("doc_id", docID), zap.Error(err))
		s.metrics.RecordSubmission("error")
		return nil, appErrors.WrapAs(err, appErrors.ErrUpstream)
	}

	record := &models.SubmissionRecord{
		Fields:      values,
		ImageURL:    imageURL,
		DocID:       docID,
		LogRange:    fmt.Sprintf("%s!A%d", s.opts.LogTable, row.ID),
		SubmittedAt: s.now().UTC(),
	}
	start = s.now()
	err = s.docs.Create(ctx, record)
	s.metrics.ObserveSinkWrite("document_store", time.Since(start))
	if err != nil {
		s.logger.Error("document write failed", zap.String("doc_id", docID), zap.Error(err))
		s.metrics.RecordSubmission("error")
		return nil, appErrors.WrapAs(err, appErrors.ErrUpstream)
	}

	result := &SubmissionResult{Message: "Data stored successfully!", ImageURL: imageURL}

	s.metrics.RecordSubmission("stored")
	s.logger.Info("submission stored",
		zap.String("doc_id", docID),
		zap.Int64("log_row", row.ID),
		zap.Bool("has_image", imageURL != nil))
	return result, nil
}

// checkFile enforces the size ceiling and the image allow-list on both the
// extension and the declared content type.
func (s *SubmissionService) checkFile(file *UploadedFile) error {
	if file.Size > s.opts.MaxFileSize {
		return appErrors.ErrFileTooLarge
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(file.Name), "."))
	if _, ok := s.allowed[ext]; !ok {
		return appErrors.ErrInvalidFileType
	}

	subtype := file.ContentType
	if idx := strings.Index(subtype, "/"); idx >= 0 {
		if !strings.HasPrefix(strings.ToLower(subtype[:idx]), "image") {
			return appErrors.ErrInvalidFileType
		}
		subtype = subtype[idx+1:]
	}
	if idx := strings.Index(subtype, ";"); idx >= 0 {
		subtype = subtype[:idx]
	}
	if _, ok := s.allowed[strings.ToLower(strings.TrimSpace(subtype))]; !ok {
		return appErrors.ErrInvalidFileType
	}
	return nil
}

var objectBasePattern = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// objectName derives the stored object name from the submitter's name field
// and the upload instant. The timestamp avoids collisions between
// submitters sharing a name.
func (s *SubmissionService) objectName(values map[string]string, fileName string) string {
	base := strings.TrimSpace(values["name"])
	if base == "" {
		base = defaultObjectBase
	}
	base = objectBasePattern.ReplaceAllString(base, "_")

	ext := strings.ToLower(filepath.Ext(fileName))
	return fmt.Sprintf("%s_%d%s", base, s.now().Unix(), ext)
}

// orderValues lays out text values in schema order; fields the schema does
// not know about follow, sorted by name, so every row keeps one stable
// column layout.
func orderValues(fields []models.FieldDescriptor, values map[string]string) models.ValueList {
	out := models.ValueList{}
	seen := make(map[string]struct{}, len(fields))

	for _, field := range fields {
		if field.Type == models.FieldTypeFile {
			seen[field.Name] = struct{}{}
			continue
		}
		out = append(out, values[field.Name])
		seen[field.Name] = struct{}{}
	}

	extras := make([]string, 0)
	for name := range values {
		if _, ok := seen[name]; !ok {
			extras = append(extras, name)
		}
	}
	sort.Strings(extras)
	for _, name := range extras {
		out = append(out, values[name])
	}
	return out
}
