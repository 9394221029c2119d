package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/oneday-labs/intake-api/internal/dto"
	"github.com/oneday-labs/intake-api/internal/models"
	appErrors "github.com/oneday-labs/intake-api/pkg/errors"
)

const schemaCacheKey = "form:schema"

// schemaStore is the slice of the schema repository the service depends on.
type schemaStore interface {
	ListFields(ctx context.Context) ([]models.FormFieldRow, error)
	ReplaceFields(ctx context.Context, fields []models.FormFieldRow) error
}

// SchemaService serves the field schema that drives form rendering and
// validation. Reads go through the cache; replacements invalidate it.
type SchemaService struct {
	store     schemaStore
	cache     *CacheService
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSchemaService constructs the schema service.
func NewSchemaService(store schemaStore, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *SchemaService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &SchemaService{
		store:     store,
		cache:     cache,
		cacheTTL:  cacheTTL,
		validator: validator.New(),
		logger:    logger,
	}
}

// Fields returns the ordered field descriptors. An empty schema yields an
// empty list, never nil, so the wire shape stays a JSON array.
func (s *SchemaService) Fields(ctx context.Context) ([]models.FieldDescriptor, error) {
	if s.cache != nil {
		cached := []models.FieldDescriptor{}
		if hit, err := s.cache.Get(ctx, schemaCacheKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	rows, err := s.store.ListFields(ctx)
	if err != nil {
		s.logger.Error("failed to load form schema", zap.Error(err))
		return nil, appErrors.WrapAs(err, appErrors.ErrUpstream)
	}

	descriptors := make([]models.FieldDescriptor, 0, len(rows))
	for _, row := range rows {
		descriptors = append(descriptors, row.ToDescriptor())
	}

	if s.cache != nil {
		s.cache.Set(ctx, schemaCacheKey, descriptors, s.cacheTTL)
	}
	return descriptors, nil
}

// Replace swaps the whole schema and invalidates the cached copy.
func (s *SchemaService) Replace(ctx context.Context, req dto.ReplaceFormFieldsRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	rows := make([]models.FormFieldRow, 0, len(req.Fields))
	for i, field := range req.Fields {
		fieldType := field.Type
		if fieldType == "" {
			fieldType = string(models.FieldTypeText)
		}
		rows = append(rows, models.FormFieldRow{
			Position: i + 1,
			Name:     field.Name,
			Type:     fieldType,
			Required: field.Required,
			Options:  strings.Join(field.Options, "|"),
		})
	}

	if err := s.store.ReplaceFields(ctx, rows); err != nil {
		s.logger.Error("failed to replace form schema", zap.Error(err))
		return appErrors.WrapAs(err, appErrors.ErrInternal)
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, schemaCacheKey)
	}
	return nil
}
