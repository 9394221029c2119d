package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneday-labs/intake-api/internal/dto"
	"github.com/oneday-labs/intake-api/internal/models"
	appErrors "github.com/oneday-labs/intake-api/pkg/errors"
)

type stubSchemaStore struct {
	rows      []models.FormFieldRow
	listErr   error
	replaced  []models.FormFieldRow
	listCalls int
}

func (s *stubSchemaStore) ListFields(ctx context.Context) ([]models.FormFieldRow, error) {
	s.listCalls++
	return s.rows, s.listErr
}

func (s *stubSchemaStore) ReplaceFields(ctx context.Context, fields []models.FormFieldRow) error {
	s.replaced = fields
	return nil
}

func TestSchemaServiceFields(t *testing.T) {
	store := &stubSchemaStore{rows: []models.FormFieldRow{
		{Position: 1, Name: "name", Type: "text", Required: true},
		{Position: 2, Name: "color", Type: "select", Options: "red|green|blue"},
		{Position: 3, Name: "note", Type: ""},
	}}
	svc := NewSchemaService(store, nil, time.Minute, nil)

	fields, err := svc.Fields(context.Background())
	require.NoError(t, err)
	require.Len(t, fields, 3)

	assert.Equal(t, models.FieldTypeText, fields[0].Type)
	assert.True(t, fields[0].Required)
	assert.Equal(t, []string{"red", "green", "blue"}, fields[1].Options)
	assert.Equal(t, models.FieldTypeText, fields[2].Type, "missing type defaults to text")
}

func TestSchemaServiceFieldsEmpty(t *testing.T) {
	svc := NewSchemaService(&stubSchemaStore{}, nil, time.Minute, nil)

	fields, err := svc.Fields(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, fields)
	assert.Empty(t, fields)
}

func TestSchemaServiceFieldsUpstreamError(t *testing.T) {
	store := &stubSchemaStore{listErr: errors.New("connection refused")}
	svc := NewSchemaService(store, nil, time.Minute, nil)

	_, err := svc.Fields(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUpstream.Code, appErrors.FromError(err).Code)
}

func TestSchemaServiceFieldsCached(t *testing.T) {
	store := &stubSchemaStore{rows: []models.FormFieldRow{{Position: 1, Name: "name"}}}
	cache := NewCacheService(newMemoryCacheStore(), NewMetricsService(), nil)
	svc := NewSchemaService(store, cache, time.Minute, nil)

	_, err := svc.Fields(context.Background())
	require.NoError(t, err)
	_, err = svc.Fields(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, store.listCalls, "second read should come from the cache")
}

func TestSchemaServiceReplace(t *testing.T) {
	store := &stubSchemaStore{rows: []models.FormFieldRow{{Position: 1, Name: "old"}}}
	cacheStore := newMemoryCacheStore()
	cache := NewCacheService(cacheStore, NewMetricsService(), nil)
	svc := NewSchemaService(store, cache, time.Minute, nil)

	_, err := svc.Fields(context.Background())
	require.NoError(t, err)
	require.Contains(t, cacheStore.entries, schemaCacheKey)

	err = svc.Replace(context.Background(), dto.ReplaceFormFieldsRequest{Fields: []dto.FormFieldInput{
		{Name: "name", Required: true},
		{Name: "color", Type: "select", Options: []string{"red", "blue"}},
	}})
	require.NoError(t, err)

	require.Len(t, store.replaced, 2)
	assert.Equal(t, 1, store.replaced[0].Position)
	assert.Equal(t, "text", store.replaced[0].Type)
	assert.Equal(t, "red|blue", store.replaced[1].Options)
	assert.NotContains(t, cacheStore.entries, schemaCacheKey, "replace must drop the cached schema")
}
