package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneday-labs/intake-api/internal/dto"
	"github.com/oneday-labs/intake-api/internal/models"
	"github.com/oneday-labs/intake-api/internal/service"
	appErrors "github.com/oneday-labs/intake-api/pkg/errors"
)

type fakeAdminLog struct {
	rows       []models.EntryLogRow
	total      int64
	lastLimit  int
	lastOffset int
}

func (f *fakeAdminLog) List(_ context.Context, limit, offset int) ([]models.EntryLogRow, error) {
	f.lastLimit = limit
	f.lastOffset = offset
	return f.rows, nil
}

func (f *fakeAdminLog) Count(context.Context) (int64, error) {
	return f.total, nil
}

type fakeAdminSchema struct {
	lastReq dto.ReplaceFormFieldsRequest
	err     error
}

func (f *fakeAdminSchema) Replace(_ context.Context, req dto.ReplaceFormFieldsRequest) error {
	f.lastReq = req
	return f.err
}

type fakeAdminExport struct {
	file *service.ExportFile
	err  error
}

func (f *fakeAdminExport) Export(_ context.Context, format string) (*service.ExportFile, error) {
	return f.file, f.err
}

func TestListSubmissions(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := &fakeAdminLog{rows: []models.EntryLogRow{{ID: 2}, {ID: 1}}, total: 2}
	handler := NewAdminHandler(log, &fakeAdminSchema{}, &fakeAdminExport{}, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/submissions?limit=10&offset=5", nil)

	handler.ListSubmissions(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10, log.lastLimit)
	assert.Equal(t, 5, log.lastOffset)

	var payload struct {
		Data struct {
			Total       int64                `json:"total"`
			Submissions []models.EntryLogRow `json:"submissions"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, int64(2), payload.Data.Total)
	assert.Len(t, payload.Data.Submissions, 2)
}

func TestExportSubmissionsCSV(t *testing.T) {
	gin.SetMode(gin.TestMode)
	exports := &fakeAdminExport{file: &service.ExportFile{
		Content:     []byte("id,name\n1,Jane\n"),
		ContentType: "text/csv",
		Filename:    "submissions.csv",
	}}
	handler := NewAdminHandler(&fakeAdminLog{}, &fakeAdminSchema{}, exports, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/submissions/export?format=csv", nil)

	handler.ExportSubmissions(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "submissions.csv")
	assert.Contains(t, rec.Body.String(), "Jane")
}

func TestExportSubmissionsBadFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	exports := &fakeAdminExport{err: appErrors.Clone(appErrors.ErrValidation, `unsupported export format "xlsx"`)}
	handler := NewAdminHandler(&fakeAdminLog{}, &fakeAdminSchema{}, exports, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/submissions/export?format=xlsx", nil)

	handler.ExportSubmissions(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReplaceFormFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	schema := &fakeAdminSchema{}
	handler := NewAdminHandler(&fakeAdminLog{}, schema, &fakeAdminExport{}, nil)

	body, err := json.Marshal(dto.ReplaceFormFieldsRequest{Fields: []dto.FormFieldInput{
		{Name: "name", Required: true},
		{Name: "color", Type: "select", Options: []string{"red", "blue"}},
	}})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPut, "/admin/form_fields", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.ReplaceFormFields(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, schema.lastReq.Fields, 2)
	assert.Equal(t, "color", schema.lastReq.Fields[1].Name)
}

func TestReplaceFormFieldsRejectsBadJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAdminHandler(&fakeAdminLog{}, &fakeAdminSchema{}, &fakeAdminExport{}, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPut, "/admin/form_fields", bytes.NewReader([]byte("{")))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.ReplaceFormFields(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
