package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneday-labs/intake-api/internal/models"
	"github.com/oneday-labs/intake-api/internal/service"
	appErrors "github.com/oneday-labs/intake-api/pkg/errors"
)

type fakeSchemaSrv struct {
	fields []models.FieldDescriptor
	err    error
}

func (f *fakeSchemaSrv) Fields(context.Context) ([]models.FieldDescriptor, error) {
	return f.fields, f.err
}

type fakeSubmissionSrv struct {
	lastInput service.SubmissionInput
	lastFile  []byte
	result    *service.SubmissionResult
	err       error
}

func (f *fakeSubmissionSrv) Submit(_ context.Context, input service.SubmissionInput) (*service.SubmissionResult, error) {
	f.lastInput = input
	if input.File != nil {
		f.lastFile, _ = io.ReadAll(input.File.Reader)
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &service.SubmissionResult{Message: "Data stored successfully!"}, nil
}

func TestGetFormFieldsReturnsBareArray(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewFormHandler(&fakeSchemaSrv{fields: []models.FieldDescriptor{
		{Name: "name", Type: models.FieldTypeText, Required: true, Options: []string{}},
	}}, &fakeSubmissionSrv{}, 0, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/get_form_fields", nil)

	handler.GetFormFields(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.HasPrefix(bytes.TrimSpace(rec.Body.Bytes()), []byte("[")), "payload must be a bare JSON array")

	var fields []models.FieldDescriptor
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fields))
	require.Len(t, fields, 1)
	assert.Equal(t, "name", fields[0].Name)
}

func TestGetFormFieldsEmptySchema(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewFormHandler(&fakeSchemaSrv{fields: []models.FieldDescriptor{}}, &fakeSubmissionSrv{}, 0, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/get_form_fields", nil)

	handler.GetFormFields(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", string(bytes.TrimSpace(rec.Body.Bytes())))
}

func multipartRequest(t *testing.T, values map[string]string, fileField, fileName string, fileContent []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, value := range values {
		require.NoError(t, writer.WriteField(name, value))
	}
	if fileField != "" {
		part, err := writer.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = part.Write(fileContent)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/submit_form", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestSubmitFormSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	submissions := &fakeSubmissionSrv{}
	url := "https://cdn.example.com/jane_1.png"
	submissions.result = &service.SubmissionResult{Message: "Data stored successfully!", ImageURL: &url}
	handler := NewFormHandler(&fakeSchemaSrv{}, submissions, 0, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = multipartRequest(t, map[string]string{
		"name":   "Jane",
		"submit": "Submit",
	}, "photo", "jane.png", []byte("png-bytes"))

	handler.SubmitForm(c)

	assert.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, "Data stored successfully!", payload["message"])
	assert.Equal(t, url, payload["imageUrl"])

	assert.Equal(t, "Jane", submissions.lastInput.Values["name"])
	require.NotNil(t, submissions.lastInput.File)
	assert.Equal(t, "jane.png", submissions.lastInput.File.Name)
	assert.Equal(t, []byte("png-bytes"), submissions.lastFile)
}

func TestSubmitFormWithoutFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	submissions := &fakeSubmissionSrv{}
	handler := NewFormHandler(&fakeSchemaSrv{}, submissions, 0, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = multipartRequest(t, map[string]string{"name": "Jane"}, "", "", nil)

	handler.SubmitForm(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, submissions.lastInput.File)
}

func TestSubmitFormPassesIdempotencyKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	submissions := &fakeSubmissionSrv{}
	handler := NewFormHandler(&fakeSchemaSrv{}, submissions, 0, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = multipartRequest(t, map[string]string{"name": "Jane"}, "", "", nil)
	c.Request.Header.Set("X-Idempotency-Key", "abc-123")

	handler.SubmitForm(c)

	assert.Equal(t, "abc-123", submissions.lastInput.IdempotencyKey)
}

func TestSubmitFormFailureEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	submissions := &fakeSubmissionSrv{
		err: appErrors.WrapAs(errors.New("sheet unavailable"), appErrors.ErrUpstream),
	}
	handler := NewFormHandler(&fakeSchemaSrv{}, submissions, 0, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = multipartRequest(t, map[string]string{"name": "Jane"}, "", "", nil)

	handler.SubmitForm(c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, false, payload["success"])
	assert.Equal(t, "sheet unavailable", payload["error"])
}

func TestSubmitFormFileTooLargeFromBodyCap(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewFormHandler(&fakeSchemaSrv{}, &fakeSubmissionSrv{}, 1024, nil)
	handler.maxBodySize = 1024

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = multipartRequest(t, map[string]string{"name": "Jane"}, "photo", "big.png", bytes.Repeat([]byte("x"), 4096))

	handler.SubmitForm(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, false, payload["success"])
	assert.Equal(t, "File is too large! Maximum size is 5MB.", payload["message"])
}
