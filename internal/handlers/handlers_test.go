package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"collectra/internal/models"
	"collectra/internal/ports"
	"collectra/internal/services/importer"
)

type fakeBatchStore struct {
	batch *models.ImportBatch
}

func (f *fakeBatchStore) Create(context.Context, *models.ImportBatch) error { return nil }

func (f *fakeBatchStore) Get(_ context.Context, id string) (*models.ImportBatch, error) {
	if f.batch == nil || f.batch.ID != id {
		return nil, ports.ErrNotFound
	}
	return f.batch, nil
}

func (f *fakeBatchStore) List(context.Context, int, int) ([]models.ImportBatch, error) {
	if f.batch == nil {
		return nil, nil
	}
	return []models.ImportBatch{*f.batch}, nil
}

func (f *fakeBatchStore) MarkValidating(context.Context, string) (bool, error) { return false, nil }
func (f *fakeBatchStore) FinishValidation(context.Context, string, int, int, int, models.ImportStatus) error {
	return nil
}
func (f *fakeBatchStore) MarkImporting(context.Context, string, time.Time) (bool, error) {
	return false, nil
}
func (f *fakeBatchStore) FinishImport(context.Context, string, int, int, int, models.ImportStatus, time.Time) error {
	return nil
}
func (f *fakeBatchStore) MarkFailed(context.Context, string) error { return nil }
func (f *fakeBatchStore) Reset(context.Context, string) error      { return nil }

func multipartBody(t *testing.T, fields map[string]string, fileName string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	if fileName != "" {
		fw, err := w.CreateFormFile("file", fileName)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write([]byte("nic,contract_number\n")); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func TestUploadRejectsUnsupportedExtension(t *testing.T) {
	h := &Handlers{Logger: log.Default()}

	body, ct := multipartBody(t, map[string]string{
		"client_id":      "client-1",
		"operation_type": "LOAN",
		"import_period":  "January 2026",
	}, "data.txt")

	req := httptest.NewRequest("POST", "/imports/upload", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()

	h.Upload(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestUploadRejectsUnknownOperation(t *testing.T) {
	h := &Handlers{Logger: log.Default()}

	body, ct := multipartBody(t, map[string]string{
		"client_id":      "client-1",
		"operation_type": "MORTGAGE",
		"import_period":  "January 2026",
	}, "data.csv")

	req := httptest.NewRequest("POST", "/imports/upload", body)
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()

	h.Upload(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestErrorMapping(t *testing.T) {
	h := &Handlers{Logger: log.Default()}

	cases := []struct {
		err  error
		code int
	}{
		{ports.ErrNotFound, http.StatusNotFound},
		{importer.ErrBatchStateViolation, http.StatusConflict},
		{importer.ErrUnknownOperation, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		rr := httptest.NewRecorder()
		h.Error(rr, c.err)
		if rr.Code != c.code {
			t.Errorf("Error(%v): code = %d, want %d", c.err, rr.Code, c.code)
		}
	}
}

func TestBatchStatus(t *testing.T) {
	b := &models.ImportBatch{
		ID:              "b1",
		Status:          models.StatusImporting,
		TotalRecords:    200,
		ImportedRecords: 50,
	}
	h := &Handlers{Batches: &fakeBatchStore{batch: b}, Logger: log.Default()}

	req := httptest.NewRequest("GET", "/imports/status/b1", nil)
	req.SetPathValue("batch_id", "b1")
	rr := httptest.NewRecorder()

	h.BatchStatus(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["status"] != string(models.StatusImporting) {
		t.Fatalf("status = %v", resp["status"])
	}
	if resp["progress_percent"].(float64) != 25 {
		t.Fatalf("progress = %v, want 25", resp["progress_percent"])
	}
}

func TestBatchStatusNotFound(t *testing.T) {
	h := &Handlers{Batches: &fakeBatchStore{}, Logger: log.Default()}

	req := httptest.NewRequest("GET", "/imports/status/missing", nil)
	req.SetPathValue("batch_id", "missing")
	rr := httptest.NewRecorder()

	h.BatchStatus(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}
