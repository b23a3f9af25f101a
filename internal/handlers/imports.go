package handlers

import (
	"net/http"
	"strconv"

	"collectra/internal/models"
)

// ValidateBatch runs the validation phase for one batch.
func (h *Handlers) ValidateBatch(w http.ResponseWriter, r *http.Request) {
	batchID := r.PathValue("batch_id")

	sum, err := h.Importer.Validate(r.Context(), batchID)
	if err != nil {
		h.Logger.Printf("[VALIDATE][ERR] batch=%s: %v", batchID, err)
		h.Error(w, err)
		return
	}
	h.JSON(w, http.StatusOK, sum)
}

// ProcessBatch runs the import phase for one validated batch.
func (h *Handlers) ProcessBatch(w http.ResponseWriter, r *http.Request) {
	batchID := r.PathValue("batch_id")

	sum, err := h.Importer.Process(r.Context(), batchID)
	if err != nil {
		h.Logger.Printf("[PROC][ERR] batch=%s: %v", batchID, err)
		h.Error(w, err)
		return
	}
	h.JSON(w, http.StatusOK, sum)
}

// ResetBatch rewinds a batch to VALIDATED for reprocessing.
func (h *Handlers) ResetBatch(w http.ResponseWriter, r *http.Request) {
	batchID := r.PathValue("batch_id")

	b, err := h.Importer.Reset(r.Context(), batchID)
	if err != nil {
		h.Logger.Printf("[RESET][ERR] batch=%s: %v", batchID, err)
		h.Error(w, err)
		return
	}
	h.JSON(w, http.StatusOK, map[string]any{
		"batch":     batchResp(b),
		"message":   "Batch reset to VALIDATED",
		"next_step": "POST /imports/process/" + b.ID,
	})
}

// ListBatches returns recent batches, newest first.
func (h *Handlers) ListBatches(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r, 50)

	list, err := h.Batches.List(r.Context(), limit, offset)
	if err != nil {
		h.Error(w, err)
		return
	}

	out := make([]map[string]any, 0, len(list))
	for i := range list {
		out = append(out, batchResp(&list[i]))
	}
	h.JSON(w, http.StatusOK, map[string]any{"batches": out, "count": len(out)})
}

func (h *Handlers) GetBatch(w http.ResponseWriter, r *http.Request) {
	b, err := h.Batches.Get(r.Context(), r.PathValue("batch_id"))
	if err != nil {
		h.Error(w, err)
		return
	}
	h.JSON(w, http.StatusOK, batchResp(b))
}

// BatchErrors lists validation and processing findings for a batch, ordered
// by row number.
func (h *Handlers) BatchErrors(w http.ResponseWriter, r *http.Request) {
	batchID := r.PathValue("batch_id")

	if _, err := h.Batches.Get(r.Context(), batchID); err != nil {
		h.Error(w, err)
		return
	}

	list, err := h.Errors.ListByBatch(r.Context(), batchID)
	if err != nil {
		h.Error(w, err)
		return
	}

	out := make([]map[string]any, 0, len(list))
	for i := range list {
		out = append(out, errorResp(&list[i]))
	}
	h.JSON(w, http.StatusOK, map[string]any{"batch_id": batchID, "errors": out, "count": len(out)})
}

// BatchAudit returns the raw row-by-row processing trail for a batch.
func (h *Handlers) BatchAudit(w http.ResponseWriter, r *http.Request) {
	batchID := r.PathValue("batch_id")

	if _, err := h.Batches.Get(r.Context(), batchID); err != nil {
		h.Error(w, err)
		return
	}
	if h.Audit == nil {
		h.JSON(w, http.StatusServiceUnavailable, map[string]any{"error": "audit store not configured"})
		return
	}

	items, err := h.Audit.ListByBatch(r.Context(), batchID)
	if err != nil {
		h.Error(w, err)
		return
	}

	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		out = append(out, map[string]any{
			"row_number":  it.RowNumber,
			"entity_type": it.EntityType,
			"entity_id":   it.EntityID,
			"payload":     it.Payload,
			"status":      it.Status,
			"error":       it.Error,
		})
	}
	h.JSON(w, http.StatusOK, map[string]any{"batch_id": batchID, "rows": out, "count": len(out)})
}

// BatchStatus is a lightweight progress endpoint for polling clients.
func (h *Handlers) BatchStatus(w http.ResponseWriter, r *http.Request) {
	b, err := h.Batches.Get(r.Context(), r.PathValue("batch_id"))
	if err != nil {
		h.Error(w, err)
		return
	}

	h.JSON(w, http.StatusOK, map[string]any{
		"batch_id":         b.ID,
		"status":           b.Status,
		"progress_percent": b.ProgressPercent(),
		"total_records":    b.TotalRecords,
		"valid_records":    b.ValidRecords,
		"invalid_records":  b.InvalidRecords,
		"imported_records": b.ImportedRecords,
	})
}

func batchResp(b *models.ImportBatch) map[string]any {
	return map[string]any{
		"id":                  b.ID,
		"batch_name":          b.BatchName,
		"client_id":           b.ClientID,
		"client_code":         b.ClientCode,
		"client_name":         b.ClientName,
		"operation_type":      b.OperationType,
		"import_period":       b.ImportPeriod,
		"file_name":           b.FileName,
		"file_size":           b.FileSize,
		"file_checksum":       b.FileChecksum,
		"status":              b.Status,
		"progress_percent":    b.ProgressPercent(),
		"total_records":       b.TotalRecords,
		"valid_records":       b.ValidRecords,
		"invalid_records":     b.InvalidRecords,
		"imported_records":    b.ImportedRecords,
		"created_records":     b.CreatedRecords,
		"updated_records":     b.UpdatedRecords,
		"imported_by":         b.ImportedBy,
		"import_started_at":   b.ImportStartedAt,
		"import_completed_at": b.ImportCompletedAt,
		"created_at":          b.CreatedAt,
	}
}

func errorResp(e *models.ImportError) map[string]any {
	return map[string]any{
		"id":              e.ID,
		"row_number":      e.RowNumber,
		"column_name":     e.ColumnName,
		"error_type":      e.ErrorType,
		"error_message":   e.ErrorMessage,
		"original_value":  e.OriginalValue,
		"suggested_value": e.SuggestedValue,
		"is_critical":     e.IsCritical,
	}
}

func pageParams(r *http.Request, defLimit int) (limit, offset int) {
	limit = defLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
