package handlers

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"

	"collectra/internal/models"
	"collectra/internal/services/importer"
	"collectra/internal/transport/auth"
	"collectra/internal/utils"
)

var allowedExtensions = map[string]bool{
	".xlsx": true,
	".xls":  true,
	".csv":  true,
}

// Upload accepts multipart/form-data with `file`, `client_id`,
// `operation_type` and `import_period` fields, stores the file and registers
// a new batch in UPLOADED state.
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(128 << 20); err != nil {
		h.Logger.Printf("[UPLOAD][ERR] parse multipart: %v", err)
		h.JSON(w, http.StatusBadRequest, map[string]any{"error": "bad multipart: " + err.Error()})
		return
	}

	clientID := r.FormValue("client_id")
	if clientID == "" {
		h.JSON(w, http.StatusBadRequest, map[string]any{"error": "client_id is required"})
		return
	}

	op := models.OperationType(strings.ToUpper(strings.TrimSpace(r.FormValue("operation_type"))))
	if !op.Valid() {
		h.JSON(w, http.StatusBadRequest, map[string]any{"error": "operation_type must be one of CREDIT_CARD, LOAN, LEASING, PAYMENT"})
		return
	}

	period := strings.TrimSpace(r.FormValue("import_period"))
	if period == "" {
		h.JSON(w, http.StatusBadRequest, map[string]any{"error": "import_period is required"})
		return
	}

	f, fh, err := r.FormFile("file")
	if err != nil {
		h.Logger.Printf("[UPLOAD][ERR] missing file: %v", err)
		h.JSON(w, http.StatusBadRequest, map[string]any{"error": "file is required"})
		return
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExtensions[ext] {
		h.JSON(w, http.StatusBadRequest, map[string]any{"error": fmt.Sprintf("unsupported file type %q, expected .xlsx, .xls or .csv", ext)})
		return
	}

	client, err := h.Clients.Get(r.Context(), clientID)
	if err != nil {
		h.Error(w, err)
		return
	}
	if !client.IsActive {
		h.JSON(w, http.StatusBadRequest, map[string]any{"error": "client is inactive"})
		return
	}

	storedName := utils.UploadFileName(client.ClientCode, string(op), period, time.Now(), ext)

	storedPath, size, checksum, err := h.storeFile(r.Context(), f, fh.Size, storedName, fh.Header.Get("Content-Type"))
	if err != nil {
		h.Logger.Printf("[UPLOAD][ERR] store file: %v", err)
		h.JSON(w, http.StatusInternalServerError, map[string]any{"error": "failed to store file: " + err.Error()})
		return
	}

	req := importer.UploadRequest{
		BatchName:     strings.TrimSpace(r.FormValue("batch_name")),
		Client:        client,
		OperationType: op,
		ImportPeriod:  period,
		FileName:      path.Base(fh.Filename),
		FileSize:      size,
		FilePath:      storedPath,
		FileChecksum:  checksum,
	}
	if userID, errGet := auth.GetUserID(r.Context()); errGet == nil {
		req.UserID = &userID
	}

	b, err := h.Importer.CreateBatch(r.Context(), req)
	if err != nil {
		h.Logger.Printf("[UPLOAD][ERR] create batch: %v", err)
		h.Error(w, err)
		return
	}

	h.Logger.Printf("[UPLOAD][OK] batch=%s client=%s op=%s file=%s size=%d", b.ID, client.ClientCode, op, storedName, size)
	h.JSON(w, http.StatusCreated, map[string]any{
		"batch":     batchResp(b),
		"message":   "File uploaded successfully",
		"next_step": fmt.Sprintf("POST /imports/validate/%s", b.ID),
	})
}

// storeFile writes the upload to S3 when configured, otherwise to the local
// upload directory, hashing the content as it streams.
func (h *Handlers) storeFile(ctx context.Context, f io.Reader, declaredSize int64, name, contentType string) (storedPath string, size int64, checksum string, err error) {
	hash := sha256.New()

	if h.S3 != nil {
		key := fmt.Sprintf("imports/%s", name)
		if declaredSize <= 0 {
			declaredSize = -1
		}
		info, putErr := h.S3.Client.PutObject(ctx, h.S3.Bucket, key, io.TeeReader(f, hash), declaredSize,
			minio.PutObjectOptions{ContentType: contentType})
		if putErr != nil {
			return "", 0, "", putErr
		}
		return fmt.Sprintf("s3://%s/%s", h.S3.Bucket, key), info.Size, fmt.Sprintf("%x", hash.Sum(nil)), nil
	}

	if err := os.MkdirAll(h.UploadDir, 0o755); err != nil {
		return "", 0, "", err
	}
	dst := filepath.Join(h.UploadDir, name)
	out, err := os.Create(dst)
	if err != nil {
		return "", 0, "", err
	}
	defer out.Close()

	n, err := io.Copy(out, io.TeeReader(f, hash))
	if err != nil {
		os.Remove(dst)
		return "", 0, "", err
	}
	return dst, n, fmt.Sprintf("%x", hash.Sum(nil)), nil
}
