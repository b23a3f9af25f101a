package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"collectra/internal/adapters/opener"
	"collectra/internal/config/connections/mongo"
	"collectra/internal/config/connections/postgres"
	"collectra/internal/config/connections/s3"
	"collectra/internal/ports"
	"collectra/internal/repository/audit"
	"collectra/internal/repository/database"
	"collectra/internal/services/importer"
)

type Handlers struct {
	Postgres *postgres.Postgres
	Mongo    *mongo.Mongo
	S3       *s3.S3

	Importer  *importer.Service
	Clients   ports.ClientStore
	Customers ports.CustomerStore
	Batches   ports.BatchStore
	Errors    ports.ErrorStore
	Payments  ports.PaymentStore
	Audit     *audit.RowStore

	UploadDir string
	Logger    *log.Logger
}

func New(pg *postgres.Postgres, mg *mongo.Mongo, s3c *s3.S3, uploadDir string, commitSize int) *Handlers {
	batches := database.NewBatchRepo(pg)
	errs := database.NewImportErrorRepo(pg)
	customers := database.NewCustomerRepo(pg)
	payments := database.NewPaymentRepo(pg)
	clients := database.NewClientRepo(pg)
	rowAudit := audit.NewRowStore(mg)

	var s3Op *opener.S3Opener
	if s3c != nil {
		s3Op = opener.NewS3Opener(s3c.Client)
	}
	files := opener.NewCompoundOpener(opener.NewLocalOpener(), s3Op)

	svc := importer.NewService(batches, errs, customers, payments, rowAudit, files, commitSize)

	return &Handlers{
		Postgres:  pg,
		Mongo:     mg,
		S3:        s3c,
		Importer:  svc,
		Clients:   clients,
		Customers: customers,
		Batches:   batches,
		Errors:    errs,
		Payments:  payments,
		Audit:     rowAudit,
		UploadDir: uploadDir,
		Logger:    log.Default(),
	}
}

func (h *Handlers) JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// Error maps service and store errors onto HTTP status codes and renders the
// usual {"error": ...} body.
func (h *Handlers) Error(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, ports.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, importer.ErrBatchStateViolation):
		code = http.StatusConflict
	case errors.Is(err, importer.ErrUnknownOperation):
		code = http.StatusBadRequest
	}
	h.JSON(w, code, map[string]string{"error": err.Error()})
}
