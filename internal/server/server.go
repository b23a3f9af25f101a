package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"collectra/internal/handlers"
)

type Server struct {
	httpServer *http.Server
}

// NewServer registers the route table. Everything except /health sits behind
// the auth middleware when one is supplied.
func NewServer(port string, h *handlers.Handlers, authMW func(http.Handler) http.Handler) *Server {
	mux := http.NewServeMux()

	if h != nil {
		mux.HandleFunc("GET /health", h.Health)

		api := http.NewServeMux()
		api.HandleFunc("POST /imports/upload", h.Upload)
		api.HandleFunc("POST /imports/validate/{batch_id}", h.ValidateBatch)
		api.HandleFunc("POST /imports/process/{batch_id}", h.ProcessBatch)
		api.HandleFunc("POST /imports/reset/{batch_id}", h.ResetBatch)
		api.HandleFunc("GET /imports/batches", h.ListBatches)
		api.HandleFunc("GET /imports/batch/{batch_id}", h.GetBatch)
		api.HandleFunc("GET /imports/batch/{batch_id}/errors", h.BatchErrors)
		api.HandleFunc("GET /imports/batch/{batch_id}/audit", h.BatchAudit)
		api.HandleFunc("GET /imports/status/{batch_id}", h.BatchStatus)

		api.HandleFunc("POST /clients", h.CreateClient)
		api.HandleFunc("GET /clients", h.ListClients)
		api.HandleFunc("GET /clients/{client_id}", h.GetClient)
		api.HandleFunc("PUT /clients/{client_id}", h.UpdateClient)
		api.HandleFunc("DELETE /clients/{client_id}", h.DeleteClient)

		api.HandleFunc("GET /customers", h.ListCustomers)
		api.HandleFunc("GET /customers/{customer_id}", h.GetCustomer)
		api.HandleFunc("DELETE /customers/{customer_id}", h.DeleteCustomer)

		var protected http.Handler = api
		if authMW != nil {
			protected = authMW(api)
		}
		mux.Handle("/", protected)
	}

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%s", port),
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			// Validate/process run synchronously; large files take minutes.
			WriteTimeout: 15 * time.Minute,
			IdleTimeout:  60 * time.Second,
		},
	}
}

func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shCtx)
	case err := <-errCh:
		return err
	}
}
