package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"profile-scout/internal/domain/model"
	"profile-scout/internal/infra/logging"
	"profile-scout/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Server is the JSON intake API. Authentication lives in front of it; the
// caller identity arrives pre-resolved in the X-Owner header.
type Server struct {
	searchUC  usecase.SearchUseCase
	historyUC usecase.HistoryUseCase
	exportUC  usecase.ExportUseCase
	log       *zerolog.Logger

	httpSrv *http.Server
}

func NewServer(
	searchUC usecase.SearchUseCase,
	historyUC usecase.HistoryUseCase,
	exportUC usecase.ExportUseCase,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		searchUC:  searchUC,
		historyUC: historyUC,
		exportUC:  exportUC,
		log:       logger,
	}
}

// Router builds the full route tree. Exposed separately from Run so tests
// can drive it through httptest without binding a port.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/health", s.healthHandler)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/searches", s.submitHandler)
		r.Get("/searches/{jobID}", s.statusHandler)
		r.Get("/searches/{jobID}/export/{format}", s.exportHandler)

		r.Get("/history", s.historyListHandler)
		r.Get("/history/{jobID}", s.historyGetHandler)
		r.Delete("/history/{jobID}", s.historyDeleteHandler)
	})

	return r
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, port int) error {
	s.httpSrv = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.httpSrv.Addr).Msg("http server listening")
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpSrv.Shutdown(shutdownCtx)
	}
}

// requestLogger attaches request-scoped fields and emits one access line.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := logging.WithRequestID(r.Context(), middleware.GetReqID(r.Context()))
		ctx = logging.WithOwner(ctx, ownerFrom(r))

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("http request")
	})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ownerFrom resolves the caller identity. An absent or blank header maps to
// the shared anonymous bucket.
func ownerFrom(r *http.Request) string {
	owner := r.Header.Get("X-Owner")
	if owner == "" {
		return model.AnonymousOwner
	}
	return owner
}
