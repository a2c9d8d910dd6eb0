package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hassan-odimi/David.Lynch-Dashboard/internal/config"
	"github.com/hassan-odimi/David.Lynch-Dashboard/internal/dataset"
	"github.com/hassan-odimi/David.Lynch-Dashboard/internal/logger"
	"github.com/hassan-odimi/David.Lynch-Dashboard/internal/models"
	"github.com/hassan-odimi/David.Lynch-Dashboard/internal/processing"
	"github.com/hassan-odimi/David.Lynch-Dashboard/internal/query"
)

func main() {
	log := logger.New("api")
	cfg, err := config.LoadAPI()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	store := dataset.NewStore(cfg.DataFile)
	lots, err := store.Load()
	if err != nil {
		log.Error("load dataset", slog.Any("err", err))
		os.Exit(1)
	}
	log.Info("dataset loaded", slog.String("file", cfg.DataFile), slog.Int("lots", len(lots)))

	srv := &server{log: log, cfg: cfg, store: store}

	httpServer := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	go func() {
		log.Info("api server starting", slog.String("addr", cfg.BindAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", slog.Any("err", err))
	}
}

type server struct {
	log   *slog.Logger
	cfg   *config.API
	store *dataset.Store
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))

	r.Get("/health", s.handleHealth)
	r.Get("/lots", s.handleLots)
	r.Get("/lots/stats", s.handleStats)
	r.Get("/lots/{id}", s.handleLot)
	r.Get("/categories", s.handleCategories)
	r.Post("/reload", s.handleReload)

	return r
}

type errorResponse struct {
	Error string `json:"error"`
}

type lotsResponse struct {
	Total int          `json:"total"`
	From  int          `json:"from"`
	Size  int          `json:"size"`
	Items []models.Lot `json:"items"`
}

type categoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if _, err := s.store.Load(); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "could not load data"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleLots(w http.ResponseWriter, r *http.Request) {
	filtered, ok := s.filtered(w, r)
	if !ok {
		return
	}

	if sortParam := strings.TrimSpace(r.URL.Query().Get("sort")); sortParam != "" {
		field, order, _ := strings.Cut(sortParam, ":")
		if field == "price" {
			filtered = query.SortByPrice(filtered, order == "desc")
		}
	}

	from := clampInt(r.URL.Query().Get("from"), 0, 10_000)
	size := clampInt(r.URL.Query().Get("size"), s.cfg.DefaultPage, s.cfg.MaxPage)

	total := len(filtered)
	if from > total {
		from = total
	}
	end := from + size
	if end > total {
		end = total
	}

	writeJSON(w, http.StatusOK, lotsResponse{
		Total: total,
		From:  from,
		Size:  end - from,
		Items: filtered[from:end],
	})
}

func (s *server) handleLot(w http.ResponseWriter, r *http.Request) {
	lots, err := s.store.Load()
	if err != nil {
		s.log.Error("load dataset", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "could not load data"})
		return
	}

	id := chi.URLParam(r, "id")
	for _, lot := range lots {
		if lot.ID == id {
			writeJSON(w, http.StatusOK, lot)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, errorResponse{Error: "lot not found"})
}

func (s *server) handleStats(w http.ResponseWriter, r *http.Request) {
	filtered, ok := s.filtered(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, query.Summarize(filtered))
}

func (s *server) handleCategories(w http.ResponseWriter, r *http.Request) {
	lots, err := s.store.Load()
	if err != nil {
		s.log.Error("load dataset", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "could not load data"})
		return
	}

	counts := query.CategoryCounts(lots)
	out := make([]categoryCount, 0, len(counts))
	for _, cat := range processing.Categories() {
		out = append(out, categoryCount{Category: cat, Count: counts[cat]})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) handleReload(w http.ResponseWriter, r *http.Request) {
	s.store.Invalidate()
	s.log.Info("dataset cache invalidated")
	writeJSON(w, http.StatusOK, map[string]string{"status": "reloading"})
}

// filtered loads the dataset and applies the request's filter criteria.
// On failure it writes the error response and reports ok=false.
func (s *server) filtered(w http.ResponseWriter, r *http.Request) ([]models.Lot, bool) {
	lots, err := s.store.Load()
	if err != nil {
		s.log.Error("load dataset", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "could not load data"})
		return nil, false
	}

	criteria := query.Criteria{
		Categories: parseCSV(r.URL.Query().Get("categories")),
		Keyword:    strings.TrimSpace(r.URL.Query().Get("q")),
		MinPrice:   parseFloat(r.URL.Query().Get("min")),
		MaxPrice:   parseFloat(r.URL.Query().Get("max")),
	}

	filtered, err := query.Filter(lots, criteria)
	if err != nil {
		if errors.Is(err, query.ErrInvalidCriteria) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return nil, false
		}
		s.log.Error("filter lots", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return nil, false
	}
	return filtered, true
}

func parseFloat(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &value
}

func parseCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func clampInt(raw string, fallback, max int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	if value <= 0 {
		return fallback
	}
	if value > max {
		return max
	}
	return value
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// nothing better to do
	}
}
