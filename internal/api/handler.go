// Package api exposes the search HTTP surface: the query endpoint, index
// stats, and cache administration.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/internal/api/cache"
	"github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/internal/search"
	"github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/internal/search/index"
	"github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/internal/search/parser"
	apperrors "github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/pkg/tracing"
)

// Handler serves the search API on top of an open index store.
type Handler struct {
	store        *index.Store
	cache        *cache.QueryCache
	recorder     *analytics.Recorder
	metrics      *metrics.Metrics
	defaultLimit int
	maxLimit     int
	logger       *slog.Logger
}

// New builds a Handler. queryCache, recorder, and m may be nil; the
// corresponding features are then disabled.
func New(store *index.Store, queryCache *cache.QueryCache, recorder *analytics.Recorder, m *metrics.Metrics, defaultLimit, maxLimit int) *Handler {
	return &Handler{
		store:        store,
		cache:        queryCache,
		recorder:     recorder,
		metrics:      m,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		logger:       slog.Default().With("component", "search-api"),
	}
}

// Register attaches the API routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/stats", h.Stats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
}

// Search handles GET /api/v1/search?q=...&limit=...&offset=...&sort=...
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	rawQuery := r.URL.Query().Get("q")
	limit, err := h.positiveParam(r, "limit", h.defaultLimit)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if limit > h.maxLimit {
		limit = h.maxLimit
	}
	offset, err := h.nonNegativeParam(r, "offset", 0)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sort := search.ParseSort(r.URL.Query().Get("sort"))

	query, err := parser.Parse(rawQuery)
	if err != nil {
		h.countQuery("parse_error")
		appErr := apperrors.New(apperrors.ErrInvalidQuery, http.StatusBadRequest, err.Error())
		h.writeError(w, apperrors.HTTPStatusCode(appErr), err.Error())
		return
	}

	ctx, span := tracing.StartSpan(ctx, "search", w.Header().Get("X-Request-Id"))
	execute := func() (*search.Result, error) {
		_, child := tracing.StartChildSpan(ctx, "index-query")
		defer child.End()
		return h.store.Search(query, limit, offset, sort)
	}

	var result *search.Result
	cacheHit := false
	if h.cache != nil {
		key := cache.Key{Query: rawQuery, Limit: limit, Offset: offset, Sort: sort}
		result, cacheHit, err = h.cache.GetOrCompute(ctx, key, execute)
	} else {
		result, err = execute()
	}
	if err != nil {
		h.countQuery("error")
		log.Error("search failed", "query", rawQuery, "error", err)
		wrapped := fmt.Errorf("%w: %v", apperrors.ErrIndexFailure, err)
		h.writeError(w, apperrors.HTTPStatusCode(wrapped), "search failed")
		return
	}

	span.SetAttr("total", result.Total)
	span.SetAttr("cache_hit", cacheHit)
	span.End()
	span.Log()

	latency := time.Since(start)
	h.observe(result, cacheHit, latency)
	log.Info("search completed",
		"query", rawQuery,
		"total", result.Total,
		"returned", len(result.Hits),
		"cache_hit", cacheHit,
		"latency_ms", latency.Milliseconds(),
	)

	if h.recorder != nil {
		h.recorder.Track(analytics.SearchEvent{
			Query:        rawQuery,
			KeywordCount: len(query.Keywords),
			Tags:         query.Tags,
			Category:     query.Category,
			HasRange:     query.Range != nil,
			Sort:         sort.String(),
			TotalHits:    result.Total,
			Returned:     len(result.Hits),
			CacheHit:     cacheHit,
			LatencyMs:    latency.Milliseconds(),
			Timestamp:    time.Now().UTC(),
		})
	}

	h.writeJSON(w, http.StatusOK, result)
}

// Stats handles GET /api/v1/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	count, err := h.store.DocCount()
	if err != nil {
		h.logger.Error("doc count failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "stats unavailable")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"documents":     count,
		"cache_enabled": h.cache != nil,
	})
}

// CacheInvalidate handles POST /api/v1/cache/invalidate.
func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}
	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func (h *Handler) positiveParam(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 1 {
		return 0, errors.New(name + " must be a positive integer")
	}
	return parsed, nil
}

func (h *Handler) nonNegativeParam(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 0 {
		return 0, errors.New(name + " must be a non-negative integer")
	}
	return parsed, nil
}

func (h *Handler) observe(result *search.Result, cacheHit bool, latency time.Duration) {
	if h.metrics == nil {
		return
	}
	outcome := "ok"
	if result.Total == 0 {
		outcome = "zero_result"
	}
	h.metrics.SearchQueriesTotal.WithLabelValues(outcome).Inc()
	cacheStatus := "miss"
	if cacheHit {
		cacheStatus = "hit"
	}
	h.metrics.SearchLatency.WithLabelValues(cacheStatus).Observe(latency.Seconds())
	h.metrics.SearchResultsCount.Observe(float64(len(result.Hits)))
}

func (h *Handler) countQuery(outcome string) {
	if h.metrics != nil {
		h.metrics.SearchQueriesTotal.WithLabelValues(outcome).Inc()
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
