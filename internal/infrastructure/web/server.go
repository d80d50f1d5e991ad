// Package web serves the roster over HTTP and a live-search WebSocket.
package web

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/ersonp/lore-roster/internal/application/handlers"
	"github.com/ersonp/lore-roster/internal/domain/search"
	"github.com/ersonp/lore-roster/internal/domain/services"
)

const timeout = 10 * time.Second

// Options configures a Server.
type Options struct {
	WorldID  string
	Version  string
	Debounce time.Duration
	// NewPipeline builds the per-connection pipeline for live clients.
	NewPipeline func() *search.Pipeline
	Logger      *slog.Logger
}

// Server exposes one world's roster.
type Server struct {
	roster *handlers.RosterHandler
	opts   Options
	logger *slog.Logger
	router *httprouter.Router
}

// NewServer creates a Server and registers its routes.
func NewServer(roster *handlers.RosterHandler, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.NewPipeline == nil {
		opts.NewPipeline = func() *search.Pipeline {
			return search.NewPipeline(nil, search.DefaultLocale, search.WithLogger(opts.Logger))
		}
	}

	s := &Server{
		roster: roster,
		opts:   opts,
		logger: opts.Logger,
		router: httprouter.New(),
	}

	s.router.PanicHandler = func(w http.ResponseWriter, r *http.Request, v any) {
		s.logger.Error("panic serving request", "path", r.URL.Path, "panic", v)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
	}

	s.router.GET("/healthz", s.serveHealthCheck)
	s.router.GET("/version", s.serveVersion)
	s.router.GET("/api/characters", s.serveBrowse)
	s.router.GET("/api/characters/:id/history", s.serveHistory)
	s.router.PUT("/api/characters/:id/difficulty", s.serveRate)
	s.router.PUT("/api/characters/:id/ignored", s.serveSetIgnored)
	s.router.GET("/api/search", s.serveSearch)
	s.router.GET("/api/live", s.serveLive)

	return s
}

// Handler returns the router wrapped with request logging.
func (s *Server) Handler() http.Handler {
	return s.logRequests(s.router)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		IdleTimeout:       10 * time.Minute,
		ReadTimeout:       timeout,
		ReadHeaderTimeout: timeout,
		WriteTimeout:      timeout,
	}

	errs := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", "http://"+addr+"/", "world", s.opts.WorldID)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()

	select {
	case err := <-errs:
		if err != nil {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

func (s *Server) serveHealthCheck(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) serveVersion(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("roster v" + s.opts.Version + "\n"))
}

func (s *Server) serveBrowse(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()
	limit, err := intParam(q.Get("limit"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	offset, err := intParam(q.Get("offset"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	res, err := s.roster.HandleBrowse(r.Context(), s.opts.WorldID, handlers.BrowseParams{
		Query:        q.Get("q"),
		Ignore:       q.Get("ignore"),
		Content:      q.Get("content"),
		Rating:       q.Get("rating"),
		Difficulty:   q.Get("difficulty"),
		IncludeNonTV: q.Get("non_tv"),
		Sort:         q.Get("sort"),
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) serveSearch(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, err := intParam(r.URL.Query().Get("limit"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	res, err := s.roster.HandleSearch(r.Context(), s.opts.WorldID, r.URL.Query().Get("q"), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) serveRate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Difficulty json.RawMessage `json:"difficulty"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	if len(body.Difficulty) == 0 {
		s.writeError(w, fmt.Errorf("%w: difficulty is required", services.ErrInvalidInput))
		return
	}

	c, err := s.roster.HandleRate(r.Context(), s.opts.WorldID, ps.ByName("id"), scalarText(body.Difficulty))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) serveSetIgnored(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Ignored *bool `json:"ignored"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	if body.Ignored == nil {
		s.writeError(w, fmt.Errorf("%w: ignored is required", services.ErrInvalidInput))
		return
	}

	c, err := s.roster.HandleSetIgnored(r.Context(), s.opts.WorldID, ps.ByName("id"), *body.Ignored)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) serveHistory(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	entries, err := s.roster.HandleHistory(r.Context(), s.opts.WorldID, ps.ByName("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

type errorBody struct {
	Error string `json:"error"`
}

// writeError maps domain errors to status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrCharacterNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrInvalidDifficulty), errors.Is(err, services.ErrInvalidInput):
		status = http.StatusBadRequest
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
		msg = "internal server error"
	}
	writeJSON(w, status, errorBody{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<16))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: decoding body: %v", services.ErrInvalidInput, err)
	}
	return nil
}

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", services.ErrInvalidInput, s)
	}
	return n, nil
}

// scalarText renders a JSON string or number as plain text.
func scalarText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	text := strings.TrimSpace(string(raw))
	if text == "null" {
		return ""
	}
	return text
}

// statusRecorder captures the response status for request logs.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).Round(time.Microsecond),
			"remote", realIP(r),
		)
	})
}

func realIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" && net.ParseIP(ip) != nil {
		host = ip
	}
	return host
}
