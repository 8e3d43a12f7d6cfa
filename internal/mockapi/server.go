package mockapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ssebasarias/Dahell/internal/dahell"
)

const (
	maxAuditLogs   = 50
	maxServiceLogs = 200
	visualResults  = 8
)

var validActions = map[string]bool{
	dahell.ActionMergeSelected:    true,
	dahell.ActionConfirmSingleton: true,
	dahell.ActionTrash:            true,
}

// Server is an in-memory stand-in for the Dahell backend.
type Server struct {
	logger *zap.Logger
	now    func() time.Time

	mu         sync.Mutex
	products   []product
	categories []dahell.Category
	orphans    []dahell.Orphan
	audits     []dahell.AuditLog
	auditSeq   int
	stats      dahell.ClusterStats
	logs       []dahell.ServiceLog
	containers dahell.ContainerStats
	actions    []dahell.OrphanActionRequest
	feedback   []dahell.FeedbackRequest
	failures   map[string]int
	delay      time.Duration
}

// Option customises a Server.
type Option func(*Server)

// WithProducts sets how many Gold Mine products are seeded.
func WithProducts(n int) Option {
	return func(s *Server) { s.products = seedProducts(n) }
}

// WithClock replaces time.Now for deterministic timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithLatency delays every response.
func WithLatency(d time.Duration) Option {
	return func(s *Server) { s.delay = d }
}

// New builds a seeded mock backend.
func New(logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		logger:   logger.With(zap.String("component", "mockapi")),
		now:      time.Now,
		products: seedProducts(57),
		failures: map[string]int{},
	}
	for _, opt := range opts {
		opt(s)
	}
	now := s.now()
	s.categories = seedCategories()
	s.orphans = seedOrphans(s.products)
	s.containers = seedContainers(now)
	s.logs = seedLogs()
	for i := 0; i < 12; i++ {
		s.appendAudit(now)
	}
	s.stats = dahell.ClusterStats{
		XPAudits:        40,
		XPToday:         6,
		FeedbackCorrect: 31,
		TotalProducts:   len(s.products),
	}
	return s
}

// Handler returns the router with every route mounted under /api.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(s.injectFailures)

	r.Route("/api", func(r chi.Router) {
		r.Get("/gold-mine/", s.handleGoldMine)
		r.Post("/gold-mine/visual-search/", s.handleVisualSearch)
		r.Get("/categories/", s.handleCategories)

		r.Route("/cluster-lab", func(r chi.Router) {
			r.Get("/audit-logs/", s.handleAuditLogs)
			r.Get("/orphans/", s.handleOrphans)
			r.Get("/stats/", s.handleStats)
			r.Post("/orphans/investigate/", s.handleInvestigate)
			r.Post("/orphans/action/", s.handleOrphanAction)
			r.Post("/feedback/", s.handleFeedback)
		})

		r.Get("/system-logs/", s.handleSystemLogs)
		r.Get("/control/stats/", s.handleContainerStats)
		r.Post("/control/container/{service}/{action}/", s.handleControl)
	})
	return r
}

// ListenAndServe serves the mock until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	s.logger.Info("mock api listening", zap.String("addr", ln.Addr().String()))
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// FailNext makes the next n requests whose path contains fragment answer 500.
func (s *Server) FailNext(fragment string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[fragment] += n
}

// Actions returns the orphan actions received so far.
func (s *Server) Actions() []dahell.OrphanActionRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]dahell.OrphanActionRequest(nil), s.actions...)
}

// Feedback returns the feedback payloads received so far.
func (s *Server) Feedback() []dahell.FeedbackRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]dahell.FeedbackRequest(nil), s.feedback...)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		if s.delay > 0 {
			time.Sleep(s.delay)
		}
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", r.Header.Get("X-Request-ID")),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		failed := false
		for fragment, n := range s.failures {
			if n > 0 && strings.Contains(r.URL.Path, fragment) {
				s.failures[fragment] = n - 1
				failed = true
				break
			}
		}
		s.mu.Unlock()
		if failed {
			writeError(w, http.StatusInternalServerError, "injected failure")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleGoldMine(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search := strings.ToLower(strings.TrimSpace(q.Get("q")))
	category := strings.TrimSpace(q.Get("category"))
	minComp := intParam(q.Get("min_comp"), 0)
	maxComp := intParam(q.Get("max_comp"), 1<<30)
	minPrice := floatParam(q.Get("min_price"))
	maxPrice := floatParam(q.Get("max_price"))
	limit := intParam(q.Get("limit"), 20)
	offset := intParam(q.Get("offset"), 0)

	s.mu.Lock()
	matches := make([]dahell.Opportunity, 0, len(s.products))
	for _, p := range s.products {
		if search != "" && !strings.Contains(strings.ToLower(p.Title), search) {
			continue
		}
		if category != "" && p.CategoryID != category {
			continue
		}
		if p.Competitors < minComp || p.Competitors > maxComp {
			continue
		}
		price := p.Price.Float64()
		if minPrice > 0 && price < minPrice {
			continue
		}
		if maxPrice > 0 && price > maxPrice {
			continue
		}
		matches = append(matches, p.Opportunity)
	}
	s.mu.Unlock()

	if offset > len(matches) {
		offset = len(matches)
	}
	end := offset + limit
	if end > len(matches) {
		end = len(matches)
	}
	writeJSON(w, http.StatusOK, matches[offset:end])
}

func (s *Server) handleVisualSearch(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "image required")
		return
	}
	defer func() { _ = file.Close() }()

	h := fnv.New32a()
	if _, err := io.Copy(h, file); err != nil {
		writeError(w, http.StatusBadRequest, "read image")
		return
	}
	seed := int(h.Sum32() % 1000)

	s.mu.Lock()
	out := make([]dahell.Opportunity, 0, visualResults)
	for i := 0; i < visualResults && i < len(s.products); i++ {
		p := s.products[(seed+i*7)%len(s.products)].Opportunity
		p.ProfitMargin = ""
		p.Similarity = dahell.FlexString(fmt.Sprintf("%d%%", 98-i*4))
		out = append(out, p)
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.categories)
}

func (s *Server) handleAuditLogs(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendAudit(s.now())
	out := make([]dahell.AuditLog, len(s.audits))
	for i := range s.audits {
		out[i] = s.audits[len(s.audits)-1-i]
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) appendAudit(now time.Time) {
	s.audits = append(s.audits, synthAudit(s.auditSeq, s.products, now))
	s.auditSeq++
	if len(s.audits) > maxAuditLogs {
		s.audits = s.audits[len(s.audits)-maxAuditLogs:]
	}
}

func (s *Server) handleOrphans(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]dahell.Orphan{}, s.orphans...)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := s.stats
	stats.PendingOrphans = len(s.orphans)
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleInvestigate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID int64 `json:"product_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.productIndex(req.ProductID)
	if idx < 0 {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	target := s.products[idx]
	inv := dahell.Investigation{
		Target: dahell.Product{ID: target.ID, Title: target.Title, Image: target.Image, Price: target.Price},
	}
	for i := 1; i <= 4; i++ {
		c := s.products[(idx+i*5)%len(s.products)]
		visual := 0.95 - float64(i)*0.12
		text := 0.9 - float64(i)*0.1
		inv.Candidates = append(inv.Candidates, dahell.Candidate{
			ID:    c.ID,
			Title: c.Title,
			Image: c.Image,
			Price: c.Price,
			Scores: dahell.CandidateScores{
				Final:  (visual*6 + text*4) / 10,
				Visual: visual,
				Text:   text,
			},
		})
	}
	writeJSON(w, http.StatusOK, inv)
}

func (s *Server) handleOrphanAction(w http.ResponseWriter, r *http.Request) {
	var req dahell.OrphanActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if !validActions[req.Action] {
		writeError(w, http.StatusBadRequest, "unknown action")
		return
	}
	if req.Action == dahell.ActionMergeSelected && len(req.Candidates) == 0 {
		writeError(w, http.StatusBadRequest, "merge requires candidates")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.orphans[:0]
	found := false
	for _, o := range s.orphans {
		if o.ProductID == req.ProductID {
			found = true
			continue
		}
		kept = append(kept, o)
	}
	if !found {
		writeError(w, http.StatusNotFound, "orphan not found")
		return
	}
	s.orphans = kept
	s.actions = append(s.actions, req)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req dahell.FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Feedback != dahell.FeedbackCorrect && req.Feedback != dahell.FeedbackIncorrect {
		writeError(w, http.StatusBadRequest, "feedback must be CORRECT or INCORRECT")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.feedback = append(s.feedback, req)
	s.stats.XPAudits++
	s.stats.XPToday++
	if req.Feedback == dahell.FeedbackCorrect {
		s.stats.FeedbackCorrect++
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

func (s *Server) handleSystemLogs(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, append([]dahell.ServiceLog{}, s.logs...))
}

func (s *Server) handleContainerStats(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(dahell.ContainerStats, len(s.containers))
	for k, v := range s.containers {
		out[k] = v
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleControl(w http.ResponseWriter, r *http.Request) {
	service := chi.URLParam(r, "service")
	action := chi.URLParam(r, "action")

	s.mu.Lock()
	defer s.mu.Unlock()
	stat, ok := s.containers[service]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown service")
		return
	}
	switch action {
	case "start", "restart":
		stat.Status = "running"
		stat.StartedAt = s.now().UTC().Format(time.RFC3339)
	case "stop":
		stat.Status = "exited"
		stat.CPUPercent = 0
	default:
		writeError(w, http.StatusBadRequest, "unknown action")
		return
	}
	s.containers[service] = stat
	s.logs = append(s.logs, dahell.ServiceLog{Service: service, Message: "container " + action + " requested", Level: "WARNING"})
	if len(s.logs) > maxServiceLogs {
		s.logs = s.logs[len(s.logs)-maxServiceLogs:]
	}
	writeJSON(w, http.StatusOK, dahell.ControlResponse{Status: stat.Status, Message: service + " " + action})
}

func (s *Server) productIndex(id int64) int {
	for i, p := range s.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func intParam(raw string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return v
}

func floatParam(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	return v
}
