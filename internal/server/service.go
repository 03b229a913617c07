// Package server exposes the analysis store and the affordability advisor
// over a small local HTTP API with an SSE change stream.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/theirongolddev/cashraaga/internal/advisor"
	"github.com/theirongolddev/cashraaga/internal/analysis"
	"github.com/theirongolddev/cashraaga/internal/model"
)

// maxBodyBytes bounds uploaded analysis payloads, which embed the cleaned CSV.
const maxBodyBytes = 32 << 20

// Config controls the server runtime behavior.
type Config struct {
	Addr         string
	EventsBuffer int
}

// Event types.
const (
	EventSnapshot = "snapshot"
	EventSet      = "analysis_set"
	EventCleared  = "analysis_cleared"
)

// Snapshot is a compact view of the current analysis for status/event payloads.
type Snapshot struct {
	Loaded        bool    `json:"loaded"`
	Inflow        float64 `json:"inflow"`
	Outflow       float64 `json:"outflow"`
	NetSavings    float64 `json:"net_savings"`
	ExistingEMI   float64 `json:"existing_emi"`
	MonthsTracked int     `json:"months_tracked"`
	Categories    int     `json:"categories"`
}

// Event is emitted whenever the stored analysis changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time  `json:"started_at"`
	SavedAt         *time.Time `json:"saved_at,omitempty"`
	Summary         Snapshot   `json:"summary"`
	EventCount      int        `json:"event_count"`
	SubscriberCount int        `json:"subscriber_count"`
}

// AffordResponse is the body of a successful POST /v1/afford.
type AffordResponse struct {
	Form    advisor.Form              `json:"form"`
	Result  model.AffordabilityResult `json:"result"`
	Verdict string                    `json:"verdict_label"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Service provides the HTTP API over a shared analysis store.
type Service struct {
	cfg   Config
	store *analysis.Store
	ctrl  *advisor.Controller
	log   *zap.Logger

	unsubscribe func()

	mu          sync.RWMutex
	startedAt   time.Time
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a service publishing store changes as events. Call Close to
// detach it from the store.
func New(cfg Config, st *analysis.Store, ctrl *advisor.Controller, log *zap.Logger) *Service {
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if log == nil {
		log = zap.NewNop()
	}

	s := &Service{
		cfg:       cfg,
		store:     st,
		ctrl:      ctrl,
		log:       log,
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
	s.unsubscribe = st.Subscribe(s.onAnalysisChange)
	return s
}

// Close stops listening for store changes.
func (s *Service) Close() {
	s.unsubscribe()
}

// Handler returns the API routes.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /v1/status", s.handleStatus)
	mux.HandleFunc("GET /v1/analysis", s.handleGetAnalysis)
	mux.HandleFunc("PUT /v1/analysis", s.handlePutAnalysis)
	mux.HandleFunc("DELETE /v1/analysis", s.handleDeleteAnalysis)
	mux.HandleFunc("POST /v1/afford", s.handleAfford)
	mux.HandleFunc("GET /v1/events", s.handleEvents)
	mux.HandleFunc("GET /v1/stream", s.handleStream)
	return mux
}

// Run serves the API until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.log.Info("server listening", zap.String("addr", s.cfg.Addr))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		// Open SSE streams end with their request contexts.
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}
}

func (s *Service) onAnalysisChange(a *model.AnalysisResult) {
	typ := EventSet
	if a == nil {
		typ = EventCleared
	}

	ev := s.publishEvent(Event{
		Type:      typ,
		Timestamp: time.Now(),
		Snapshot:  snapshotOf(a),
	})
	s.log.Debug("published event", zap.Int64("id", ev.ID), zap.String("type", ev.Type))
}

func snapshotOf(a *model.AnalysisResult) Snapshot {
	if a == nil {
		return Snapshot{}
	}
	snap := Snapshot{
		Loaded:     true,
		Categories: len(a.CategorySummary),
	}
	if a.Summary != nil {
		snap.Inflow = a.Summary.Inflow
		snap.Outflow = a.Summary.Outflow
		snap.NetSavings = a.Summary.NetSavings
	}
	if a.EMI != nil {
		snap.ExistingEMI = a.EMI.ThisMonth
		snap.MonthsTracked = a.EMI.MonthsTracked
	}
	return snap
}

// publishEvent numbers ev, appends it to the ring buffer and fans it out
// to stream subscribers without blocking.
func (s *Service) publishEvent(ev Event) Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextEventID++
	ev.ID = s.nextEventID

	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	return ev
}

func (s *Service) snapshotStatus(ctx context.Context) Status {
	summary := snapshotOf(s.store.Get())
	var savedAt *time.Time
	if at, ok := s.store.SavedAt(ctx); ok {
		savedAt = &at
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		SavedAt:         savedAt,
		Summary:         summary,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus(r.Context()))
}

func (s *Service) handleGetAnalysis(w http.ResponseWriter, _ *http.Request) {
	a := s.store.Get()
	if a == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no analysis loaded"})
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// handlePutAnalysis treats the request as a new upload: the previous
// analysis is cleared first, so a rejected payload leaves the store empty.
func (s *Service) handlePutAnalysis(w http.ResponseWriter, r *http.Request) {
	if s.store.Loaded() {
		if err := s.store.Set(r.Context(), nil); err != nil {
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
			return
		}
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: err.Error()})
		return
	}

	a, err := analysis.Decode(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	if err := s.store.Set(r.Context(), a); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, analysis.ErrUnserializable) || errors.Is(err, analysis.ErrMalformed) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, snapshotOf(a))
}

func (s *Service) handleDeleteAnalysis(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Set(r.Context(), nil); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) handleAfford(w http.ResponseWriter, r *http.Request) {
	var form advisor.Form
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(&form); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid form: " + err.Error()})
		return
	}

	form = s.ctrl.Prefill(form)
	result, err := s.ctrl.Evaluate(form)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: advisor.UserMessage(err)})
		return
	}

	writeJSON(w, http.StatusOK, AffordResponse{
		Form:    form,
		Result:  result,
		Verdict: result.Verdict.Label(),
	})
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	current := Event{
		Type:      EventSnapshot,
		Timestamp: time.Now(),
		Snapshot:  snapshotOf(s.store.Get()),
	}
	writeSSE(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
