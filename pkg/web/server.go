package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ritzau/appearance-engine/pkg/appearance"
	"github.com/ritzau/appearance-engine/pkg/caption"
	"github.com/ritzau/appearance-engine/pkg/dataset"
	"github.com/ritzau/appearance-engine/pkg/engine"
	"github.com/ritzau/appearance-engine/pkg/logging"
	"github.com/ritzau/appearance-engine/pkg/model"
	"github.com/ritzau/appearance-engine/pkg/pubsub"
	"github.com/ritzau/appearance-engine/pkg/render"
)

// maxBodySize bounds request documents
const maxBodySize = 8 << 20

// Engine is the part of the engine the HTTP API drives
type Engine interface {
	Appearance() appearance.State
	SetAppearance(ctx context.Context, state appearance.State)
	SetFilter(ctx context.Context, filter *engine.Filter)
	SetSizeRatio(ratio float64)
	ApplyMetric(ctx context.Context, field model.FieldModel, values map[string]model.Scalar) error
	Rendering() *render.Data
	Caption() caption.Caption
	ItemAttributes(itemType model.ItemType, id string) render.ItemAttributes
	Dataset() engine.DatasetInfo
}

// NewPublisher creates the SSE publisher with per-topic replay. replay is the
// number of rendering events a late subscriber receives; status and caption
// only replay their latest event.
func NewPublisher(replay int) *pubsub.SSEPublisher {
	p := pubsub.NewSSEPublisher()
	p.ConfigureTopic(pubsub.TopicRendering, pubsub.TopicConfig{
		BufferSize: replay,
		ReplayAll:  true,
	})
	p.ConfigureTopic(pubsub.TopicCaption, pubsub.TopicConfig{BufferSize: 1})
	p.ConfigureTopic(pubsub.TopicStatus, pubsub.TopicConfig{BufferSize: 10})
	return p
}

// Server represents the web server
type Server struct {
	router         *mux.Router
	engine         Engine
	publisher      pubsub.Publisher
	appearancePath string // Appearance updates are saved here when set
}

// NewServer creates a new web server. appearancePath may be empty.
func NewServer(eng Engine, publisher pubsub.Publisher, appearancePath string) *Server {
	s := &Server{
		router:         mux.NewRouter(),
		engine:         eng,
		publisher:      publisher,
		appearancePath: appearancePath,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(logging.RequestIDMiddleware)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/subscribe/{topic}", s.handleSubscribe).Methods(http.MethodGet)
	api.HandleFunc("/appearance", s.handleGetAppearance).Methods(http.MethodGet)
	api.HandleFunc("/appearance", s.handlePutAppearance).Methods(http.MethodPut)
	api.HandleFunc("/rendering", s.handleRendering).Methods(http.MethodGet)
	api.HandleFunc("/caption", s.handleCaption).Methods(http.MethodGet)
	api.HandleFunc("/items/{type:nodes|edges}/{id}", s.handleItem).Methods(http.MethodGet)
	api.HandleFunc("/filter", s.handlePutFilter).Methods(http.MethodPut)
	api.HandleFunc("/metrics/{type:nodes|edges}", s.handlePostMetric).Methods(http.MethodPost)
	api.HandleFunc("/dataset", s.handleDataset).Methods(http.MethodGet)

	s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
}

// ServeHTTP makes the server usable as a handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	topic := mux.Vars(r)["topic"]
	switch topic {
	case pubsub.TopicRendering, pubsub.TopicCaption, pubsub.TopicStatus:
	default:
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown topic %q", topic))
		return
	}

	sub, err := s.publisher.Subscribe(r.Context(), topic)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	// Initial comment establishes the stream (Safari compatibility)
	fmt.Fprintf(w, ": connected\n\n")
	flusher, _ := w.(http.Flusher)
	if flusher != nil {
		flusher.Flush()
	}

	for event := range sub.Events() {
		if err := pubsub.WriteSSE(w, event); err != nil {
			logging.DebugContext(r.Context(), "subscriber went away", "topic", topic, "error", err)
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

func (s *Server) handleGetAppearance(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Appearance())
}

func (s *Server) handlePutAppearance(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	state, err := appearance.DecodeState(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	// Saved before applying so a failed save leaves the engine unchanged
	if s.appearancePath != "" {
		if err := dataset.SaveAppearance(s.appearancePath, state); err != nil {
			logging.ErrorContext(r.Context(), "failed to save appearance", "path", s.appearancePath, "error", err)
			writeError(w, http.StatusInternalServerError, err)
			return
		}
	}
	s.engine.SetAppearance(r.Context(), state)
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleRendering(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Rendering())
}

// handleCaption returns the legends. The optional ratio parameter reports the
// renderer's current size/rawSize ratio.
func (s *Server) handleCaption(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("ratio"); raw != "" {
		ratio, err := strconv.ParseFloat(raw, 64)
		if err != nil || ratio <= 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid ratio %q", raw))
			return
		}
		s.engine.SetSizeRatio(ratio)
	}
	writeJSON(w, http.StatusOK, s.engine.Caption())
}

func (s *Server) handleItem(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	writeJSON(w, http.StatusOK, s.engine.ItemAttributes(model.ItemType(vars["type"]), vars["id"]))
}

// handlePutFilter replaces the filtered view; a null body clears it
func (s *Server) handlePutFilter(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var filter *engine.Filter
	if err := json.Unmarshal(body, &filter); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decoding filter: %w", err))
		return
	}
	s.engine.SetFilter(r.Context(), filter)
	w.WriteHeader(http.StatusNoContent)
}

// MetricRequest carries the values of a computed field
type MetricRequest struct {
	Field  model.FieldModel        `json:"field"`
	Values map[string]model.Scalar `json:"values"`
}

func (s *Server) handlePostMetric(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var req MetricRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decoding metric: %w", err))
		return
	}
	if req.Field.ID == "" {
		writeError(w, http.StatusBadRequest, errors.New("field id required"))
		return
	}
	// Dynamic fields are derived from topology and cannot be written
	req.Field.ItemType = model.ItemType(mux.Vars(r)["type"])
	req.Field.Dynamic = false

	if err := s.engine.ApplyMetric(r.Context(), req.Field, req.Values); err != nil {
		status := http.StatusBadRequest
		if !errors.Is(err, model.ErrUnknownItem) && !errors.Is(err, model.ErrInvalidValue) {
			status = http.StatusInternalServerError
		}
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Dataset())
}

func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Dataset())
}

func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	if len(body) > maxBodySize {
		return nil, errors.New("request body too large")
	}
	return body, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// Run serves on the given port until ctx is done
func (s *Server) Run(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		// Cancelling ctx ends open SSE streams, which Shutdown would wait for
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("starting web server", "url", fmt.Sprintf("http://localhost:%d", port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("web server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down web server: %w", err)
	}
	return nil
}
