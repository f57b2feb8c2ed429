// Package server exposes indexed collections over a JSON HTTP API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/MiMa6/rag-search-system/internal/adapter/cache"
	"github.com/MiMa6/rag-search-system/internal/domain"
	"github.com/MiMa6/rag-search-system/internal/port"
	"github.com/MiMa6/rag-search-system/internal/usecase"
)

// Server is the HTTP front end for the query pipeline.
type Server struct {
	store             port.VectorStore
	embedder          port.Embedder
	generator         port.LLM
	defaultCollection string
	topK              int
	tokenBudget       int
	logger            *zap.Logger

	mu      sync.Mutex
	engines map[string]*usecase.QueryEngine

	server *http.Server
}

// New creates a server over an opened store and provider clients.
func New(
	store port.VectorStore,
	embedder port.Embedder,
	generator port.LLM,
	defaultCollection string,
	topK int,
	tokenBudget int,
	logger *zap.Logger,
) *Server {
	return &Server{
		store:             store,
		embedder:          embedder,
		generator:         generator,
		defaultCollection: defaultCollection,
		topK:              topK,
		tokenBudget:       tokenBudget,
		logger:            logger,
		engines:           make(map[string]*usecase.QueryEngine),
	}
}

// Router returns the HTTP handler with all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Post("/api/v1/query", s.handleQuery)
	r.Get("/api/v1/collections", s.handleCollections)
	r.Get("/health", s.handleHealth)

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// engineFor returns a query engine bound to the collection, building it
// on first use. Engines are cached only once the collection holds
// documents, so a collection indexed after startup is picked up on the
// next request. Each engine memoizes retrieval results, so repeated
// questions skip the embedding call.
func (s *Server) engineFor(collection string) (*usecase.QueryEngine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if engine, ok := s.engines[collection]; ok {
		return engine, nil
	}

	manager := usecase.NewCollectionManager(s.store, s.embedder, nil, collection)
	index, err := manager.ExistingIndex()
	if err != nil {
		return nil, err
	}
	if index == nil {
		return nil, fmt.Errorf("%w: collection %s holds no documents", domain.ErrNoIndexLoaded, collection)
	}

	synthesizer := usecase.NewSynthesizer(s.generator, s.tokenBudget)
	retriever := cache.NewCachedRetriever(index, cache.NewRetrievalCache(128, 5*time.Minute))
	engine := usecase.NewQueryEngine(retriever, synthesizer, s.topK)
	s.engines[collection] = engine
	return engine, nil
}
