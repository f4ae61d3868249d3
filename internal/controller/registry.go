package controller

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/edutrack-app/edutrack-bff/internal/schema"
	"github.com/edutrack-app/edutrack-bff/internal/store"
	appErrors "github.com/edutrack-app/edutrack-bff/pkg/errors"
)

// Registry hands out one controller per (session, entity type) pair and
// evicts idle sessions after a TTL, standing in for the page-reload teardown
// a browser would perform.
type Registry struct {
	mu       sync.Mutex
	sessions *gocache.Cache
	schemas  map[string]schema.Schema
	gw       Gateway
	logger   *zap.Logger
}

// NewRegistry builds a registry for the given entity schemas, keyed by
// schema name.
func NewRegistry(gw Gateway, schemas []schema.Schema, idleTTL, cleanupInterval time.Duration, logger *zap.Logger) *Registry {
	if idleTTL <= 0 {
		idleTTL = 30 * time.Minute
	}
	if cleanupInterval <= 0 {
		cleanupInterval = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	byName := make(map[string]schema.Schema, len(schemas))
	for _, sch := range schemas {
		byName[sch.Name] = sch
	}
	return &Registry{
		sessions: gocache.New(idleTTL, cleanupInterval),
		schemas:  byName,
		gw:       gw,
		logger:   logger,
	}
}

// Get returns the session's controller for the entity, creating it on first
// use. Access refreshes the idle TTL.
func (r *Registry) Get(sessionID, entity string) (*Controller, error) {
	sch, ok := r.schemas[entity]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown entity: "+entity)
	}
	key := sessionID + "|" + entity

	r.mu.Lock()
	defer r.mu.Unlock()

	if cached, found := r.sessions.Get(key); found {
		r.sessions.SetDefault(key, cached)
		return cached.(*Controller), nil
	}

	ctrl := New(sch, store.New(), r.gw, r.logger.With(
		zap.String("entity", entity),
		zap.String("session", sessionID),
	))
	r.sessions.SetDefault(key, ctrl)
	return ctrl, nil
}

// Entities lists the entity names the registry serves.
func (r *Registry) Entities() []string {
	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	return names
}
