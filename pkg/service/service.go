// Package service implements the claim, vote and statistics operations on top
// of a store.Store and a shared cache.
//
// The HTTP API and the CLI both drive a [Service]; it owns input validation,
// signature generation and cache invalidation so callers only translate
// requests and errors.
//
// Errors are *errors.Error values with codes the API maps to status codes:
//
//   - MISSING_FIELDS / INVALID_INPUT / INVALID_SIGNATURE_ID: 400
//   - SIGNATURE_NOT_FOUND: 404
//   - ALREADY_CLAIMED / ALREADY_VOTED: 409
//   - STORAGE_ERROR: 500
package service

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/clawdsign/pkg/cache"
	"github.com/matzehuels/clawdsign/pkg/store"
)

// DefaultStatsTTL is how long aggregated statistics stay cached.
const DefaultStatsTTL = 60 * time.Second

// Service coordinates the store, the cache and the signature generator.
// It is safe for concurrent use.
type Service struct {
	store    store.Store
	cache    cache.Cache
	logger   *log.Logger
	statsTTL time.Duration
	now      func() time.Time
	newID    func() string
}

// Option configures a Service.
type Option func(*Service)

// WithCache sets the cache used for statistics. The default is a NullCache.
func WithCache(c cache.Cache) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithLogger sets the logger for tolerated failures.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStatsTTL overrides DefaultStatsTTL.
func WithStatsTTL(d time.Duration) Option {
	return func(s *Service) { s.statsTTL = d }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New returns a service backed by st.
func New(st store.Store, opts ...Option) *Service {
	s := &Service{
		store:    st,
		cache:    cache.NewNullCache(),
		logger:   log.Default(),
		statsTTL: DefaultStatsTTL,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying store.
func (s *Service) Store() store.Store { return s.store }

func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}
