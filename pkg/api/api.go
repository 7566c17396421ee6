// Package api serves the ClawdSign HTTP API.
//
// Routes:
//
//	POST /api/claim-signature      claim a generated signature
//	POST /api/vote                 vote for a claimed signature
//	GET  /api/stats                aggregate statistics
//	POST /api/preview              generate without claiming
//	GET  /api/signatures/{id}      claimed signature as JSON
//	GET  /api/signatures/{id}/svg  claimed signature as SVG
//	GET  /health                   store liveness
//
// Every route answers CORS preflight requests and reports failures as a JSON
// object with an "error" field.
package api

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/clawdsign/pkg/service"
)

// DefaultMaxBodyBytes caps request bodies.
const DefaultMaxBodyBytes = 64 << 10

// Server routes HTTP requests to a service.Service.
type Server struct {
	svc          *service.Service
	logger       *log.Logger
	maxBodyBytes int64
	router       chi.Router
	now          func() time.Time
}

// Options configures a Server. Zero values select defaults.
type Options struct {
	Logger       *log.Logger
	MaxBodyBytes int64
}

// New builds the router for svc.
func New(svc *service.Service, opts Options) *Server {
	s := &Server{
		svc:          svc,
		logger:       opts.Logger,
		maxBodyBytes: opts.MaxBodyBytes,
		now:          time.Now,
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.maxBodyBytes <= 0 {
		s.maxBodyBytes = DefaultMaxBodyBytes
	}
	s.router = s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(s.recoverer)
	r.Use(cors)
	r.Use(s.limitBody)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "Method not allowed"})
	})

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(api chi.Router) {
		api.Post("/claim-signature", s.handleClaim)
		api.Post("/vote", s.handleVote)
		api.Get("/stats", s.handleStats)
		api.Post("/preview", s.handlePreview)
		api.Get("/signatures/{id}", s.handleSignature)
		api.Get("/signatures/{id}/svg", s.handleSignatureSVG)
	})
	return r
}
