package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"pollboard/internal/authz"
	"pollboard/internal/domain/poll"
	"pollboard/internal/domain/vote"
	"pollboard/internal/identity"
	"pollboard/internal/worker"
)

type Handler struct {
	idp     identity.Provider
	pollSvc *poll.Service
	voteSvc *vote.Service
	az      *authz.Authorizer
	voteCh  chan<- worker.VoteEvent
	db      *sql.DB
}

type Options struct {
	Identity   identity.Provider
	Polls      *poll.Service
	Votes      *vote.Service
	Authorizer *authz.Authorizer
	VoteEvents chan<- worker.VoteEvent
	DB         *sql.DB
	CORSOrigin string
}

func NewRouter(opts Options) http.Handler {
	h := &Handler{
		idp:     opts.Identity,
		pollSvc: opts.Polls,
		voteSvc: opts.Votes,
		az:      opts.Authorizer,
		voteCh:  opts.VoteEvents,
		db:      opts.DB,
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(RequestLogger)
	r.Use(CORSMiddleware(opts.CORSOrigin))

	// Health, metrics and docs sit outside the session gate, like static
	// assets in the original request matcher.
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/ready", h.handleReady)
	r.Get("/swagger/*", httpSwagger.WrapHandler)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Group(func(r chi.Router) {
		r.Use(SessionGate(h.idp))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.handleRegister)
			r.Post("/login", h.handleLogin)
			r.Post("/logout", h.handleLogout)
		})

		r.Route("/api/v1", func(r chi.Router) {
			// Single poll view is public; everything else needs a session.
			r.Get("/polls/{id}", h.handleGetPoll)

			r.Group(func(r chi.Router) {
				r.Use(RequireSession)

				r.Get("/polls", h.handleListPolls)
				r.Post("/polls", h.handleCreatePoll)
				r.Patch("/polls/{id}", h.handleUpdatePoll)
				r.Delete("/polls/{id}", h.handleDeletePoll)
				r.With(RateLimitVotes(rate.Every(time.Minute/10), 3)).Post("/polls/{id}/votes", h.handleVote)

				r.Group(func(r chi.Router) {
					r.Use(RequireRole(h.az, authz.RoleAdmin))
					r.Get("/admin/polls", h.handleAdminListPolls)
				})
			})
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error":   "db_unavailable",
			"message": "database not configured",
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error":   "db_unavailable",
			"message": "database not ready",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
