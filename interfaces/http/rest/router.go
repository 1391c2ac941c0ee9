package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"clubhub-backend/application/services"
	"clubhub-backend/interfaces/http/rest/handlers"
	"clubhub-backend/interfaces/http/rest/middleware"
	"clubhub-backend/pkg/auth"
	pkgerrors "clubhub-backend/pkg/errors"
	"clubhub-backend/pkg/observability"
)

// Options tunes the HTTP surface
type Options struct {
	EnableCORS            bool
	AllowedOrigins        []string
	RequestsPerMinute     int
	AllowUnverifiedTokens bool
	// Debug exposes internal error messages in responses
	Debug bool
}

// Router creates and configures the HTTP router
type Router struct {
	opts        Options
	clubs       *services.ClubService
	memberships *services.MembershipService
	users       *services.UserService
	metrics     *observability.Collector
	errors      *pkgerrors.ErrorHandler
	ipLimiter   *auth.KeyedLimiter
	userLimiter *auth.KeyedLimiter
	clock       clock.Clock
	logger      *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	opts Options,
	clubs *services.ClubService,
	memberships *services.MembershipService,
	users *services.UserService,
	metrics *observability.Collector,
	clk clock.Clock,
	logger *zap.Logger,
) *Router {
	rt := &Router{
		opts:        opts,
		clubs:       clubs,
		memberships: memberships,
		users:       users,
		metrics:     metrics,
		errors:      pkgerrors.NewErrorHandler(logger, opts.Debug),
		clock:       clk,
		logger:      logger,
	}
	if opts.RequestsPerMinute > 0 {
		rt.ipLimiter = auth.NewIPRateLimiter(opts.RequestsPerMinute, clk)
		rt.userLimiter = auth.NewUserRateLimiter(opts.RequestsPerMinute, clk)
	}
	return rt
}

// Setup configures all routes and middleware
func (rt *Router) Setup() *chi.Mux {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(rt.errors.Middleware)
	router.Use(middleware.Logger(rt.logger, rt.metrics))

	if rt.opts.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   rt.opts.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	router.Get("/health", rt.healthCheck)
	if rt.metrics != nil {
		router.Handle("/metrics", rt.metrics.Handler())
	}

	clubHandler := handlers.NewClubHandler(rt.clubs, rt.users, rt.errors, rt.logger)
	memberHandler := handlers.NewMemberHandler(rt.memberships, rt.users, rt.errors, rt.logger)
	userHandler := handlers.NewUserHandler(rt.users, rt.memberships, rt.errors, rt.logger)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(middleware.AuthOptions{
			AllowUnverifiedTokens: rt.opts.AllowUnverifiedTokens,
		}, rt.errors, rt.logger))
		if rt.ipLimiter != nil {
			r.Use(middleware.RateLimit(rt.ipLimiter, rt.userLimiter, rt.errors, rt.logger))
		}

		r.Route("/me", func(r chi.Router) {
			r.Get("/", userHandler.GetMe)
			r.Patch("/", userHandler.UpdateMe)
			r.Get("/memberships", userHandler.ListMyMemberships)
		})

		r.Route("/clubs", func(r chi.Router) {
			r.Get("/", clubHandler.ListClubs)
			r.Post("/", clubHandler.CreateClub)

			r.Route("/{clubID}", func(r chi.Router) {
				r.Get("/", clubHandler.GetClub)
				r.Patch("/", clubHandler.UpdateClub)
				r.Post("/join", memberHandler.JoinClub)
				r.Post("/leave", memberHandler.LeaveClub)

				r.Route("/members", func(r chi.Router) {
					r.Get("/", memberHandler.ListMembers)
					r.Route("/{userID}", func(r chi.Router) {
						r.Get("/", memberHandler.GetMember)
						r.Delete("/", memberHandler.Remove)
						r.Post("/approve", memberHandler.Approve)
						r.Post("/reject", memberHandler.Reject)
						r.Post("/suspend", memberHandler.Suspend)
						r.Post("/reactivate", memberHandler.Reactivate)
						r.Patch("/status", memberHandler.UpdateStatus)
						r.Patch("/role", memberHandler.ChangeRole)
					})
				})
			})
		})
	})

	return router
}

// RunMaintenance sweeps idle rate limiter keys until ctx is done
func (rt *Router) RunMaintenance(ctx context.Context, interval time.Duration) {
	if rt.ipLimiter == nil {
		return
	}
	ticker := rt.clock.Ticker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := rt.ipLimiter.Sweep() + rt.userLimiter.Sweep()
			if removed > 0 {
				rt.logger.Debug("Swept idle rate limit keys", zap.Int("removed", removed))
			}
		}
	}
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}
