package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/jobboard-api/internal/application/job"
	"github.com/jobboard-api/internal/application/newsletter"
	"github.com/jobboard-api/internal/application/notification"
	"github.com/jobboard-api/internal/application/recovery"
	"github.com/jobboard-api/internal/application/session"
	"github.com/jobboard-api/internal/application/user"
	"github.com/jobboard-api/internal/config"
	"github.com/jobboard-api/internal/domain"
	"github.com/jobboard-api/internal/pkg/logger"
	"github.com/jobboard-api/internal/transport/http/handler"
	appmiddleware "github.com/jobboard-api/internal/transport/http/middleware"
)

// NewRouter builds the application router. ctx bounds background work such as
// rate limiter cleanup.
func NewRouter(ctx context.Context, cfg *config.Config, deps *Deps) http.Handler {
	log := logger.OrNop(deps.Log)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	if cfg.TrustProxy {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(appmiddleware.RequestLogger(log, deps.Metrics))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	sessionSvc := session.NewService(session.ServiceDeps{
		UserRepo:      deps.UserRepo,
		Tokens:        deps.Tokens,
		Google:        deps.Google,
		Metrics:       deps.Metrics,
		Log:           log,
		RejectBlocked: cfg.AuthRejectBlocked,
	})
	userSvc := user.NewService(user.ServiceDeps{
		UserRepo:  deps.UserRepo,
		Resumes:   deps.Resumes,
		ResumeKey: deps.ResumeKey,
		Log:       log,
	})
	recoverySvc := recovery.NewService(recovery.ServiceDeps{
		UserRepo:        deps.UserRepo,
		Tickets:         deps.Tickets,
		Mailer:          deps.Mailer,
		Metrics:         deps.Metrics,
		Log:             log,
		CodeTTL:         cfg.OTPTTL,
		GrantTTL:        cfg.ResetGrantTTL,
		RequireVerified: cfg.RecoveryRequireVerified,
	})
	jobSvc := job.NewService(job.ServiceDeps{JobRepo: deps.JobRepo, Metrics: deps.Metrics})
	newsletterSvc := newsletter.NewService(newsletter.ServiceDeps{NewsletterRepo: deps.NewsletterRepo, Metrics: deps.Metrics})
	notifSvc := notification.NewService(notification.ServiceDeps{
		UserRepo: deps.UserRepo,
		Mailer:   deps.Mailer,
		SMS:      deps.SMS,
		Log:      log,
	})

	authn := appmiddleware.NewAuthenticator(sessionSvc,
		appmiddleware.CredentialChain{appmiddleware.FromCookie(cfg.AuthCookieName), appmiddleware.FromBearer},
		deps.Metrics, log)
	adminOnly := appmiddleware.RequireRole(domain.AdminOnly, deps.Metrics)
	adminOrRecruiter := appmiddleware.RequireRole(domain.AdminOrRecruiter, deps.Metrics)

	// 5 requests/second, burst of 10, on credential endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(ctx, rate.Limit(5), 10)

	healthH := handler.NewHealthHandler(deps.Checks)
	sessionH := handler.NewSessionHandler(sessionSvc, handler.CookieConfig{
		Name:   cfg.AuthCookieName,
		MaxAge: cfg.JWTExpiry,
		Secure: cfg.AuthCookieSecure,
	}, log)
	userH := handler.NewUserHandler(userSvc, log)
	recoveryH := handler.NewRecoveryHandler(recoverySvc, log)
	jobH := handler.NewJobHandler(jobSvc, log)
	newsletterH := handler.NewNewsletterHandler(newsletterSvc, log)
	notifH := handler.NewNotificationHandler(notifSvc, log)

	r.Handle("/metrics", deps.Metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes ────────────────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Probe)

		r.Group(func(r chi.Router) {
			r.Use(sensitiveRL.Limit)
			r.Post("/auth/register", userH.Register)
			r.Post("/auth/login", sessionH.Login)
			r.Post("/auth/google", sessionH.GoogleLogin)
			r.Post("/auth/send-otp", recoveryH.SendCode)
			r.Post("/auth/verify-otp", recoveryH.VerifyCode)
			r.Post("/auth/reset-password", recoveryH.ResetPassword)
		})
		r.Post("/auth/logout", sessionH.Logout)

		r.Get("/jobs", jobH.List)
		r.Get("/jobs/{id}", jobH.Get)

		r.Group(func(r chi.Router) {
			r.Use(authn.Optional)
			r.Get("/newsletters", newsletterH.List)
			r.Get("/newsletters/public", newsletterH.ListPublic)
			r.Get("/newsletters/author/{authorID}", newsletterH.ListByAuthor)
		})

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authn.Required)

			r.Get("/auth/check", sessionH.Check)
			r.Get("/users/profile", userH.Profile)
			r.Put("/users/profile", userH.UpdateProfile)

			// Admin or recruiter
			r.Group(func(r chi.Router) {
				r.Use(adminOrRecruiter)

				r.Post("/jobs", jobH.Create)
				r.Get("/jobs/mine", jobH.ListMine)
				r.Put("/jobs/{id}", jobH.Update)
				r.Delete("/jobs/{id}", jobH.Delete)

				r.Post("/newsletters", newsletterH.Create)
				r.Put("/newsletters/{id}", newsletterH.Update)
				r.Delete("/newsletters/{id}", newsletterH.Delete)
				r.Patch("/newsletters/{id}/privacy", newsletterH.TogglePrivacy)
			})

			// Admin only
			r.Route("/admin", func(r chi.Router) {
				r.Use(adminOnly)

				r.Get("/users", userH.List)
				r.Get("/users/{id}", userH.Get)
				r.Patch("/users/{id}/toggle-status", userH.ToggleStatus)
				r.Put("/users/{id}/status", userH.SetStatus)
				r.Patch("/users/{id}/visibility", userH.ToggleVisibility)
				r.Get("/jobs", jobH.List)
				r.Get("/newsletters", newsletterH.ListAll)
				r.Put("/newsletters/{id}/status", newsletterH.SetStatus)
				r.Post("/messages", notifH.Send)
			})
		})
	})

	return r
}
