package middleware

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/jobboard-api/internal/domain"
	"github.com/jobboard-api/internal/infrastructure/metrics"
	"github.com/jobboard-api/internal/pkg/logger"
)

type contextKey string

const principalKey contextKey = "principal"

// Resolver turns a verified token into the live principal.
type Resolver interface {
	Resolve(ctx context.Context, token string) (*domain.User, error)
}

// Authenticator resolves the request principal from an ordered credential chain.
type Authenticator struct {
	chain    CredentialChain
	resolver Resolver
	metrics  *metrics.Metrics
	log      *zap.Logger
}

func NewAuthenticator(resolver Resolver, chain CredentialChain, m *metrics.Metrics, log *zap.Logger) *Authenticator {
	return &Authenticator{chain: chain, resolver: resolver, metrics: m, log: logger.OrNop(log)}
}

// Required rejects the request unless a principal resolves.
func (a *Authenticator) Required(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := a.chain.Extract(r)
		if !ok {
			a.metrics.Credential("missing")
			writeJSONError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if !Plausible(token) {
			a.metrics.Credential("malformed")
			writeJSONError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		a.resolve(w, r, next, token)
	})
}

// Optional lets anonymous requests through. A structurally invalid candidate
// counts as anonymous; a plausible one that fails to resolve is rejected.
func (a *Authenticator) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := a.chain.Extract(r)
		if !ok || !Plausible(token) {
			next.ServeHTTP(w, r)
			return
		}
		a.resolve(w, r, next, token)
	})
}

func (a *Authenticator) resolve(w http.ResponseWriter, r *http.Request, next http.Handler, token string) {
	u, err := a.resolver.Resolve(r.Context(), token)
	if err != nil {
		status, msg := authFailure(err)
		if status == http.StatusInternalServerError {
			logger.FromContext(r.Context(), a.log).Error("resolve principal", zap.Error(err))
		}
		writeJSONError(w, status, msg)
		return
	}
	next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), u)))
}

func authFailure(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "account blocked"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "invalid or expired token"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func ContextWithPrincipal(ctx context.Context, u *domain.User) context.Context {
	return context.WithValue(ctx, principalKey, u)
}

// PrincipalFromContext returns the principal resolved for this request, if any.
func PrincipalFromContext(ctx context.Context) (*domain.User, bool) {
	u, ok := ctx.Value(principalKey).(*domain.User)
	return u, ok && u != nil
}
