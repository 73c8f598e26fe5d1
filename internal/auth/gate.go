package auth

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/catalog-management/internal"
	"github.com/frahmantamala/catalog-management/internal/transport"
	"github.com/frahmantamala/catalog-management/pkg/logger"
)

type TokenValidator interface {
	ValidateAccessToken(tokenString string) (*Principal, error)
}

// Gate authenticates the bearer token of every request and applies the policy before
// any handler runs.
type Gate struct {
	*transport.BaseHandler
	validator TokenValidator
	policy    *Policy
	relaxed   bool
	metrics   Metrics
}

type GateOption func(*Gate)

// WithRelaxedSecurity lets every request through. A valid token still yields a
// principal. Only allowed with the test profile.
func WithRelaxedSecurity(relaxed bool) GateOption {
	return func(g *Gate) { g.relaxed = relaxed }
}

func WithGateMetrics(m Metrics) GateOption {
	return func(g *Gate) { g.metrics = m }
}

func NewGate(validator TokenValidator, policy *Policy, lg *slog.Logger, opts ...GateOption) *Gate {
	g := &Gate{
		BaseHandler: transport.NewBaseHandler(lg),
		validator:   validator,
		policy:      policy,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var principal *Principal
		if token := transport.BearerToken(r); token != "" {
			p, err := g.validator.ValidateAccessToken(token)
			if err != nil {
				if appErr, ok := internal.IsAppError(err); ok {
					g.reject(string(appErr.Code))
				}
				if g.relaxed {
					g.Logger.Warn("gate: ignoring invalid token in relaxed mode", "path", r.URL.Path, "error", err)
					next.ServeHTTP(w, r)
					return
				}
				g.Logger.Warn("gate: token rejected", "method", r.Method, "path", r.URL.Path, "error", err)
				g.WriteAppError(w, err)
				return
			}
			principal = p
			ctx = ContextWithPrincipal(ctx, principal)
			ctx = internal.ContextWithActor(ctx, principal.Subject)
			ctx = logger.With(ctx, "subject", principal.Subject)
		}

		decision := g.policy.Authorize(r.Method, r.URL.Path, principal)
		if g.relaxed {
			decision = Allow("relaxed")
		}
		g.decided(decision)

		if !decision.Allowed {
			g.Logger.Info("gate: access denied",
				"method", r.Method,
				"path", r.URL.Path,
				"rule", decision.Rule,
				"reason", decision.Reason,
			)
			switch decision.Reason {
			case DenyUnauthenticated:
				g.WriteAppError(w, internal.ErrUnauthenticated)
			default:
				g.WriteAppError(w, internal.ErrForbidden)
			}
			return
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (g *Gate) reject(reason string) {
	if g.metrics != nil {
		g.metrics.TokenRejected(reason)
	}
}

func (g *Gate) decided(d Decision) {
	if g.metrics == nil {
		return
	}
	outcome := "allow"
	if !d.Allowed {
		outcome = string(d.Reason)
	}
	g.metrics.AccessDecision(outcome)
}
