package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/learnloop/backend/observability"
	"github.com/learnloop/backend/utils"
	"go.uber.org/zap"
)

// TokenValidator supplies the authenticated principal for a bearer token.
// The full authentication chain lives behind this interface.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*Claims, error)
}

// AuthMiddleware provides authentication middleware functionality
type AuthMiddleware struct {
	validator TokenValidator
	logger    *observability.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(validator TokenValidator, logger *observability.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		validator: validator,
		logger:    logger,
	}
}

// RequireAuth is a middleware that requires a valid JWT token
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		token := extractToken(r)
		if token == "" {
			m.logger.Warn(ctx, "missing token")
			_ = utils.WriteFailure(w, http.StatusUnauthorized,
				"Missing or invalid authorization", observability.RequestIDFrom(ctx))
			return
		}

		claims, err := m.validator.ValidateToken(ctx, token)
		if err != nil {
			m.logger.Warn(ctx, "token validation failed", zap.Error(err))
			_ = utils.WriteFailure(w, http.StatusUnauthorized,
				"Invalid or expired token", observability.RequestIDFrom(ctx))
			return
		}

		ctx = WithClaims(ctx, claims)

		// The ambient request context is immutable; adding the principal
		// means replacing the whole value.
		rc := observability.RequestContextFrom(ctx)
		if !rc.IsZero() {
			rc.UserID = claims.UserID
			rc.CompanyID = claims.CompanyID
			ctx = observability.WithRequestContext(ctx, rc)
		}
		notePrincipal(ctx, claims.UserID, claims.CompanyID)

		m.logger.Debug(ctx, "authentication successful",
			zap.String("sub", claims.Sub),
			zap.String("email", claims.Email))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ExtractTenant parses the principal's company and user ids into typed
// context values. Must run after RequireAuth.
func (m *AuthMiddleware) ExtractTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		claims := GetClaimsFromContext(ctx)
		if claims == nil {
			m.logger.Error(ctx, "claims not found in context")
			_ = utils.WriteFailure(w, http.StatusUnauthorized,
				"Authentication required", observability.RequestIDFrom(ctx))
			return
		}

		companyID, err := uuid.Parse(claims.CompanyID)
		if err != nil {
			m.logger.Warn(ctx, "invalid company_id in claims",
				zap.String("company_id", claims.CompanyID),
				zap.Error(err))
			_ = utils.WriteFailure(w, http.StatusForbidden,
				"Invalid company ID", observability.RequestIDFrom(ctx))
			return
		}
		ctx = WithCompanyID(ctx, companyID)

		if claims.UserID != "" {
			userID, err := uuid.Parse(claims.UserID)
			if err != nil {
				m.logger.Warn(ctx, "invalid user_id in claims",
					zap.String("user_id", claims.UserID),
					zap.Error(err))
				_ = utils.WriteFailure(w, http.StatusForbidden,
					"Invalid user ID", observability.RequestIDFrom(ctx))
				return
			}
			ctx = WithUserID(ctx, userID)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractToken pulls the bearer token from the Authorization header.
func extractToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
