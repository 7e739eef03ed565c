package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/learnloop/backend/observability"
	"github.com/learnloop/backend/utils"
	"go.uber.org/zap"
)

// Lifecycle wraps every inbound request: it mints the request id, installs a
// fresh RequestContext and operation log, times the request, and emits the
// start and completion events. Installation happens before the handler chain
// runs and teardown is deferred, so context state can never leak between
// requests sharing a connection or outlive a cancelled one.
type Lifecycle struct {
	logger         *observability.Logger
	bufferCapacity int
	faultThreshold int
}

// NewLifecycle creates the lifecycle middleware. faultThreshold is the lowest
// response status treated as a server-side failure.
func NewLifecycle(logger *observability.Logger, bufferCapacity, faultThreshold int) *Lifecycle {
	if faultThreshold <= 0 {
		faultThreshold = http.StatusInternalServerError
	}
	return &Lifecycle{
		logger:         logger,
		bufferCapacity: bufferCapacity,
		faultThreshold: faultThreshold,
	}
}

// principal carries the authenticated identity from the auth middleware back
// out to the lifecycle's completion entry. Context values only flow inward,
// so the lifecycle installs a mutable holder the inner chain writes to.
type principal struct {
	mu        sync.Mutex
	userID    string
	companyID string
}

type principalKey struct{}

func (p *principal) snapshot() (userID, companyID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.userID, p.companyID
}

// notePrincipal records the authenticated identity for the lifecycle's
// completion entry. A no-op when no lifecycle wraps the request.
func notePrincipal(ctx context.Context, userID, companyID string) {
	if p, ok := ctx.Value(principalKey{}).(*principal); ok {
		p.mu.Lock()
		p.userID = userID
		p.companyID = companyID
		p.mu.Unlock()
	}
}

// Wrap returns the middleware handler.
func (l *Lifecycle) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()

		rc := observability.RequestContext{
			RequestID: requestID,
			Endpoint:  r.Method + " " + r.URL.Path,
			Timestamp: start.UTC(),
		}
		// Principal fields are filled in when upstream auth already ran;
		// their absence is valid for public routes.
		if claims := GetClaimsFromContext(r.Context()); claims != nil {
			rc.UserID = claims.UserID
			rc.CompanyID = claims.CompanyID
		}

		buf := observability.NewOperationLog(l.bufferCapacity)
		ctx := observability.WithRequestContext(r.Context(), rc)
		ctx = observability.WithBuffer(ctx, buf)

		// Auth runs deeper in the chain on a derived context the outer
		// closure never sees; the holder routes the identity back out so
		// completion events carry it.
		pr := &principal{}
		ctx = context.WithValue(ctx, principalKey{}, pr)

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		ww.Header().Set("X-Request-ID", requestID)

		defer func() {
			durationMs := float64(time.Since(start).Microseconds()) / 1000.0
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			logCtx := ctx
			if userID, companyID := pr.snapshot(); userID != "" || companyID != "" {
				rc.UserID = userID
				rc.CompanyID = companyID
				logCtx = observability.WithRequestContext(ctx, rc)
			}

			if rec := recover(); rec != nil {
				// An unexpected fault escaped the entire handler chain,
				// including the error boundary. Log with full diagnostics
				// before any response work, then answer generically.
				l.logger.Error(logCtx, "request failed",
					zap.Float64("duration_ms", durationMs),
					zap.String("panic", fmt.Sprint(rec)),
					zap.Stack("stacktrace"),
					zap.Any("operations", buf.Flush()),
				)
				if ww.BytesWritten() == 0 {
					_ = utils.WriteFailure(ww, http.StatusInternalServerError,
						utils.GenericFailureDetail, requestID)
				}
			} else if status >= l.faultThreshold {
				// The boundary already drained the buffer into its own
				// entry; flushing here is a no-op unless it did not run.
				l.logger.Error(logCtx, "request failed",
					zap.Int("status", status),
					zap.Float64("duration_ms", durationMs),
					zap.Any("operations", buf.Flush()),
				)
			} else {
				l.logger.Info(logCtx, "request completed",
					zap.Int("status", status),
					zap.Float64("duration_ms", durationMs),
				)
			}

			// Teardown: operation history of finished requests is never
			// retained, whichever exit path ran.
			buf.Clear()
		}()

		l.logger.Info(ctx, "request started")
		next.ServeHTTP(ww, r.WithContext(ctx))
	})
}
