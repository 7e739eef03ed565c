package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/learnloop/backend/middleware"
	"github.com/learnloop/backend/observability"
	"github.com/learnloop/backend/services"
	"github.com/learnloop/backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newBoundaryUnderTest(t *testing.T) (*Boundary, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	logger := observability.NewLoggerWithZap(zap.New(core), false)
	return NewBoundary(logger, http.StatusInternalServerError), logs
}

// instrumentedRequest returns a request carrying a request context and an
// operation log holding n records, mimicking lifecycle-installed state.
func instrumentedRequest(t *testing.T, n int) (*http.Request, *observability.OperationLog) {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, "/api/v1/companies/123", nil)
	buf := observability.NewOperationLog(10)
	for i := 0; i < n; i++ {
		buf.Append(observability.OperationRecord{Type: observability.OpDBQuery})
	}
	ctx := observability.WithRequestContext(r.Context(), observability.RequestContext{
		RequestID: "req-boundary",
		Endpoint:  "GET /api/v1/companies/123",
	})
	ctx = observability.WithBuffer(ctx, buf)
	return r.WithContext(ctx), buf
}

func decodeFailure(t *testing.T, w *httptest.ResponseRecorder) utils.FailureResponse {
	t.Helper()
	var body utils.FailureResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestBoundaryExpectedClientFailure(t *testing.T) {
	b, logs := newBoundaryUnderTest(t)
	r, buf := instrumentedRequest(t, 3)
	w := httptest.NewRecorder()

	b.Handle(w, r, services.ErrCompanyNotFound)

	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decodeFailure(t, w)
	assert.Equal(t, "company not found", body.Detail)
	require.NotNil(t, body.RequestID)
	assert.Equal(t, "req-boundary", *body.RequestID)

	// A client-attributable failure is noted below error severity, keeps the
	// buffer intact, and only reports its size.
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Equal(t, int64(3), entry.ContextMap()["buffer_size"])
	_, hasOps := entry.ContextMap()["operations"]
	assert.False(t, hasOps)
	assert.Equal(t, 3, buf.Size())
}

func TestBoundaryExpectedServerFault(t *testing.T) {
	b, logs := newBoundaryUnderTest(t)
	r, buf := instrumentedRequest(t, 2)
	w := httptest.NewRecorder()

	b.Handle(w, r, services.ErrDatabaseError)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeFailure(t, w)
	assert.Equal(t, services.ErrDatabaseError.Message, body.Detail)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	ops, ok := entry.ContextMap()["operations"].([]observability.OperationRecord)
	require.True(t, ok)
	assert.Len(t, ops, 2)
	assert.Equal(t, 0, buf.Size())
}

func TestBoundaryUnknownFailure(t *testing.T) {
	b, logs := newBoundaryUnderTest(t)
	r, buf := instrumentedRequest(t, 2)
	w := httptest.NewRecorder()

	b.Handle(w, r, errors.New("slice index out of range"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeFailure(t, w)
	// Unknown faults never leak their message to the client.
	assert.Equal(t, utils.GenericFailureDetail, body.Detail)
	require.NotNil(t, body.RequestID)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	fields := entry.ContextMap()
	assert.Equal(t, "*errors.errorString", fields["error_type"])
	assert.Contains(t, fields, "stack")
	ops, ok := fields["operations"].([]observability.OperationRecord)
	require.True(t, ok)
	assert.Len(t, ops, 2)
	assert.Equal(t, 0, buf.Size())
}

func TestBoundaryWithoutRequestContext(t *testing.T) {
	b, _ := newBoundaryUnderTest(t)
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	b.Handle(w, r, services.ErrUnauthorized)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	body := decodeFailure(t, w)
	assert.Nil(t, body.RequestID)
}

func TestBoundaryWrap(t *testing.T) {
	b, logs := newBoundaryUnderTest(t)

	t.Run("nil error passes the response through", func(t *testing.T) {
		handler := b.Wrap(func(w http.ResponseWriter, r *http.Request) error {
			return utils.WriteOK(w, map[string]string{"ok": "yes"})
		})

		w := httptest.NewRecorder()
		handler(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 0, logs.Len())
	})

	t.Run("returned error reaches the boundary", func(t *testing.T) {
		handler := b.Wrap(func(w http.ResponseWriter, r *http.Request) error {
			return services.ErrNotebookNotFound
		})

		w := httptest.NewRecorder()
		handler(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

// TestBoundaryInsideLifecycle exercises the full failure path: the boundary
// drains the buffer into its entry, so the lifecycle's later fault entry
// carries no operations.
func TestBoundaryInsideLifecycle(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := observability.NewLoggerWithZap(zap.New(core), false)
	b := NewBoundary(logger, http.StatusInternalServerError)
	lc := middleware.NewLifecycle(logger, 10, http.StatusInternalServerError)

	handler := lc.Wrap(b.Wrap(func(w http.ResponseWriter, r *http.Request) error {
		observability.RecordServiceCall(r.Context(), "svc", "op", nil)
		return services.ErrDatabaseError
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/companies", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var withOps int
	for _, entry := range logs.All() {
		if entry.Level != zapcore.ErrorLevel {
			continue
		}
		if ops, ok := entry.ContextMap()["operations"].([]observability.OperationRecord); ok && len(ops) > 0 {
			withOps++
		}
	}
	// Exactly one failure entry carries the drained operations.
	assert.Equal(t, 1, withOps)
}

func TestHandleValidationError(t *testing.T) {
	t.Run("maps field failures to a validation domain error", func(t *testing.T) {
		type payload struct {
			Email string `json:"email" validate:"required,email"`
		}
		verr := utils.ValidateStruct(&payload{Email: "nope"})
		require.Error(t, verr)

		err := HandleValidationError(verr)
		domainErr, ok := services.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, services.ErrorTypeValidation, domainErr.Type)
		assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus())
		assert.NotEmpty(t, domainErr.Details)
	})
}
