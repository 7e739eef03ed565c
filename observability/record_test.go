package observability

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bufferedCtx(t *testing.T, capacity int) (context.Context, *OperationLog) {
	t.Helper()
	buf := NewOperationLog(capacity)
	return WithBuffer(context.Background(), buf), buf
}

func TestRecordDBQuery(t *testing.T) {
	t.Run("records query with parameters", func(t *testing.T) {
		ctx, buf := bufferedCtx(t, 10)

		RecordDBQuery(ctx, "SELECT * FROM users WHERE id = $1", map[string]any{"id": "abc"}, 12.5)

		records := buf.Peek()
		require.Len(t, records, 1)
		assert.Equal(t, OpDBQuery, records[0].Type)
		assert.Equal(t, "SELECT * FROM users WHERE id = $1", records[0].Details["query"])
		assert.Equal(t, "abc", records[0].Details["param_id"])
		require.NotNil(t, records[0].DurationMs)
		assert.Equal(t, 12.5, *records[0].DurationMs)
	})

	t.Run("bounds query text to 500 characters", func(t *testing.T) {
		ctx, buf := bufferedCtx(t, 10)

		RecordDBQuery(ctx, "SELECT "+strings.Repeat("x", 1000), nil, 1.0)

		assert.Len(t, buf.Peek()[0].Details["query"], 500)
	})

	t.Run("redacts sensitive parameters", func(t *testing.T) {
		ctx, buf := bufferedCtx(t, 10)

		RecordDBQuery(ctx, "INSERT INTO users ...", map[string]any{
			"email":    "u@example.com",
			"password": "hunter2",
		}, 1.0)

		details := buf.Peek()[0].Details
		assert.Equal(t, "u@example.com", details["param_email"])
		assert.Equal(t, RedactedPlaceholder, details["param_password"])
	})

	t.Run("stringifies non-primitive parameters", func(t *testing.T) {
		ctx, buf := bufferedCtx(t, 10)

		RecordDBQuery(ctx, "UPDATE ...", map[string]any{"tags": []string{"a", "b"}}, 1.0)

		v, ok := buf.Peek()[0].Details["param_tags"].(string)
		require.True(t, ok)
		assert.LessOrEqual(t, len(v), 100)
	})

	t.Run("no-op without a buffer", func(t *testing.T) {
		assert.NotPanics(t, func() {
			RecordDBQuery(context.Background(), "SELECT 1", nil, 1.0)
		})
	})
}

func TestRecordServiceCall(t *testing.T) {
	ctx, buf := bufferedCtx(t, 10)

	RecordServiceCall(ctx, "notebook", "create", map[string]any{
		"title":     "Intro",
		"api_token": "secret-value",
	})

	records := buf.Peek()
	require.Len(t, records, 1)
	assert.Equal(t, OpServiceCall, records[0].Type)
	assert.Equal(t, "notebook", records[0].Details["service"])
	assert.Equal(t, "create", records[0].Details["operation"])
	assert.Equal(t, "Intro", records[0].Details["title"])
	assert.Equal(t, RedactedPlaceholder, records[0].Details["api_token"])
	assert.Nil(t, records[0].DurationMs)
}

func TestRecordServiceCallNilDetails(t *testing.T) {
	ctx, buf := bufferedCtx(t, 10)

	RecordServiceCall(ctx, "company", "list", nil)

	records := buf.Peek()
	require.Len(t, records, 1)
	assert.Equal(t, "company", records[0].Details["service"])
}

func TestRecordGraphStep(t *testing.T) {
	t.Run("flattens inputs with prefix", func(t *testing.T) {
		ctx, buf := bufferedCtx(t, 10)

		RecordGraphStep(ctx, "summarize", map[string]any{
			"prompt":     strings.Repeat("p", 1000),
			"max_tokens": 256,
			"api_key":    "sk-xyz",
		}, nil)

		details := buf.Peek()[0].Details
		assert.Equal(t, "summarize", details["name"])
		assert.Len(t, details["input_prompt"], 200)
		assert.Equal(t, 256, details["input_max_tokens"])
		assert.Equal(t, RedactedPlaceholder, details["input_api_key"])
	})

	t.Run("carries duration when given", func(t *testing.T) {
		ctx, buf := bufferedCtx(t, 10)
		dur := 33.0

		RecordGraphStep(ctx, "retrieve", nil, &dur)

		rec := buf.Peek()[0]
		require.NotNil(t, rec.DurationMs)
		assert.Equal(t, 33.0, *rec.DurationMs)
	})
}

func TestRecordExternalAPI(t *testing.T) {
	ctx, buf := bufferedCtx(t, 10)

	RecordExternalAPI(ctx, "openai", "chat.completions", map[string]any{
		"model":         "gpt-4o",
		"authorization": "Bearer xyz",
	}, 420.0)

	records := buf.Peek()
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, OpExternalAPI, rec.Type)
	assert.Equal(t, "openai", rec.Details["provider"])
	assert.Equal(t, "chat.completions", rec.Details["operation"])
	assert.Equal(t, "gpt-4o", rec.Details["model"])
	require.NotNil(t, rec.DurationMs)
	assert.Equal(t, 420.0, *rec.DurationMs)
}

func TestLogOperation(t *testing.T) {
	ctx, buf := bufferedCtx(t, 10)

	LogOperation(ctx, "cache_lookup", map[string]any{"hit": true})

	records := buf.Peek()
	require.Len(t, records, 1)
	assert.Equal(t, "cache_lookup", records[0].Type)
	assert.Equal(t, true, records[0].Details["hit"])
}

func TestRecordersEvictAtCapacity(t *testing.T) {
	ctx, buf := bufferedCtx(t, 3)

	for i := 0; i < 10; i++ {
		RecordServiceCall(ctx, "svc", "op", map[string]any{"n": i})
	}

	records := buf.Peek()
	require.Len(t, records, 3)
	assert.Equal(t, 7, records[0].Details["n"])
	assert.Equal(t, 9, records[2].Details["n"])
}
