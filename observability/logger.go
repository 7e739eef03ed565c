package observability

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Field is a structured log field.
type Field = zap.Field

// reserved keys always win over caller-supplied fields.
var reservedKeys = map[string]struct{}{
	"ts":               {},
	"level":            {},
	"message":          {},
	"caller":           {},
	"request_id":       {},
	"user_id":          {},
	"company_id":       {},
	"endpoint":         {},
	"timestamp":        {},
	"metadata":         {},
	"operation_buffer": {},
}

// LoggerConfig selects the emitter's level, rendering mode and environment tag.
type LoggerConfig struct {
	Level       string // debug, info, warn, error
	Format      string // "json" (machine-readable) or "text" (human-readable)
	Environment string
}

// Logger renders log events with the ambient RequestContext merged in, and
// attaches the operation-buffer snapshot on error-severity events only.
// It is safe for concurrent use.
type Logger struct {
	zl    *zap.Logger
	human bool
}

// NewLogger builds the structured log emitter. JSON mode is for production
// (one object per line, request context merged top level, process metadata);
// text mode is a colorized development console line.
func NewLogger(cfg LoggerConfig) (*Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	human := cfg.Format == "text"

	encCfg := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		MessageKey:     "message",
		CallerKey:      "caller",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var enc zapcore.Encoder
	if human {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.LowercaseLevelEncoder
		enc = zapcore.NewJSONEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.Lock(os.Stdout), level)
	zl := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2))

	if !human {
		hostname, _ := os.Hostname()
		zl = zl.With(zap.Any("metadata", map[string]any{
			"pid":         os.Getpid(),
			"hostname":    hostname,
			"environment": cfg.Environment,
		}))
	}

	return &Logger{zl: zl, human: human}, nil
}

// NewLoggerWithZap wraps an existing zap logger; used by tests to observe
// emitted entries.
func NewLoggerWithZap(zl *zap.Logger, human bool) *Logger {
	return &Logger{zl: zl.WithOptions(zap.AddCallerSkip(2)), human: human}
}

// NewNopLogger returns an emitter that discards everything.
func NewNopLogger() *Logger {
	return &Logger{zl: zap.NewNop()}
}

// Debug emits a debug-level event with the ambient request context.
func (l *Logger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.emit(ctx, zapcore.DebugLevel, msg, fields)
}

// Info emits an info-level event with the ambient request context.
func (l *Logger) Info(ctx context.Context, msg string, fields ...Field) {
	l.emit(ctx, zapcore.InfoLevel, msg, fields)
}

// Warn emits a warn-level event with the ambient request context.
func (l *Logger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.emit(ctx, zapcore.WarnLevel, msg, fields)
}

// Error emits an error-level event. This is the only severity that carries a
// snapshot of the ambient operation buffer, taken via Peek so logging never
// drains the buffer as a side effect.
func (l *Logger) Error(ctx context.Context, msg string, fields ...Field) {
	l.emit(ctx, zapcore.ErrorLevel, msg, fields)
}

// Zap exposes the underlying zap logger for infrastructure that logs outside
// any request (connection pools, schema init). The caller-skip added for the
// wrapper methods is undone so attribution stays correct.
func (l *Logger) Zap() *zap.Logger {
	return l.zl.WithOptions(zap.AddCallerSkip(-2))
}

// Sync flushes any buffered entries.
func (l *Logger) Sync() error {
	return l.zl.Sync()
}

func (l *Logger) emit(ctx context.Context, level zapcore.Level, msg string, fields []Field) {
	rc := RequestContextFrom(ctx)

	all := make([]Field, 0, len(fields)+8)
	if !rc.IsZero() {
		all = append(all, zap.String("request_id", rc.RequestID))
		if rc.UserID != "" {
			all = append(all, zap.String("user_id", rc.UserID))
		}
		if rc.CompanyID != "" {
			all = append(all, zap.String("company_id", rc.CompanyID))
		}
		all = append(all,
			zap.String("endpoint", rc.Endpoint),
			zap.Time("timestamp", rc.Timestamp),
		)
	}

	if level >= zapcore.ErrorLevel {
		if buf := BufferFrom(ctx); buf != nil {
			if snapshot := buf.Peek(); len(snapshot) > 0 {
				all = append(all, zap.Any("operation_buffer", snapshot))
			}
		}
	}

	for _, f := range fields {
		if _, clash := reservedKeys[f.Key]; clash {
			continue
		}
		all = append(all, f)
	}

	if l.human {
		msg = fmt.Sprintf("[%s] %s", shortRequestID(rc.RequestID), msg)
	}

	if ce := l.zl.Check(level, msg); ce != nil {
		ce.Write(all...)
	}
}

// shortRequestID returns the first 8 characters of the request id, or a
// dashed placeholder when no context is installed.
func shortRequestID(id string) string {
	if id == "" {
		return "--------"
	}
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
