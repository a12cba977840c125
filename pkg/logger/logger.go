// Package logger provides structured logging with context support.
package logger

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	appctx "colisflow/internal/core/context"
)

// Logger wraps zap.SugaredLogger with context-aware logging.
type Logger struct {
	*zap.SugaredLogger
}

type loggerKey struct{}

// Config holds logger configuration.
type Config struct {
	Level       string // debug, info, warn, error
	Development bool   // console encoder with colors
	Service     string // binary name, attached to every line when set
	OutputPaths []string
}

// New creates a new Logger from configuration.
// An unparsable level falls back to info.
func New(cfg Config) (*Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	var zcfg zap.Config
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zcfg = zap.NewProductionConfig()
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	zcfg.Level = zap.NewAtomicLevelAt(level)
	if len(cfg.OutputPaths) > 0 {
		zcfg.OutputPaths = cfg.OutputPaths
	}

	zl, err := zcfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	if cfg.Service != "" {
		zl = zl.With(zap.String("service", cfg.Service))
	}
	return &Logger{zl.Sugar()}, nil
}

// FromZap wraps an existing zap logger, e.g. an observer core in tests.
func FromZap(zl *zap.Logger) *Logger {
	return &Logger{zl.Sugar()}
}

var (
	defaultOnce   sync.Once
	defaultLogger *Logger
)

// Default returns the process-wide logger, a production logger on stdout
// unless SetDefault installed another one.
func Default() *Logger {
	defaultOnce.Do(func() {
		zcfg := zap.NewProductionConfig()
		zcfg.OutputPaths = []string{"stdout"}
		zl, _ := zcfg.Build(zap.AddCallerSkip(1))
		defaultLogger = &Logger{zl.Sugar()}
	})
	return defaultLogger
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zap.NewNop().Sugar()}
}

// SetDefault replaces the logger returned by Default and FromContext.
func SetDefault(l *Logger) {
	defaultOnce.Do(func() {})
	defaultLogger = l
}

// WithContext adds request and operator fields found in ctx.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	sugar := l.SugaredLogger

	if trace := appctx.GetTrace(ctx); trace != nil {
		sugar = sugar.With(
			"trace_id", trace.TraceID,
			"request_id", trace.RequestID,
		)
	}

	if user := appctx.GetUser(ctx); user != nil {
		sugar = sugar.With(
			"user_id", user.UserID,
			"user_code", user.UserCode,
		)
	}

	return &Logger{sugar}
}

// With adds key-value pairs to logger.
func (l *Logger) With(keysAndValues ...any) *Logger {
	return &Logger{l.SugaredLogger.With(keysAndValues...)}
}

// WithComponent adds component name to logger.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{l.SugaredLogger.With("component", name)}
}

// WithLogger stores a Logger in ctx.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the Logger stored in ctx, or the default one,
// enriched with the request fields of ctx.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(loggerKey{}).(*Logger); ok {
		return l.WithContext(ctx)
	}
	return Default().WithContext(ctx)
}

func Debug(ctx context.Context, msg string, keysAndValues ...any) {
	FromContext(ctx).Debugw(msg, keysAndValues...)
}

func Info(ctx context.Context, msg string, keysAndValues ...any) {
	FromContext(ctx).Infow(msg, keysAndValues...)
}

func Warn(ctx context.Context, msg string, keysAndValues ...any) {
	FromContext(ctx).Warnw(msg, keysAndValues...)
}

func Error(ctx context.Context, msg string, keysAndValues ...any) {
	FromContext(ctx).Errorw(msg, keysAndValues...)
}

// Fatal logs at fatal level; zap exits the process afterwards.
func Fatal(ctx context.Context, msg string, keysAndValues ...any) {
	FromContext(ctx).Fatalw(msg, keysAndValues...)
}
