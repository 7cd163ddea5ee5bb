package log

import (
	"context"
	"log/slog"
	"os"
	"sync"
)

// Attribute keys shared across training log output.
const (
	ComponentKey = "ml.component"
	OperationKey = "ml.operation"
	IterationKey = "boost.iteration"
	MetricKey    = "eval.metric"
	SamplesKey   = "data.samples"
	FeaturesKey  = "data.features"
	ClassesKey   = "data.classes"

	ErrAttrKey        = "error"
	StacktraceAttrKey = "stacktrace"
)

// ErrAttr wraps an error for structured logging.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}

// slogLogger adapts *slog.Logger to the Logger interface.
type slogLogger struct {
	l *slog.Logger
}

func (s *slogLogger) Debug(msg string, fields ...any) { s.l.Debug(msg, fields...) }
func (s *slogLogger) Info(msg string, fields ...any)  { s.l.Info(msg, fields...) }
func (s *slogLogger) Warn(msg string, fields ...any)  { s.l.Warn(msg, fields...) }
func (s *slogLogger) Error(msg string, fields ...any) { s.l.Error(msg, fields...) }

func (s *slogLogger) With(fields ...any) Logger {
	return &slogLogger{l: s.l.With(fields...)}
}

func (s *slogLogger) Enabled(ctx context.Context, level Level) bool {
	return s.l.Enabled(ctx, slog.Level(level))
}

// slogProvider is the default LoggerProvider, writing text records to stderr.
type slogProvider struct {
	mu       sync.RWMutex
	levelVar *slog.LevelVar
	logger   Logger
}

func newSlogProvider() *slogProvider {
	levelVar := new(slog.LevelVar)
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: levelVar})
	return &slogProvider{
		levelVar: levelVar,
		logger:   &slogLogger{l: slog.New(WrapByErrFmtHandler(handler))},
	}
}

func (p *slogProvider) GetLogger() Logger {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.logger
}

func (p *slogProvider) GetLoggerWithName(name string) Logger {
	return p.GetLogger().With(ComponentKey, name)
}

func (p *slogProvider) SetLevel(level Level) {
	p.levelVar.Set(slog.Level(level))
}

var defaultProvider LoggerProvider = newSlogProvider()

// GetLogger returns the default logger.
func GetLogger() Logger {
	return defaultProvider.GetLogger()
}

// GetLoggerWithName returns a logger tagged with a component name.
func GetLoggerWithName(name string) Logger {
	return defaultProvider.GetLoggerWithName(name)
}

// SetLevel sets the minimum level of the default provider.
func SetLevel(level Level) {
	defaultProvider.SetLevel(level)
}

// SetProvider replaces the default provider, e.g. with a test provider.
func SetProvider(p LoggerProvider) {
	if p != nil {
		defaultProvider = p
	}
}
