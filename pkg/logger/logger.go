// Package logger is the storeadmin structured logger, built on log/slog.
//
// Handlers and services log through WithCtx so every line carries the
// request id set by the Logger middleware:
//
//	log := logger.WithCtx(r.Context())
//	log.Info("offer created", "offer_id", id)
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/afandal/storeadmin/config"
)

var L *slog.Logger

var (
	sinkMu sync.Mutex
	sink   *MongoHandler
)

func init() {
	L = slog.New(baseHandler(os.Stdout))
	slog.SetDefault(L)
}

func baseHandler(w io.Writer) slog.Handler {
	switch config.AppEnv() {
	case "production", "prod":
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	default:
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
}

// SetOutput sends log lines to w. The CLI logs to stderr so stdout
// carries only command output.
func SetOutput(w io.Writer) {
	L = slog.New(baseHandler(w))
	slog.SetDefault(L)
}

// EnableMongoSink fans log records out to MongoDB in addition to stdout.
// A no-op when MONGO_LOG_URI is unset.
func EnableMongoSink() error {
	uri := config.MongoLogURI()
	if uri == "" {
		return nil
	}

	h, err := NewMongoHandler(uri, config.Get("MONGO_LOG_DB", "storeadmin"), config.Get("MONGO_LOG_COLLECTION", "logs"))
	if err != nil {
		return err
	}

	sinkMu.Lock()
	sink = h
	sinkMu.Unlock()

	L = slog.New(NewMultiHandler(baseHandler(os.Stdout), h))
	slog.SetDefault(L)
	return nil
}

// Close flushes the MongoDB sink, if one is enabled.
func Close() {
	sinkMu.Lock()
	defer sinkMu.Unlock()
	if sink != nil {
		sink.Close()
		sink = nil
	}
}

type ctxKey struct{}

// WithCtx returns the request-scoped logger stored by InjectLogger, or L.
func WithCtx(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return L
	}
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// InjectLogger stores a request-scoped logger in ctx.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

func Debug(msg string, args ...any) { L.Debug(msg, args...) }
func Info(msg string, args ...any)  { L.Info(msg, args...) }
func Warn(msg string, args ...any)  { L.Warn(msg, args...) }
func Error(msg string, args ...any) { L.Error(msg, args...) }
