package utils

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/golang-cz/devslog"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"google.golang.org/grpc"
)

// InterceptorLogger returns a grpc.UnaryServerInterceptor that logs finished calls to l.
func InterceptorLogger(l *slog.Logger) grpc.UnaryServerInterceptor {
	opts := []logging.Option{
		logging.WithLogOnEvents(logging.FinishCall),
		logging.WithDisableLoggingFields(
			logging.ComponentFieldKey,
			logging.MethodTypeFieldKey,
			logging.SystemTag[0],
			logging.SystemTag[1],
			logging.ServiceFieldKey,
		),
	}
	return logging.UnaryServerInterceptor(slogAdapter(l), opts...)
}

// ClientInterceptorLogger is the client side counterpart of InterceptorLogger.
func ClientInterceptorLogger(l *slog.Logger) grpc.UnaryClientInterceptor {
	return logging.UnaryClientInterceptor(slogAdapter(l), logging.WithLogOnEvents(logging.FinishCall))
}

func slogAdapter(l *slog.Logger) logging.Logger {
	return logging.LoggerFunc(func(ctx context.Context, lvl logging.Level, msg string, fields ...any) {
		l.Log(ctx, slog.Level(lvl), msg, fields...)
	})
}

// ParseLevel maps debug, info, warn and error to a slog level. Anything else is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetupLogger builds a slog logger with the given level, format (text, json or dev) and
// file path. An empty path logs to stdout.
func SetupLogger(level, format, filePath string) (*slog.Logger, error) {
	var writer io.Writer = os.Stdout
	if filePath != "" {
		file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		writer = file
	}
	return NewLogger(writer, level, format), nil
}

// NewLogger is SetupLogger for an already opened writer.
func NewLogger(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	case "dev":
		handler = devslog.NewHandler(w, &devslog.Options{
			HandlerOptions:    opts,
			MaxSlicePrintSize: 5,
			SortKeys:          true,
			StringerFormatter: true,
		})
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// DiscardLogger drops everything. Useful as a default and in tests.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
