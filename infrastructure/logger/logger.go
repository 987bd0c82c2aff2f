package logger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	log "github.com/sirupsen/logrus"
)

type ctxKey struct{}

var logger = log.New()

func init() {
	env := os.Getenv("ENV")
	logger.Out = os.Stdout
	// LOG_TO_FILE=true writes to logs/<date><env>.log for stage/prod hosts without a collector.
	if os.Getenv("LOG_TO_FILE") == "true" {
		if f, err := openLogFile(env); err != nil {
			log.Warnf("Failed to open log file: %v, falling back to stdout", err)
		} else {
			logger.Out = f
		}
	}

	logger.Formatter = &log.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
	}
	level := log.DebugLevel
	if env == "prod" || env == "production" {
		level = log.InfoLevel
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		if parsed, err := log.ParseLevel(v); err == nil {
			level = parsed
		}
	}
	logger.SetLevel(level)
}

func openLogFile(env string) (*os.File, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	logsDir := filepath.Join(cwd, "logs")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return nil, err
	}
	filePath := filepath.Join(logsDir, fmt.Sprintf("%s%s.log", time.Now().Format("2006-01-02"), env))
	return os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
}

func GetLogger() *log.Entry {
	return entry(2, "")
}

// FromContext returns a logger tagged with the request id carried by ctx.
func FromContext(ctx context.Context) *log.Entry {
	requestID, _ := ctx.Value(ctxKey{}).(string)
	return entry(2, requestID)
}

// WithRequestID stores the request id for FromContext.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, requestID)
}

// Alert logs at fatal level without exiting. It marks states an operator must reconcile by hand.
func Alert(e *log.Entry, msg string) {
	e.WithField("alert", "ledger_reconciliation_required").Log(log.FatalLevel, msg)
}

func entry(skip int, requestID string) *log.Entry {
	function, file, line, _ := runtime.Caller(skip)
	fields := log.Fields{
		"file": file,
		"line": line,
	}
	if fn := runtime.FuncForPC(function); fn != nil {
		fields["function"] = fn.Name()
	}
	if requestID != "" {
		fields["requestId"] = requestID
	} else {
		fields["requestId"] = time.Now().UnixNano() / int64(time.Millisecond)
	}
	return logger.WithFields(fields)
}
