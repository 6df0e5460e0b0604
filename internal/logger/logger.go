package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	Logger *logrus.Logger // Main logger instance
	mu     sync.Mutex
)

// Options controls logger setup. An empty Dir logs to stderr only. Format is
// "text" (default) or "json".
type Options struct {
	Level  string
	Dir    string
	Format string
}

// Initialize sets up the logger with proper configuration
func Initialize(opts Options) {
	l := logrus.New()
	level := parseLevel(opts.Level)
	l.SetLevel(level)
	if strings.EqualFold(opts.Format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
			DisableColors:   opts.Dir != "",
		})
	}
	l.SetOutput(os.Stderr)

	logFile := ""
	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logs directory: %v\n", err)
		} else {
			logFile = filepath.Join(opts.Dir, "incidents.log")
			f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
				logFile = ""
			} else {
				l.SetOutput(io.MultiWriter(os.Stderr, f))
				l.SetReportCaller(true)
			}
		}
	}

	mu.Lock()
	Logger = l
	mu.Unlock()

	l.WithFields(logrus.Fields{
		"log_level": level.String(),
		"log_file":  logFile,
	}).Info("Logging system initialized")
}

func parseLevel(s string) logrus.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return logrus.DebugLevel
	case "WARN":
		return logrus.WarnLevel
	case "ERROR":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// GetLogger returns the configured logger, falling back to a stderr logger at
// info level when Initialize was never called.
func GetLogger() *logrus.Logger {
	mu.Lock()
	defer mu.Unlock()
	if Logger == nil {
		Logger = logrus.New()
		Logger.SetOutput(os.Stderr)
	}
	return Logger
}

// SetOutput redirects the logger, mainly for tests.
func SetOutput(w io.Writer) {
	GetLogger().SetOutput(w)
}

// WithContext creates a logger with additional context fields
func WithContext(fields map[string]interface{}) *logrus.Entry {
	return GetLogger().WithFields(fields)
}

// WithOwner creates a logger scoped to the calling owner
func WithOwner(ownerID string) *logrus.Entry {
	return GetLogger().WithFields(logrus.Fields{
		"owner_id":  ownerID,
		"component": "incident_service",
	})
}

// WithIncident creates a logger scoped to one incident of an owner
func WithIncident(ownerID, incidentID string) *logrus.Entry {
	return GetLogger().WithFields(logrus.Fields{
		"owner_id":    ownerID,
		"incident_id": incidentID,
		"component":   "incident_service",
	})
}

// WithSummarizer creates a logger with summarization gateway context
func WithSummarizer(provider, model string) *logrus.Entry {
	return GetLogger().WithFields(logrus.Fields{
		"component": "summarizer",
		"provider":  provider,
		"model":     model,
	})
}

// WithError creates a logger with error context
func WithError(err error, component string) *logrus.Entry {
	l := GetLogger()
	fields := logrus.Fields{
		"error":     err.Error(),
		"component": component,
	}

	if l.GetLevel() >= logrus.DebugLevel {
		fields["stack_trace"] = getStackTrace()
	}

	return l.WithFields(fields)
}

// getStackTrace returns a formatted stack trace
func getStackTrace() string {
	var stack []string
	for i := 2; i < 10; i++ {
		if pc, file, line, ok := runtime.Caller(i); ok {
			fn := runtime.FuncForPC(pc)
			stack = append(stack, fmt.Sprintf("%s:%d %s", file, line, fn.Name()))
		}
	}
	return strings.Join(stack, "\n")
}

func Debug(msg string, fields map[string]interface{}) {
	GetLogger().WithFields(fields).Debug(msg)
}

func Info(msg string, fields map[string]interface{}) {
	GetLogger().WithFields(fields).Info(msg)
}

func Warn(msg string, fields map[string]interface{}) {
	GetLogger().WithFields(fields).Warn(msg)
}

func Error(msg string, fields map[string]interface{}) {
	GetLogger().WithFields(fields).Error(msg)
}

func Fatal(msg string, fields map[string]interface{}) {
	GetLogger().WithFields(fields).Fatal(msg)
}
