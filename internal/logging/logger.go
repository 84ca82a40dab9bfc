package logging

import (
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

var Logger *log.Logger

// LogLevel represents available log levels
type LogLevel string

const (
	DebugLevel LogLevel = "debug"
	InfoLevel  LogLevel = "info"
	WarnLevel  LogLevel = "warn"
	ErrorLevel LogLevel = "error"
)

// Options controls how the global logger is built.
type Options struct {
	Level      string
	Format     string
	Structured bool
	Prefix     string
}

// InitLogger initializes the global logger with configuration from environment variables
func InitLogger() {
	Logger = log.New(os.Stderr)

	logLevel := ParseLevel(os.Getenv("LOG_LEVEL"))
	setLogLevel(Logger, logLevel)

	Logger.SetReportTimestamp(true)
	Logger.SetReportCaller(true)

	Logger.Debug("Logger initialized successfully", "level", logLevel)
}

// Configure replaces the global logger with one built from opts.
func Configure(opts Options) *log.Logger {
	logger := log.New(os.Stderr)
	setLogLevel(logger, ParseLevel(opts.Level))
	logger.SetFormatter(parseFormatter(opts.Format))

	// Pretty output gets caller and timestamp, structured output keeps lines short
	if opts.Format == "pretty" || !opts.Structured {
		logger.SetReportCaller(true)
		logger.SetReportTimestamp(true)
	}

	if opts.Prefix != "" {
		logger.SetPrefix(opts.Prefix)
	}

	Logger = logger
	log.SetDefault(logger)

	logger.Debug("Logger configured", "level", opts.Level, "format", opts.Format, "structured", opts.Structured)
	return logger
}

// ParseLevel maps a free-form level name onto a LogLevel. Unknown values fall back to debug.
func ParseLevel(raw string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return DebugLevel
	case "info":
		return InfoLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return DebugLevel
	}
}

func parseFormatter(format string) log.Formatter {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}

// setLogLevel configures the logger with the specified level
func setLogLevel(logger *log.Logger, level LogLevel) {
	switch level {
	case DebugLevel:
		logger.SetLevel(log.DebugLevel)
	case InfoLevel:
		logger.SetLevel(log.InfoLevel)
	case WarnLevel:
		logger.SetLevel(log.WarnLevel)
	case ErrorLevel:
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.DebugLevel)
	}
}

// GetLogger returns the global logger instance
func GetLogger() *log.Logger {
	if Logger == nil {
		InitLogger()
	}
	return Logger
}

// WithFields creates a logger with contextual fields
func WithFields(fields ...interface{}) *log.Logger {
	return GetLogger().With(fields...)
}

// WithSeed creates a logger with seed context
func WithSeed(seed int64) *log.Logger {
	return WithFields("seed", seed)
}

// WithPreset creates a logger with preset name context
func WithPreset(name string) *log.Logger {
	return WithFields("preset", name)
}

// WithExtent creates a logger with grid extent context
func WithExtent(width, depth float32) *log.Logger {
	return WithFields("width", width, "depth", depth)
}

// WithDuration creates a logger with duration context (for performance logging)
func WithDuration(operation string, duration interface{}) *log.Logger {
	return WithFields("operation", operation, "duration", duration)
}
