package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

type Level slog.Level

var (
	LevelDebug = Level(slog.LevelDebug)
	LevelInfo  = Level(slog.LevelInfo)
	LevelWarn  = Level(slog.LevelWarn)
	LevelError = Level(slog.LevelError)
)

var defaultLevel = LevelInfo

// SetDefaultLevel sets the level used by loggers created afterwards without
// WithLevel.
func SetDefaultLevel(level Level) {
	defaultLevel = level
}

// ParseLevel maps a configured level name to a Level. An empty name is info.
func ParseLevel(name string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

type HandlerOption func(*tint.Options)

func WithTimeFormat(format string) HandlerOption {
	return func(opts *tint.Options) {
		opts.TimeFormat = format
	}
}

func WithNoColor(noColor bool) HandlerOption {
	return func(opts *tint.Options) {
		opts.NoColor = noColor
	}
}

// isTerminal reports whether w is a terminal file.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// NewHandlerOptions returns tint options for w: colour and a short time
// format on terminals, plain RFC 3339 otherwise.
func NewHandlerOptions(w io.Writer, level Level, opts ...HandlerOption) *tint.Options {
	tty := isTerminal(w)
	timeFormat := time.RFC3339
	if tty {
		timeFormat = time.Stamp
	}
	tintOpts := &tint.Options{
		Level:      slog.Level(level),
		NoColor:    !tty,
		TimeFormat: timeFormat,
	}
	for _, opt := range opts {
		opt(tintOpts)
	}
	return tintOpts
}

type LoggerOption func(*Logger)

func WithName(name string) LoggerOption {
	return func(l *Logger) {
		l.name = name
	}
}

func WithLevel(level Level) LoggerOption {
	return func(l *Logger) {
		l.level = level
	}
}

// WithOutput sends records to w instead of stderr.
func WithOutput(w io.Writer) LoggerOption {
	return func(l *Logger) {
		l.out = w
	}
}

func WithHandler(handler slog.Handler) LoggerOption {
	return func(l *Logger) {
		l.handler = handler
	}
}

func WithHandlerOptions(opts ...HandlerOption) LoggerOption {
	return func(l *Logger) {
		l.opts = append(l.opts, opts...)
	}
}

// Logger wraps a slog.Logger whose records are grouped under the logger name.
type Logger struct {
	*slog.Logger
	level   Level
	handler slog.Handler
	out     io.Writer
	name    string
	opts    []HandlerOption
}

func NewLogger(opts ...LoggerOption) *Logger {
	l := &Logger{
		name:  "mfcatalog",
		level: defaultLevel,
		out:   os.Stderr,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.handler == nil {
		l.handler = tint.NewHandler(l.out, NewHandlerOptions(l.out, l.level, l.opts...))
	}
	l.Logger = slog.New(l.handler).WithGroup(l.name)
	return l
}

// Discard returns a logger that drops every record.
func Discard() *Logger {
	return NewLogger(WithOutput(io.Discard), WithLevel(LevelError+1))
}

// Name returns the group name records are logged under.
func (l *Logger) Name() string {
	return l.name
}

// With returns a logger that adds args to every record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger:  l.Logger.With(args...),
		level:   l.level,
		handler: l.handler,
		out:     l.out,
		name:    l.name,
	}
}

// WithGroup returns a logger whose further attributes are nested under group.
func (l *Logger) WithGroup(group string) *Logger {
	return &Logger{
		Logger:  l.Logger.WithGroup(group),
		level:   l.level,
		handler: l.handler,
		out:     l.out,
		name:    group,
	}
}

func (l *Logger) Fatal(msg string, args ...any) {
	l.Logger.Error(msg, args...)
	os.Exit(1)
}
