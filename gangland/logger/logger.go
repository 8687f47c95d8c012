package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorPurple = "\033[35m"
	colorCyan   = "\033[36m"
	colorWhite  = "\033[37m"
)

type LogType string

const (
	TypeCommand LogType = "CMD"
	TypeDB      LogType = "DB"
	TypeAPI     LogType = "API"
	TypeGame    LogType = "GAME"
	TypeFeed    LogType = "FEED"
	TypeSystem  LogType = "SYS"
	TypeError   LogType = "ERR"
)

// CustomHandler prints one coloured line per record:
//
//	[Gangland] [15:04:05] [INFO] [GAME] Crime resolved player=p1 crime=0
type CustomHandler struct {
	out    io.Writer
	mu     *sync.Mutex
	level  slog.Leveler
	color  bool
	attrs  []slog.Attr
	groups []string
}

type Options struct {
	Level slog.Leveler
	// NoColor disables ANSI escapes, for log files and tests.
	NoColor bool
}

func NewHandler(out io.Writer, opts Options) *CustomHandler {
	if out == nil {
		out = os.Stdout
	}
	if opts.Level == nil {
		opts.Level = slog.LevelInfo
	}
	return &CustomHandler{
		out:   out,
		mu:    &sync.Mutex{},
		level: opts.Level,
		color: !opts.NoColor,
	}
}

func (h *CustomHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *CustomHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &c
}

func (h *CustomHandler) WithGroup(name string) slog.Handler {
	c := *h
	c.groups = append(append([]string{}, h.groups...), name)
	return &c
}

func (h *CustomHandler) Handle(_ context.Context, r slog.Record) error {
	if shouldSkipLog(&r) {
		return nil
	}

	var levelColor, levelText string
	switch {
	case r.Level >= slog.LevelError:
		levelColor, levelText = colorRed, "ERROR"
	case r.Level >= slog.LevelWarn:
		levelColor, levelText = colorYellow, "WARN"
	case r.Level >= slog.LevelInfo:
		levelColor, levelText = colorGreen, "INFO"
	default:
		levelColor, levelText = colorPurple, "DEBUG"
	}

	attrs := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	attrs = append(attrs, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)
		return true
	})

	message := r.Message
	if r.Level >= slog.LevelError {
		if loc := errorLocation(attrs, r.PC); loc != "" {
			message = fmt.Sprintf("%s (%s)", message, loc)
		}
		if details := attrValue(attrs, "error"); details != "" {
			message = fmt.Sprintf("%s: %s", message, details)
		}
	}

	var b strings.Builder
	prefix := ""
	if len(h.groups) > 0 {
		prefix = strings.Join(h.groups, ".") + "."
	}
	for _, a := range attrs {
		if isInternalAttr(a.Key) || (r.Level >= slog.LevelError && a.Key == "error") {
			continue
		}
		fmt.Fprintf(&b, " %s%s=%v", prefix, a.Key, a.Value)
	}

	line := fmt.Sprintf("[Gangland] [%s] [%s%s%s] [%s] %s%s",
		r.Time.Format("15:04:05"),
		h.paint(levelColor), levelText, h.paint(colorWhite),
		logType(attrs),
		message,
		b.String(),
	)

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintf(h.out, "%s%s%s\n", h.paint(colorWhite), line, h.paint(colorReset))
	return err
}

func (h *CustomHandler) paint(color string) string {
	if !h.color {
		return ""
	}
	return color
}

// shouldSkipLog drops chatty transport messages from dependencies.
func shouldSkipLog(r *slog.Record) bool {
	skipped := []string{
		"locking rest bucket",
		"unlocking rest bucket",
		"new request",
		"new response",
		"rate limit response headers",
	}
	msg := strings.ToLower(r.Message)
	for _, skip := range skipped {
		if strings.Contains(msg, skip) {
			return true
		}
	}
	return false
}

func logType(attrs []slog.Attr) LogType {
	switch attrValue(attrs, "type") {
	case "cmd":
		return TypeCommand
	case "db":
		return TypeDB
	case "api":
		return TypeAPI
	case "game":
		return TypeGame
	case "feed":
		return TypeFeed
	case "error":
		return TypeError
	}
	return TypeSystem
}

func isInternalAttr(key string) bool {
	return key == "type" || key == "error_location"
}

func attrValue(attrs []slog.Attr, key string) string {
	for i := len(attrs) - 1; i >= 0; i-- {
		if attrs[i].Key == key {
			return attrs[i].Value.String()
		}
	}
	return ""
}

func errorLocation(attrs []slog.Attr, pc uintptr) string {
	if loc := attrValue(attrs, "error_location"); loc != "" {
		return loc
	}
	if pc == 0 {
		return ""
	}
	frame, _ := runtime.CallersFrames([]uintptr{pc}).Next()
	if frame.File == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", filepath.Base(frame.File), frame.Line)
}

// LogSystem logs system events
func LogSystem(msg string, attrs ...any) {
	slog.Info(msg, append([]any{slog.String("type", "sys")}, attrs...)...)
}

// LogError logs error events
func LogError(msg string, err error, attrs ...any) {
	base := []any{
		slog.String("type", "error"),
		slog.String("error", err.Error()),
	}
	slog.Error(msg, append(base, attrs...)...)
}

// LogCommand logs a CLI command run
func LogCommand(name string, took time.Duration, err error) {
	attrs := []any{
		slog.String("type", "cmd"),
		slog.String("name", name),
		slog.Duration("took", took),
	}
	if err != nil {
		slog.Error("Command failed", append(attrs, slog.String("error", err.Error()))...)
		return
	}
	slog.Info("Command executed", attrs...)
}
