package logging

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"strconv"
	"strings"
	"sync"
)

const (
	ansiReset     = "\033[0m"
	ansiRed       = "\033[31m"
	ansiGreen     = "\033[32m"
	ansiYellow    = "\033[33m"
	ansiCyan      = "\033[36m"
	ansiGray      = "\033[90m"
	ansiUnderline = "\033[4m"
)

//nolint:gochecknoglobals
var levelColor = map[slog.Level]string{
	slog.LevelDebug: ansiCyan,
	slog.LevelInfo:  ansiGreen,
	slog.LevelWarn:  ansiYellow,
	slog.LevelError: ansiRed,
}

// ConsoleHandler is a human-readable slog.Handler for development use.
//
// Records are written as a single colored line. PkgLevels overrides the
// minimum level per logger name: a filter for "svc" applies to the loggers
// "svc.animesvc" and "svc.authsvc" unless a longer prefix is configured.
type ConsoleHandler struct {
	out       io.Writer
	level     slog.Level
	pkgLevels map[string]slog.Level
	source    bool
	mu        *sync.Mutex

	attrs  []slog.Attr
	groups []string
}

var _ slog.Handler = (*ConsoleHandler)(nil)

// NewConsoleHandler creates a ConsoleHandler writing to out.
func NewConsoleHandler(out io.Writer, level slog.Level, pkgLevels map[string]slog.Level, source bool) *ConsoleHandler {
	return &ConsoleHandler{
		out:       out,
		level:     level,
		pkgLevels: pkgLevels,
		source:    source,
		mu:        new(sync.Mutex),
	}
}

// Enabled implements slog.Handler.Enabled. It admits the lowest level any
// package filter could let through. Handle does the precise check.
func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := h.level
	for _, l := range h.pkgLevels {
		minLevel = min(minLevel, l)
	}

	return level >= minLevel
}

// Handle implements slog.Handler.
func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	attrs = append(attrs, h.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)

		return true
	})

	if r.Level < h.levelFor(loggerName(attrs)) {
		return nil
	}

	var buf strings.Builder

	buf.WriteString(ansiGray + r.Time.Format("15:04:05.000000") + ansiReset)
	buf.WriteString(" " + levelColor[r.Level] + "[" + r.Level.String() + "]" + ansiReset)
	buf.WriteString(" " + r.Message)

	if len(attrs) > 0 {
		var prefix string
		if len(h.groups) > 0 {
			prefix = strings.Join(h.groups, ".") + "."
		}

		buf.WriteString(" " + ansiGray + "|" + ansiReset)
		writeAttrs(&buf, prefix, attrs)
	}

	if h.source && r.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		fn := frame.Function[strings.LastIndexByte(frame.Function, '/')+1:]

		buf.WriteString("\n-> " + ansiGray + fn + "()")
		buf.WriteString(" in " + ansiUnderline + frame.File + ":" + strconv.Itoa(frame.Line) + ansiReset)
	}

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := io.WriteString(h.out, buf.String())

	return err //nolint:wrapcheck
}

func (h *ConsoleHandler) levelFor(name string) slog.Level {
	for name != "" {
		if level, ok := h.pkgLevels[name]; ok {
			return level
		}

		idx := strings.LastIndexByte(name, '.')
		if idx < 0 {
			break
		}

		name = name[:idx]
	}

	return h.level
}

func loggerName(attrs []slog.Attr) string {
	for _, attr := range attrs {
		if attr.Key == loggerKey {
			return attr.Value.String()
		}
	}

	return ""
}

func writeAttrs(buf *strings.Builder, prefix string, attrs []slog.Attr) {
	for _, attr := range attrs {
		if attr.Value.Kind() == slog.KindGroup {
			writeAttrs(buf, prefix+attr.Key+".", attr.Value.Group())

			continue
		}

		buf.WriteString(" " + prefix + attr.Key + "=" + ansiGray + attr.Value.String() + ansiReset)
	}
}

// WithAttrs implements slog.Handler.WithAttrs.
func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)

	return &clone
}

// WithGroup implements slog.Handler.WithGroup.
func (h *ConsoleHandler) WithGroup(name string) Handler {
	clone := *h
	clone.groups = append(append([]string{}, h.groups...), name)

	return &clone
}
