package logging

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

// infoFieldLimit caps how many fields an INFO line carries; DEBUG shows all.
const infoFieldLimit = 8

// headerKeys are lifted out of the field list into the line header.
var headerKeys = []string{FieldComponent, FieldCourseID, FieldStage}

// infoHiddenKeys stay out of INFO lines but still reach the JSON journal.
var infoHiddenKeys = []string{FieldRunID, FieldCourseID, FieldStage}

type field struct {
	key   string
	value slog.Value
}

// consoleHandler writes one human-readable line per record:
//
//	2024-03-01 10:00:00 INFO [download] COMP1000 (download) – saved key=value
//
// Attributes bound through WithAttrs are flattened once, at bind time.
type consoleHandler struct {
	mu        *sync.Mutex
	w         io.Writer
	level     *slog.LevelVar
	addSource bool
	prefix    string
	bound     []field
}

func newConsoleHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return &consoleHandler{mu: &sync.Mutex{}, w: w, level: lvl, addSource: addSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.bound = slices.Clone(h.bound)
	for _, a := range attrs {
		next.bound = appendField(next.bound, h.prefix, a)
	}
	return &next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	fields := slices.Clone(h.bound)
	record.Attrs(func(a slog.Attr) bool {
		fields = appendField(fields, h.prefix, a)
		return true
	})
	fields = lastWins(fields)

	header := map[string]string{}
	for _, f := range fields {
		if slices.Contains(headerKeys, f.key) {
			header[f.key] = attrString(f.value)
		}
	}

	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	msg := strings.TrimSpace(record.Message)
	if msg == "" {
		msg = "(no message)"
	}

	var b strings.Builder
	b.WriteString(formatTimestamp(ts))
	b.WriteByte(' ')
	b.WriteString(levelLabel(record.Level))
	if c := header[FieldComponent]; c != "" {
		b.WriteString(" [" + c + "]")
	}
	if subject := composeSubject(header[FieldCourseID], header[FieldStage]); subject != "" {
		b.WriteString(" " + subject)
	}
	b.WriteString(" – ")
	b.WriteString(msg)

	verbose := record.Level < slog.LevelInfo
	shown, dropped := 0, 0
	for _, f := range fields {
		if f.key == FieldComponent {
			continue
		}
		if !verbose {
			if slices.Contains(infoHiddenKeys, f.key) {
				continue
			}
			if shown == infoFieldLimit {
				dropped++
				continue
			}
		}
		b.WriteString(" " + f.key + "=" + formatField(f.key, f.value))
		shown++
	}
	if dropped > 0 {
		b.WriteString(" (+" + strconv.Itoa(dropped) + " more)")
	}
	if h.addSource && verbose {
		if src := record.Source(); src != nil && src.File != "" {
			b.WriteString(" @" + filepath.Base(src.File) + ":" + strconv.Itoa(src.Line))
		}
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func appendField(dst []field, prefix string, a slog.Attr) []field {
	if a.Equal(slog.Attr{}) {
		return dst
	}
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		next := prefix
		if a.Key != "" {
			next = prefix + a.Key + "."
		}
		for _, inner := range v.Group() {
			dst = appendField(dst, next, inner)
		}
		return dst
	}
	key := prefix + a.Key
	if key == "" {
		return dst
	}
	return append(dst, field{key: key, value: v})
}

// lastWins drops earlier fields whose key is repeated later, keeping the
// position of the first occurrence.
func lastWins(fields []field) []field {
	if len(fields) < 2 {
		return fields
	}
	index := make(map[string]int, len(fields))
	out := fields[:0:0]
	for _, f := range fields {
		if i, ok := index[f.key]; ok {
			out[i].value = f.value
			continue
		}
		index[f.key] = len(out)
		out = append(out, f)
	}
	return out
}

func composeSubject(courseID, stage string) string {
	courseID = strings.TrimSpace(courseID)
	stage = strings.TrimSpace(stage)
	switch {
	case courseID != "" && stage != "":
		return courseID + " (" + stage + ")"
	case courseID != "":
		return courseID
	default:
		return stage
	}
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
