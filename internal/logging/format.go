package logging

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	logTimestampLayout = "2006-01-02 15:04:05"
	redactedValue      = "[redacted]"
	// consoleValueLimit keeps page snapshots from flooding the terminal.
	consoleValueLimit = 240
)

// secretKeys never reach a log sink in clear text.
var secretKeys = []string{"password", "passwd", "secret", "token", "cookie"}

func isSecretKey(key string) bool {
	key = strings.ToLower(key)
	for _, s := range secretKeys {
		if strings.Contains(key, s) {
			return true
		}
	}
	return false
}

func formatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.In(time.Local).Format(logTimestampLayout)
}

// attrString renders a value without quoting, for header fields.
func attrString(v slog.Value) string {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return fmt.Sprint(v.Any())
	default:
		return formatValue(v)
	}
}

// formatField renders a bullet value for the console: secrets are masked and
// long values are cut to consoleValueLimit runes.
func formatField(key string, v slog.Value) string {
	if isSecretKey(key) {
		return redactedValue
	}
	return formatValue(truncateValue(v.Resolve()))
}

func truncateValue(v slog.Value) slog.Value {
	var s string
	switch v.Kind() {
	case slog.KindString:
		s = v.String()
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			s = err.Error()
		} else {
			return v
		}
	default:
		return v
	}
	if utf8.RuneCountInString(s) <= consoleValueLimit {
		return v
	}
	runes := []rune(s)
	return slog.StringValue(fmt.Sprintf("%s… (%d bytes)", string(runes[:consoleValueLimit]), len(s)))
}

func formatValue(v slog.Value) string {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindBool:
		return strconv.FormatBool(v.Bool())
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		return strconv.FormatUint(v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return formatTimestamp(v.Time())
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return quoteIfNeeded(err.Error())
		}
		return quoteIfNeeded(fmt.Sprint(v.Any()))
	default:
		return quoteIfNeeded(v.String())
	}
}

func quoteIfNeeded(s string) string {
	if s == "" {
		return `""`
	}
	for _, r := range s {
		if r <= ' ' || r == '=' || r == '"' {
			return strconv.Quote(s)
		}
	}
	return s
}
