package logging

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
)

// newJSONHandler writes the journal format: one object per line with short
// keys, UTC millisecond timestamps, and secrets masked.
func newJSONHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	opts := slog.HandlerOptions{
		Level:     lvl,
		AddSource: addSource,
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			if len(groups) == 0 {
				switch attr.Key {
				case slog.TimeKey:
					attr.Key = "ts"
					if attr.Value.Kind() == slog.KindTime {
						attr.Value = slog.StringValue(attr.Value.Time().UTC().Format("2006-01-02T15:04:05.000Z"))
					}
					return attr
				case slog.LevelKey:
					attr.Value = slog.StringValue(strings.ToLower(attr.Value.String()))
					return attr
				case slog.MessageKey:
					return attr
				case slog.SourceKey:
					if src, ok := attr.Value.Any().(*slog.Source); ok && src != nil {
						attr.Key = "caller"
						attr.Value = slog.StringValue(fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line))
					}
					return attr
				}
			}
			if isSecretKey(attr.Key) {
				attr.Value = slog.StringValue(redactedValue)
			}
			return attr
		},
	}
	return slog.NewJSONHandler(w, &opts)
}

