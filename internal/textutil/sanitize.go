package textutil

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// fileNameReplacer maps filesystem-unsafe characters to underscores.
var fileNameReplacer = strings.NewReplacer(
	"\\", "_",
	"/", "_",
	":", "_",
	"*", "_",
	"?", "_",
	"\"", "_",
	"<", "_",
	">", "_",
	"|", "_",
)

// SanitizeFileName replaces each of \ / : * ? " < > | with an underscore.
// Every other character, including surrounding whitespace, is preserved.
func SanitizeFileName(name string) string {
	return fileNameReplacer.Replace(name)
}

// SanitizePathSegment sanitizes a single directory name: unsafe characters
// become underscores, the result is NFC-normalized and trimmed. Returns
// fallback when nothing usable remains.
func SanitizePathSegment(name, fallback string) string {
	cleaned := strings.TrimSpace(norm.NFC.String(SanitizeFileName(name)))
	cleaned = strings.Trim(cleaned, ".")
	if cleaned == "" {
		return fallback
	}
	return cleaned
}
