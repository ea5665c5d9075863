package download

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrNoPlaybackPath reports a recording URL without the playback delimiter.
var ErrNoPlaybackPath = errors.New("no playback path in recording url")

// DefaultPlaypathDelimiter marks where the stream's playback path begins.
const DefaultPlaypathDelimiter = "_definst_/"

// PlaybackPath returns everything after the first occurrence of delimiter.
func PlaybackPath(url, delimiter string) (string, error) {
	if delimiter == "" {
		delimiter = DefaultPlaypathDelimiter
	}
	_, after, found := strings.Cut(url, delimiter)
	if !found || after == "" {
		return "", fmt.Errorf("%w: %q lacks %q", ErrNoPlaybackPath, url, delimiter)
	}
	return after, nil
}

// OutputPath joins dir, filename, and extension.
func OutputPath(dir, filename, extension string) string {
	extension = strings.TrimPrefix(strings.TrimSpace(extension), ".")
	if extension == "" {
		return filepath.Join(dir, filename)
	}
	return filepath.Join(dir, filename+"."+extension)
}

// BuildArgs renders the downloader invocation:
// <resume flag> -r <url> -y <playpath> -o <destination>.
func BuildArgs(resumeFlag, url, playpath, destination string) []string {
	args := make([]string, 0, 7)
	if flag := strings.TrimSpace(resumeFlag); flag != "" {
		args = append(args, flag)
	}
	return append(args, "-r", url, "-y", playpath, "-o", destination)
}
