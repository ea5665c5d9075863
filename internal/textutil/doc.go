// Package textutil provides filename sanitization shared by the planner and
// the pipeline's course directory naming.
//
// SanitizeFileName replaces characters that are invalid on common
// filesystems with underscores. It is idempotent, so names may be sanitized
// at several layers without drift.
package textutil
