// Package logtail reads, follows and parses watchdog log files.
//
// Read returns the last N lines of a file using a ring buffer, so memory is
// bounded by N rather than by the file size. A missing file is not an error:
// the watchdog may not have written its first record yet.
//
// Follow streams lines appended to a file, surviving rotation by lumberjack,
// until its context is cancelled. It backs "apiwatchdog tail --follow".
//
// Parse splits a "[YYYY-MM-DD HH:MM:SS] LEVEL: message" record so the
// interactive view can style lines by level. Multi-line payload dumps produce
// continuation lines that do not parse; callers render them as-is.
package logtail
