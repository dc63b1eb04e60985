// Package logging builds the zap loggers used for data and status records.
//
// Every record is written as
//
//	[2024-01-02 15:04:05] INFO: Location: London
//
// using a console encoder with custom time and level encoders. WARN is
// spelled WARNING.
//
// New returns the data sink: an append-mode file rotated by lumberjack,
// optionally mirrored to the console. Console returns the status logger used
// by the command line. ParseLevel maps configuration names to zap levels.
package logging
