// Package app is the composition root: it turns a Watch into a running poll
// loop with its log sink, fetcher, provider, state store and metrics.
//
// # Modes
//
//   - RunCLI runs the blocking loop in the foreground. Status records go to
//     the console, formatted data to the log file (mirrored to the console
//     with --mirror). It returns when the context is cancelled.
//   - RunForm opens the interactive form. Starting from the form calls
//     StartSession, which runs the scheduled-callback loop and sends status
//     records to the log file, since the form owns the terminal.
//
// # Startup
//
//  1. Load .env into the environment (existing variables win)
//  2. Load the optional settings file and apply flag overrides
//  3. Create the Prometheus registry shared by every session
//  4. Validate the endpoint before any file is created
//  5. Open the log sink, build the fetcher and provider, assign a session id
//
// Validation failures wrap provider.ErrInvalidEndpoint or config.ErrInvalid
// so the command line can report them as usage errors.
package app
