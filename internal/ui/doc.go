// Package ui implements the interactive watchdog form on Bubble Tea.
//
// # Screens
//
// The form collects the provider, polling interval, query and log file. Enter
// validates the input, hands a Request to the caller's Starter and switches
// to the monitoring screen; validation errors are shown under the form and
// never reach the poll loop.
//
// The monitoring screen shows the session state badge, cycle counters from
// the state store, and the tail of the log file, refreshed every PollTick.
// Stopping (x, esc or ctrl+c) asks the session to stop and exits the program;
// the cycle in flight, if any, is left to finish.
//
// # Themes
//
// Three palettes are available (Nightfox, Kanagawa, Slate). T cycles them and
// the choice is saved with the rest of the form values through package prefs.
package ui
