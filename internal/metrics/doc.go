// Package metrics exposes Prometheus collectors for fetch and poll activity.
//
// Collectors are registered on the Registerer passed to New, so tests and
// the app each own a private registry. A nil *Metrics records nothing,
// which lets fetch and poll run without metrics wired in.
//
// Handler serves the registry at /metrics when --metrics-addr is set.
package metrics
