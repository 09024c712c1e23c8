// Package sentinel is the interception table of the runtime security
// layer: one wrapper per watched libc-level entry point. Each wrapper
// classifies the call, emits a best-effort telemetry event, then forwards
// to the original implementation and returns its result verbatim. The
// host's observable behavior is identical with and without a reachable
// monitor.
package sentinel

import "github.com/sandboxkit/sentinel/pkg/telemetry"

// Load hook: try to establish the telemetry channel before the first
// intercepted call.
func init() {
	telemetry.Bootstrap()
}

// Shutdown releases the telemetry channel. Call once when the host
// process unloads the sentinel.
func Shutdown() error {
	return telemetry.Shutdown()
}

// ResetAfterFork must be called in the child branch of a fork that does
// not exec. It discards channel state inherited from the parent so the
// child's next event opens its own connection instead of writing through
// the parent's descriptor.
func ResetAfterFork() {
	telemetry.Reset()
}
