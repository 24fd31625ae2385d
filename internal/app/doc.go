// Package app wires the huntstats HTTP service together.
//
// New builds, in order: OpenTelemetry providers, pipeline metrics, the
// step registry and pipeline (with policies from the processing config),
// the in-memory dataset store and services, and finally the chi router
// and http.Server. Run starts serving, optionally preloading the files
// named by the data config, and shuts down on SIGINT or SIGTERM, flushing
// telemetry on the way out.
//
// Initialization errors are returned to the caller; the package never
// exits the process itself.
package app
