// Package prometheus exposes hireauth engine metrics through
// client_golang.
//
// [NewCollector] wraps an engine as a prometheus.Collector. Counter names
// are hireauth_*_total; the verify latency histogram is
// hireauth_verify_latency_seconds. Callers either register the collector in
// their own registry or mount [Handler], which uses a private registry.
// Nothing is registered in the global default registry.
package prometheus
