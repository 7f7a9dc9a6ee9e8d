// Package otel publishes hireauth engine metrics through an OpenTelemetry
// meter.
//
// [NewExporter] registers an Int64ObservableCounter per engine counter and a
// set of cumulative gauges per histogram bucket. A single callback reads
// [hireauth.Engine.MetricsSnapshot] on each collection cycle. The caller owns
// the MeterProvider.
package otel
