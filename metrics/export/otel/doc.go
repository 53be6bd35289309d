// Package otel bridges the library's internal counters to OpenTelemetry
// as observable instruments. Registering an exporter is pull-based: the
// hot path keeps its lock-free atomic counters and the meter's collect
// cycle reads a snapshot.
package otel
