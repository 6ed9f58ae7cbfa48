// Package telemetry initializes the OpenTelemetry SDK for planforged:
// a resource describing the service, OTLP trace and metric exporters
// over gRPC or HTTP, W3C trace-context propagation, and a graceful
// shutdown path. Exporter failures degrade to no-op providers rather
// than failing startup.
package telemetry
