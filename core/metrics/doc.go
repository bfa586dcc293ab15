// Package metrics defines the sink interface that receives one event per
// schedule generation. Sinks are built from configuration through the
// registry in factory.go; infra/metrics registers the Prometheus and InfluxDB
// implementations. Several configured sinks are combined with NewMultiSink.
package metrics
