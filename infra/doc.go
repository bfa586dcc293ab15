// Package infra holds the adapters behind core interfaces: the zerolog
// logger, the Prometheus and InfluxDB metrics sinks and the MQTT publisher.
// They depend on core packages, never the other way round.
package infra
