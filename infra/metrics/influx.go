package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/pca-scheduler/core/metrics"
	"github.com/kilianp07/pca-scheduler/infra/logger"
)

// InfluxSink writes generation events to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a NopSink
// when the health check fails, so an unreachable database never blocks
// schedule generation.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordGeneration writes one schedule_generation point.
func (s *InfluxSink) RecordGeneration(ev coremetrics.GenerationEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, generationPoint(ev))
}

// Close releases the HTTP client.
func (s *InfluxSink) Close() { s.client.Close() }

func generationPoint(ev coremetrics.GenerationEvent) *write.Point {
	return write.NewPointWithMeasurement("schedule_generation").
		AddTag("set_id", ev.SetID.String()).
		AddTag("outcome", ev.Outcome()).
		AddTag("exhausted", strconv.FormatBool(ev.Exhausted)).
		AddField("workers", ev.Workers).
		AddField("requested", ev.Requested).
		AddField("produced", ev.Produced).
		AddField("trials", ev.Trials).
		AddField("permutation_space", ev.Space).
		AddField("duration_ms", float64(ev.Duration.Microseconds())/1000).
		SetTime(ev.Time)
}
