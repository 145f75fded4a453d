package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/dronedispatch/core/metrics"
	"github.com/kilianp07/dronedispatch/infra/logger"
)

// InfluxSink writes deliveries and fleet snapshots to an InfluxDB instance using the official client.
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

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
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

// Close releases the HTTP client.
func (s *InfluxSink) Close() {
	s.client.Close()
}

// RecordDelivery writes a completed delivery.
func (s *InfluxSink) RecordDelivery(rec coremetrics.DeliveryRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("delivery").
		AddTag("drone_id", rec.DroneID).
		AddTag("request_id", rec.RequestID).
		AddTag("class", rec.Class.String()).
		AddTag("priority", rec.Priority.String()).
		AddTag("method", rec.Method).
		AddField("distance_m", round3(rec.DistanceM)).
		AddField("drone_kwh", round6(rec.DroneKWh)).
		AddField("baseline_kwh", round6(rec.BaselineKWh)).
		AddField("saved_kwh", round6(rec.SavedKWh)).
		AddField("co2_saved_kg", round6(rec.CO2SavedKg)).
		AddField("time_saved_s", round3(rec.TimeSaved.Seconds())).
		SetTime(rec.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordDroneState writes a snapshot of a drone.
func (s *InfluxSink) RecordDroneState(ev coremetrics.DroneStateEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	d := ev.Drone
	p := write.NewPointWithMeasurement("drone_state").
		AddTag("drone_id", d.ID).
		AddTag("class", d.Class.String())
	if ev.Reason != "" {
		p = p.AddTag("reason", ev.Reason)
	}
	p = p.AddField("status", d.Status.String()).
		AddField("battery_level", round3(d.BatteryLevel())).
		AddField("battery_kwh", round6(d.BatteryKWh)).
		AddField("location", int64(d.Location)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordAssignment writes a committed route.
func (s *InfluxSink) RecordAssignment(rec coremetrics.AssignmentRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	route := "planned"
	if !rec.Planned {
		route = "fallback"
	}
	p := write.NewPointWithMeasurement("assignment").
		AddTag("drone_id", rec.DroneID).
		AddTag("request_id", rec.RequestID).
		AddTag("class", rec.Class.String()).
		AddTag("priority", rec.Priority.String()).
		AddTag("route", route).
		AddField("length_m", round3(rec.LengthM)).
		AddField("optimal_m", round3(rec.OptimalM)).
		AddField("efficiency", round3(rec.Efficiency())).
		AddField("wait_s", round3(rec.Wait.Seconds())).
		SetTime(rec.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}

func round6(f float64) float64 {
	return math.Round(f*1e6) / 1e6
}
