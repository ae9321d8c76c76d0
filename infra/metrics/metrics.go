package metrics

import "time"

// Config holds the sink settings.
type Config struct {
	PrometheusEnabled bool   `json:"prometheus_enabled" mapstructure:"prometheus_enabled"`
	PrometheusPort    string `json:"prometheus_port" mapstructure:"prometheus_port"`
	InfluxEnabled     bool   `json:"influx_enabled" mapstructure:"influx_enabled"`
	InfluxURL         string `json:"influx_url" mapstructure:"influx_url"`
	InfluxToken       string `json:"influx_token" mapstructure:"influx_token"`
	InfluxOrg         string `json:"influx_org" mapstructure:"influx_org"`
	InfluxBucket      string `json:"influx_bucket" mapstructure:"influx_bucket"`
}

// SolveRecord describes one completed TNEP solve.
type SolveRecord struct {
	RunID     string
	Network   string
	Model     string
	Solver    string
	Status    string
	Objective float64
	Gap       float64
	Built     int
	Nodes     int
	Duration  time.Duration
	Time      time.Time
}

// SolveSink records solve outcomes for observability purposes.
type SolveSink interface {
	RecordSolve(rec SolveRecord) error
}

// NopSink implements SolveSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordSolve(SolveRecord) error { return nil }
