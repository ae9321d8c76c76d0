package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/gridopt/tnep/config"
	"github.com/gridopt/tnep/core/network"
	"github.com/gridopt/tnep/core/tnep"
	"github.com/gridopt/tnep/infra/logger"
	"github.com/gridopt/tnep/infra/metrics"
	"github.com/gridopt/tnep/infra/mqtt"
)

// Service runs TNEP solves for requests arriving over MQTT and records the
// outcomes on the configured metrics sinks.
type Service struct {
	cfg    *config.Config
	client *mqtt.Client
	sink   metrics.SolveSink
	log    logger.Logger

	mu      sync.Mutex
	baseCtx context.Context
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	if err := logger.Configure(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		return nil, err
	}
	tnep.SetLogger(logger.New("solver"))
	svc := &Service{cfg: cfg, log: logger.New("service"), sink: Sinks(cfg.Metrics)}
	client, err := mqtt.NewClient(cfg.MQTT, svc.handleRequest)
	if err != nil {
		return nil, fmt.Errorf("mqtt client: %w", err)
	}
	svc.client = client
	return svc, nil
}

// Sinks builds the configured metrics sink chain.
func Sinks(cfg metrics.Config) metrics.SolveSink {
	var sinks []metrics.SolveSink
	if cfg.PrometheusEnabled {
		sink, err := metrics.NewPromSink(nil)
		if err == nil {
			sinks = append(sinks, sink)
		} else {
			logger.New("metrics").Errorf("prom sink: %v", err)
		}
	}
	if cfg.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg))
	}
	switch len(sinks) {
	case 0:
		return metrics.NopSink{}
	case 1:
		return sinks[0]
	default:
		return metrics.NewMultiSink(sinks...)
	}
}

// Run starts the service and blocks until the context is cancelled. In-flight
// solves derive from ctx, so cancelling it interrupts them.
func (s *Service) Run(ctx context.Context) error {
	s.mu.Lock()
	s.baseCtx = ctx
	s.mu.Unlock()
	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	s.log.Infof("listening for solve requests on %s", s.cfg.MQTT.RequestTopic)
	<-ctx.Done()
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.client.Close()
	return nil
}

func (s *Service) context() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.baseCtx != nil {
		return s.baseCtx
	}
	return context.Background()
}

func (s *Service) handleRequest(req mqtt.SolveRequest) {
	resp := mqtt.SolveResponse{RequestID: req.RequestID}
	rep, err := s.solve(s.context(), req)
	if err != nil {
		s.log.Errorf("request %s: %v", req.RequestID, err)
		resp.Error = err.Error()
	} else if payload, merr := json.Marshal(rep); merr != nil {
		resp.Error = merr.Error()
	} else {
		resp.Report = payload
	}
	if err := s.client.PublishResponse(resp); err != nil {
		s.log.Errorf("publish response %s: %v", req.RequestID, err)
	}
}

func (s *Service) solve(ctx context.Context, req mqtt.SolveRequest) (*tnep.Report, error) {
	if len(req.Network) == 0 {
		return nil, fmt.Errorf("request %s carries no network", req.RequestID)
	}
	net, err := network.Decode(bytes.NewReader(req.Network))
	if err != nil {
		return nil, fmt.Errorf("decode network: %w", err)
	}
	if err := net.Validate(); err != nil {
		return nil, err
	}

	model := s.cfg.Solver.Model
	if req.Model != "" {
		model = req.Model
	}
	backend := s.cfg.Solver.Backend
	if req.Solver != "" {
		backend = req.Solver
	}
	opts := s.cfg.Solver.Options
	if req.Options != nil {
		if err := mapstructure.Decode(req.Options, &opts); err != nil {
			return nil, fmt.Errorf("decode options: %w", err)
		}
	}

	rep, err := tnep.Solve(ctx, net, model, backend, opts)
	if err != nil {
		return nil, err
	}
	if err := s.sink.RecordSolve(SolveRecord(rep)); err != nil {
		s.log.Warnf("record solve %s: %v", rep.RunID, err)
	}
	return rep, nil
}

// SolveRecord converts a report into the metrics sink representation.
func SolveRecord(rep *tnep.Report) metrics.SolveRecord {
	return metrics.SolveRecord{
		RunID:     rep.RunID,
		Network:   rep.Network,
		Model:     rep.Model,
		Solver:    rep.Solver,
		Status:    rep.Status,
		Objective: rep.Objective,
		Gap:       rep.Gap,
		Built:     len(rep.Built),
		Nodes:     rep.Nodes,
		Duration:  rep.SolveTime,
		Time:      time.Now(),
	}
}
