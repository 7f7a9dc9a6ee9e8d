package otel

import (
	"context"
	"errors"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"

	"github.com/MrEthical07/hireauth"
)

const meterName = "github.com/MrEthical07/hireauth"

// LogReporter runs an SDK meter provider over the exporter and writes every
// collection to a zap logger as a single entry, one field per metric.
type LogReporter struct {
	reader   *sdkmetric.ManualReader
	provider *sdkmetric.MeterProvider
	exporter *Exporter
	logger   *zap.Logger
}

// NewLogReporter reads metrics from engine.
func NewLogReporter(engine *hireauth.Engine, logger *zap.Logger) (*LogReporter, error) {
	if engine == nil {
		return nil, ErrNilSource
	}
	return NewLogReporterFromSource(engine, logger)
}

// NewLogReporterFromSource reads metrics from source.
func NewLogReporterFromSource(source MetricsSource, logger *zap.Logger) (*LogReporter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	exporter, err := NewExporterFromSource(provider.Meter(meterName), source)
	if err != nil {
		_ = provider.Shutdown(context.Background())
		return nil, err
	}
	return &LogReporter{
		reader:   reader,
		provider: provider,
		exporter: exporter,
		logger:   logger.Named("metrics"),
	}, nil
}

// Report collects once and logs the result at info level.
func (r *LogReporter) Report(ctx context.Context) error {
	var rm metricdata.ResourceMetrics
	if err := r.reader.Collect(ctx, &rm); err != nil {
		return err
	}
	var fields []zap.Field
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if f, ok := metricField(m); ok {
				fields = append(fields, f)
			}
		}
	}
	r.logger.Info("metrics", fields...)
	return nil
}

// Run reports every interval until ctx is done.
func (r *LogReporter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.Report(ctx); err != nil && ctx.Err() == nil {
				r.logger.Warn("metrics collection failed", zap.Error(err))
			}
		}
	}
}

// Close unregisters the instruments and shuts the provider down.
func (r *LogReporter) Close(ctx context.Context) error {
	return errors.Join(r.exporter.Close(), r.provider.Shutdown(ctx))
}

func metricField(m metricdata.Metrics) (zap.Field, bool) {
	switch data := m.Data.(type) {
	case metricdata.Sum[int64]:
		if len(data.DataPoints) > 0 {
			return zap.Int64(m.Name, data.DataPoints[0].Value), true
		}
	case metricdata.Gauge[int64]:
		if len(data.DataPoints) > 0 {
			return zap.Int64(m.Name, data.DataPoints[0].Value), true
		}
	case metricdata.Gauge[float64]:
		if len(data.DataPoints) > 0 {
			return zap.Float64(m.Name, data.DataPoints[0].Value), true
		}
	}
	return zap.Field{}, false
}
