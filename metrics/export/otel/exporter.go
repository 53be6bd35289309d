package otel

import (
	"context"
	"errors"
	"fmt"

	goToken "github.com/MrEthical07/goToken"
	"go.opentelemetry.io/otel/metric"
)

var (
	ErrNilMeter  = errors.New("nil meter")
	ErrNilSource = errors.New("nil metrics source")
)

type metricsSource interface {
	Snapshot() goToken.MetricsSnapshot
}

var counterHelp = map[goToken.MetricID]string{
	goToken.MetricTokenIssued:       "Tokens produced by terminal sign operations.",
	goToken.MetricTokenParsed:       "Raw tokens parsed successfully.",
	goToken.MetricParseFailure:      "Raw tokens rejected as structurally malformed.",
	goToken.MetricValidationSuccess: "Validation pipeline runs that passed every stage.",
	goToken.MetricValidationFailure: "Validation pipeline runs stopped by a failing stage.",
	goToken.MetricSignatureVerify:   "Signature engine invocations during validation.",
	goToken.MetricCacheHit:          "Token and result cache hits.",
	goToken.MetricCacheMiss:         "Token and result cache misses.",
	goToken.MetricCacheEviction:     "Cache entries removed by capacity eviction.",
	goToken.MetricRevocation:        "Tokens recorded as revoked.",
}

type observedCounter struct {
	id         goToken.MetricID
	instrument metric.Int64ObservableCounter
}

// OTelExporter publishes every defined counter as an Int64ObservableCounter
// read from the source's snapshot on each collect.
type OTelExporter struct {
	source       metricsSource
	registration metric.Registration
	counters     []observedCounter
}

// NewOTelExporter registers observable counters for m on meter.
func NewOTelExporter(meter metric.Meter, m *goToken.Metrics) (*OTelExporter, error) {
	if m == nil {
		return nil, ErrNilSource
	}
	return NewOTelExporterFromSource(meter, m)
}

// NewOTelExporterFromSource is NewOTelExporter for any snapshot source.
func NewOTelExporterFromSource(meter metric.Meter, source metricsSource) (*OTelExporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	exporter := &OTelExporter{
		source:   source,
		counters: make([]observedCounter, 0, goToken.MetricCount),
	}

	observables := make([]metric.Observable, 0, goToken.MetricCount)

	for i := 0; i < goToken.MetricCount; i++ {
		id := goToken.MetricID(i)
		name := goToken.MetricName(id)
		ins, err := meter.Int64ObservableCounter(name, metric.WithDescription(counterHelp[id]))
		if err != nil {
			return nil, fmt.Errorf("create observable counter %s: %w", name, err)
		}
		exporter.counters = append(exporter.counters, observedCounter{id: id, instrument: ins})
		observables = append(observables, ins)
	}

	registration, err := meter.RegisterCallback(func(_ context.Context, observer metric.Observer) error {
		snapshot := exporter.source.Snapshot()
		for _, c := range exporter.counters {
			observer.ObserveInt64(c.instrument, int64(snapshot.Counters[c.id]))
		}
		return nil
	}, observables...)
	if err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}

	exporter.registration = registration
	return exporter, nil
}

func (e *OTelExporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
