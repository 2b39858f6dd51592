package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "taskforge"

// Metrics holds all TaskForge metric instruments.
type Metrics struct {
	TasksCreated      metric.Int64Counter
	StatusChanges     metric.Int64Counter
	GateRejections    metric.Int64Counter
	WorkflowDefaults  metric.Int64Counter
	EventsDropped     metric.Int64Counter
	StoreCallDuration metric.Float64Histogram
}

// NewMetrics creates all metric instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.TasksCreated, err = meter.Int64Counter("taskforge.tasks.created",
		metric.WithDescription("Number of tasks created"))
	if err != nil {
		return nil, err
	}

	m.StatusChanges, err = meter.Int64Counter("taskforge.tasks.status_changes",
		metric.WithDescription("Number of task status changes by target status"))
	if err != nil {
		return nil, err
	}

	m.GateRejections, err = meter.Int64Counter("taskforge.tasks.gate_rejections",
		metric.WithDescription("Assignments rejected because no tech lead was active"))
	if err != nil {
		return nil, err
	}

	m.WorkflowDefaults, err = meter.Int64Counter("taskforge.workflows.default_changes",
		metric.WithDescription("Number of times a project default workflow changed"))
	if err != nil {
		return nil, err
	}

	m.EventsDropped, err = meter.Int64Counter("taskforge.events.dropped",
		metric.WithDescription("Change events that could not be published to the queue"))
	if err != nil {
		return nil, err
	}

	m.StoreCallDuration, err = meter.Float64Histogram("taskforge.store.call_duration_seconds",
		metric.WithDescription("Duration of mutating store calls in seconds"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordStatusChange counts a transition from -> to.
func (m *Metrics) RecordStatusChange(ctx context.Context, from, to string) {
	if m == nil {
		return
	}
	m.StatusChanges.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status.from", from),
		attribute.String("status.to", to),
	))
}

// RecordStoreCall observes the duration of a named store operation.
func (m *Metrics) RecordStoreCall(ctx context.Context, op string, seconds float64, err error) {
	if m == nil {
		return
	}
	m.StoreCallDuration.Record(ctx, seconds, metric.WithAttributes(
		attribute.String("store.op", op),
		attribute.Bool("store.error", err != nil),
	))
}

// Inc adds one to c when metrics are enabled.
func (m *Metrics) Inc(ctx context.Context, c metric.Int64Counter, attrs ...attribute.KeyValue) {
	if m == nil || c == nil {
		return
	}
	c.Add(ctx, 1, metric.WithAttributes(attrs...))
}
