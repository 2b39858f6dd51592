package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "taskforge"

// StartTaskSpan starts a span for a task operation.
func StartTaskSpan(ctx context.Context, op, taskID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "task."+op,
		trace.WithAttributes(attribute.String("task.id", taskID)),
	)
}

// StartWorkflowSpan starts a span for a workflow operation.
func StartWorkflowSpan(ctx context.Context, op, workflowID, projectID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "workflow."+op,
		trace.WithAttributes(
			attribute.String("workflow.id", workflowID),
			attribute.String("project.id", projectID),
		),
	)
}

// EndSpan records err on span, if any, and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
