package main

import (
	"context"
	"errors"
	"testing"

	"github.com/Strob0t/TaskForge/internal/config"
	"github.com/Strob0t/TaskForge/internal/domain/event"
	"github.com/Strob0t/TaskForge/internal/port/messagequeue"
)

type recordingQueue struct {
	subjects []string
	closed   bool
}

func (q *recordingQueue) Publish(_ context.Context, subject string, _ []byte) error {
	q.subjects = append(q.subjects, subject)
	return nil
}

func (q *recordingQueue) Subscribe(context.Context, string, messagequeue.Handler) (func(), error) {
	return func() {}, nil
}

func (q *recordingQueue) Drain() error      { return nil }
func (q *recordingQueue) Close() error      { q.closed = true; return nil }
func (q *recordingQueue) IsConnected() bool { return !q.closed }

func TestOperatorPublisherSendsToQueue(t *testing.T) {
	q := &recordingQueue{}
	dial := func(_ context.Context, cfg config.NATS) (messagequeue.Queue, error) {
		if cfg.URL != "nats://localhost:4222" {
			t.Errorf("dialed %q", cfg.URL)
		}
		return q, nil
	}

	events, cleanup, err := operatorPublisher(context.Background(), config.NATS{URL: "nats://localhost:4222"}, dial)
	if err != nil {
		t.Fatal(err)
	}
	events.Publish(context.Background(), event.Change{
		Type:      event.TypeWorkflowDefaultChanged,
		EntityID:  "w1",
		ProjectID: "p1",
		Payload:   map[string]any{"id": "w1", "project_id": "p1", "is_default": true},
	})
	cleanup()

	if len(q.subjects) != 1 || q.subjects[0] != messagequeue.SubjectWorkflowDefaultChanged {
		t.Errorf("published subjects = %v", q.subjects)
	}
	if !q.closed {
		t.Error("cleanup did not close the queue")
	}
}

func TestOperatorPublisherWithoutNATS(t *testing.T) {
	dial := func(context.Context, config.NATS) (messagequeue.Queue, error) {
		t.Error("dialed with empty url")
		return nil, errors.New("unexpected dial")
	}

	events, cleanup, err := operatorPublisher(context.Background(), config.NATS{}, dial)
	if err != nil {
		t.Fatal(err)
	}
	defer cleanup()
	events.Publish(context.Background(), event.Change{Type: event.TypeWorkflowDefaultChanged, EntityID: "w1", ProjectID: "p1"})
}

func TestOperatorPublisherDialError(t *testing.T) {
	dial := func(context.Context, config.NATS) (messagequeue.Queue, error) {
		return nil, errors.New("connection refused")
	}

	if _, _, err := operatorPublisher(context.Background(), config.NATS{URL: "nats://down:4222"}, dial); err == nil {
		t.Fatal("expected dial error")
	}
}
