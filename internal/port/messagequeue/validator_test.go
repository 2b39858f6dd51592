package messagequeue

import (
	"strings"
	"testing"

	"github.com/Strob0t/TaskForge/internal/domain/event"
)

func TestValidateTaskCreated(t *testing.T) {
	data := []byte(`{"type":"task.created","entity_id":"t1","project_id":"p1","payload":{"title":"Fix"}}`)
	if err := Validate(SubjectTaskCreated, data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateStatusChangedNeedsStatus(t *testing.T) {
	data := []byte(`{"type":"task.status_changed","entity_id":"t1","project_id":"p1"}`)
	err := Validate(SubjectTaskStatusChanged, data)
	if err == nil {
		t.Fatal("expected error for missing status")
	}
	if !strings.Contains(err.Error(), "status is required") {
		t.Fatalf("unexpected error: %v", err)
	}

	ok := []byte(`{"type":"task.status_changed","entity_id":"t1","project_id":"p1","status":"done","prev_status":"review"}`)
	if err := Validate(SubjectTaskStatusChanged, ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateMissingIdentity(t *testing.T) {
	data := []byte(`{"type":"workflow.deleted","entity_id":"w1"}`)
	if err := Validate(SubjectWorkflowDeleted, data); err == nil {
		t.Fatal("expected error for missing project_id")
	}
}

func TestValidateWrongFieldType(t *testing.T) {
	data := []byte(`{"entity_id":42,"project_id":"p1"}`)
	err := Validate(SubjectTaskUpdated, data)
	if err == nil {
		t.Fatal("expected error for wrong field type")
	}
	if !strings.Contains(err.Error(), "schema validation failed") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateUnknownSubject(t *testing.T) {
	// Subjects outside the change streams only need valid JSON.
	if err := Validate("agents.heartbeat", []byte(`{"foo":"bar"}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateInvalidJSON(t *testing.T) {
	err := Validate(SubjectTaskCreated, []byte(`{not valid json`))
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
	if !strings.Contains(err.Error(), "invalid JSON") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSubjectForCoversEveryEventType(t *testing.T) {
	types := []event.Type{
		event.TypeTaskCreated, event.TypeTaskUpdated, event.TypeTaskStatusChanged, event.TypeTaskDeleted,
		event.TypeWorkflowCreated, event.TypeWorkflowUpdated, event.TypeWorkflowDeleted, event.TypeWorkflowDefaultChanged,
	}
	for _, typ := range types {
		subject, ok := SubjectFor(typ)
		if !ok {
			t.Fatalf("no subject for %s", typ)
		}
		if !strings.HasPrefix(subject, "tasks.") && !strings.HasPrefix(subject, "workflows.") {
			t.Fatalf("subject %q for %s is outside the stream", subject, typ)
		}
	}
	if _, ok := SubjectFor("bogus"); ok {
		t.Fatal("expected no subject for unknown type")
	}
}
