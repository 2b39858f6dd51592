package messagequeue

import "github.com/Strob0t/TaskForge/internal/domain/event"

// subjectByType maps a change event type to its queue subject.
var subjectByType = map[event.Type]string{
	event.TypeTaskCreated:            SubjectTaskCreated,
	event.TypeTaskUpdated:            SubjectTaskUpdated,
	event.TypeTaskStatusChanged:      SubjectTaskStatusChanged,
	event.TypeTaskDeleted:            SubjectTaskDeleted,
	event.TypeWorkflowCreated:        SubjectWorkflowCreated,
	event.TypeWorkflowUpdated:        SubjectWorkflowUpdated,
	event.TypeWorkflowDeleted:        SubjectWorkflowDeleted,
	event.TypeWorkflowDefaultChanged: SubjectWorkflowDefaultChanged,
}

// SubjectFor returns the subject a change event of type t is published on.
func SubjectFor(t event.Type) (string, bool) {
	s, ok := subjectByType[t]
	return s, ok
}

// ChangePayload is the minimum schema every change message must satisfy.
type ChangePayload struct {
	Type       string `json:"type"`
	EntityID   string `json:"entity_id"`
	ProjectID  string `json:"project_id"`
	Status     string `json:"status"`
	PrevStatus string `json:"prev_status"`
}
