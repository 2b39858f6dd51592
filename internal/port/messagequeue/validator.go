package messagequeue

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Validate checks whether data is valid JSON conforming to the change
// schema. Subjects outside the task and workflow streams only need to be
// valid JSON.
func Validate(subject string, data []byte) error {
	if !json.Valid(data) {
		return fmt.Errorf("invalid JSON on subject %s", subject)
	}
	if !strings.HasPrefix(subject, "tasks.") && !strings.HasPrefix(subject, "workflows.") {
		return nil
	}

	var p ChangePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("schema validation failed for %s: %w", subject, err)
	}
	if p.EntityID == "" || p.ProjectID == "" {
		return fmt.Errorf("schema validation failed for %s: entity_id and project_id are required", subject)
	}
	if subject == SubjectTaskStatusChanged && p.Status == "" {
		return fmt.Errorf("schema validation failed for %s: status is required", subject)
	}
	return nil
}
