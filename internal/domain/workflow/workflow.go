// Package workflow defines named, project-scoped workflow graphs. Nodes and
// edges are opaque to this package: they are validated as JSON arrays,
// compacted and otherwise stored and returned verbatim.
package workflow

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Strob0t/TaskForge/internal/domain"
)

var emptyArray = json.RawMessage("[]")

// Workflow is a named node/edge graph belonging to a project.
type Workflow struct {
	ID          string          `json:"id"`
	ProjectID   string          `json:"project_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Nodes       json.RawMessage `json:"nodes"`
	Edges       json.RawMessage `json:"edges"`
	IsDefault   bool            `json:"is_default"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CreateRequest holds the fields needed to create a workflow.
type CreateRequest struct {
	ProjectID   string          `json:"project_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Nodes       json.RawMessage `json:"nodes,omitempty"`
	Edges       json.RawMessage `json:"edges,omitempty"`
	IsDefault   bool            `json:"is_default"`
}

// Validate checks required fields and normalizes the graph payloads.
// Missing nodes or edges become an empty array.
func (r *CreateRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.ProjectID == "" {
		return fmt.Errorf("%w: project_id is required", domain.ErrValidation)
	}
	if r.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	var err error
	if r.Nodes, err = normalizeArray("nodes", r.Nodes); err != nil {
		return err
	}
	if r.Edges, err = normalizeArray("edges", r.Edges); err != nil {
		return err
	}
	return nil
}

// UpdateRequest is a partial update. Only non-nil fields are applied.
type UpdateRequest struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Nodes       *json.RawMessage `json:"nodes,omitempty"`
	Edges       *json.RawMessage `json:"edges,omitempty"`
	IsDefault   *bool            `json:"is_default,omitempty"`
}

// Validate checks the values present in the patch.
func (r *UpdateRequest) Validate() error {
	if r.Name != nil {
		trimmed := strings.TrimSpace(*r.Name)
		if trimmed == "" {
			return fmt.Errorf("%w: name must not be empty", domain.ErrValidation)
		}
		r.Name = &trimmed
	}
	if r.Nodes != nil {
		n, err := normalizeArray("nodes", *r.Nodes)
		if err != nil {
			return err
		}
		r.Nodes = &n
	}
	if r.Edges != nil {
		e, err := normalizeArray("edges", *r.Edges)
		if err != nil {
			return err
		}
		r.Edges = &e
	}
	return nil
}

// SetsDefault reports whether the patch marks the workflow as the project
// default. Setting false never affects other workflows.
func (r *UpdateRequest) SetsDefault() bool {
	return r.IsDefault != nil && *r.IsDefault
}

// Apply merges the patch into w. The caller is responsible for updated_at
// and for clearing other defaults when SetsDefault is true.
func (r *UpdateRequest) Apply(w *Workflow) {
	if r.Name != nil {
		w.Name = *r.Name
	}
	if r.Description != nil {
		w.Description = *r.Description
	}
	if r.Nodes != nil {
		w.Nodes = *r.Nodes
	}
	if r.Edges != nil {
		w.Edges = *r.Edges
	}
	if r.IsDefault != nil {
		w.IsDefault = *r.IsDefault
	}
}

// normalizeArray returns raw compacted, or an empty array when raw is absent
// or JSON null. Anything other than an array is a validation error.
func normalizeArray(field string, raw json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return append(json.RawMessage(nil), emptyArray...), nil
	}
	if trimmed[0] != '[' || !json.Valid(trimmed) {
		return nil, fmt.Errorf("%w: %s must be a JSON array", domain.ErrValidation, field)
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrValidation, field, err)
	}
	return json.RawMessage(buf.Bytes()), nil
}
