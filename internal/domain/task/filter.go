package task

import (
	"fmt"

	"github.com/Strob0t/TaskForge/internal/domain"
)

const (
	DefaultLimit = 50
	MaxLimit     = 100
)

// ListFilter narrows a task listing. Empty string fields match everything.
type ListFilter struct {
	ProjectID       string
	Status          Status
	IncludeSubtasks bool
	Limit           int
	Offset          int
}

// Normalize validates the status filter and clamps pagination into range
// instead of rejecting it: limit into [1, MaxLimit] (0 means DefaultLimit),
// offset to >= 0.
func (f *ListFilter) Normalize() error {
	if f.Status != "" && !f.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", domain.ErrValidation, f.Status)
	}
	switch {
	case f.Limit == 0:
		f.Limit = DefaultLimit
	case f.Limit < 1:
		f.Limit = 1
	case f.Limit > MaxLimit:
		f.Limit = MaxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return nil
}
