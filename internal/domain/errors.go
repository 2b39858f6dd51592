// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrValidation indicates the request is missing a required field or carries
// an invalid value. No mutation is performed.
var ErrValidation = errors.New("validation failed")

// ErrNoTechLeadAvailable is returned when a task is moved to "assigned" while
// no active agent with the tech_lead role exists.
var ErrNoTechLeadAvailable = errors.New("no active tech lead agent available")

// ErrInvalidTransition is returned in strict mode when a status change is not
// an edge of the task state machine.
var ErrInvalidTransition = errors.New("invalid status transition")
