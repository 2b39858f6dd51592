package task

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Strob0t/TaskForge/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func TestCreateRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateRequest
		wantErr bool
		wantPri Priority
	}{
		{"defaults priority", CreateRequest{ProjectID: "p1", Title: "Fix"}, false, PriorityMedium},
		{"keeps priority", CreateRequest{ProjectID: "p1", Title: "Fix", Priority: PriorityUrgent}, false, PriorityUrgent},
		{"missing project", CreateRequest{Title: "Fix"}, true, ""},
		{"missing title", CreateRequest{ProjectID: "p1"}, true, ""},
		{"blank title", CreateRequest{ProjectID: "p1", Title: "   "}, true, ""},
		{"bad priority", CreateRequest{ProjectID: "p1", Title: "Fix", Priority: "whenever"}, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, domain.ErrValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPri, tt.req.Priority)
		})
	}
}

func TestUpdateRequestValidate(t *testing.T) {
	bad := []UpdateRequest{
		{Title: ptr("")},
		{Title: ptr("  ")},
		{Priority: ptr(Priority("whenever"))},
		{Status: ptr(Status("archived"))},
	}
	for _, req := range bad {
		err := req.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrValidation)
	}

	ok := UpdateRequest{Title: ptr("  Trimmed  "), Status: ptr(StatusReview)}
	require.NoError(t, ok.Validate())
	assert.Equal(t, "Trimmed", *ok.Title)
}

func TestApplyStampsCompletedAtOnDone(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tk := Task{Status: StatusInProgress}

	patch := UpdateRequest{Status: ptr(StatusDone)}
	patch.Apply(&tk, now)

	require.NotNil(t, tk.CompletedAt)
	assert.Equal(t, now, *tk.CompletedAt)
	assert.Equal(t, StatusDone, tk.Status)
}

func TestApplyStampsCompletedAtOnCancel(t *testing.T) {
	now := time.Now()
	tk := Task{Status: StatusCreated}

	patch := UpdateRequest{Status: ptr(StatusCancelled)}
	patch.Apply(&tk, now)

	require.NotNil(t, tk.CompletedAt)
}

func TestApplyNeverClearsCompletedAt(t *testing.T) {
	done := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	tk := Task{Status: StatusDone, CompletedAt: &done}

	reopen := UpdateRequest{Status: ptr(StatusInProgress)}
	reopen.Apply(&tk, done.Add(time.Hour))
	require.NotNil(t, tk.CompletedAt)
	assert.Equal(t, done, *tk.CompletedAt)

	title := UpdateRequest{Title: ptr("renamed")}
	title.Apply(&tk, done.Add(2*time.Hour))
	assert.Equal(t, done, *tk.CompletedAt)
	assert.Equal(t, "renamed", tk.Title)
}

func TestApplyLeavesAbsentFields(t *testing.T) {
	tk := Task{Title: "keep", Description: "keep", Priority: PriorityHigh, Category: "infra"}
	patch := UpdateRequest{Result: ptr("ok")}
	patch.Apply(&tk, time.Now())

	assert.Equal(t, "keep", tk.Title)
	assert.Equal(t, "keep", tk.Description)
	assert.Equal(t, PriorityHigh, tk.Priority)
	assert.Equal(t, "infra", tk.Category)
	assert.Equal(t, "ok", tk.Result)
	assert.Nil(t, tk.CompletedAt)
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusCreated, StatusAssigned, true},
		{StatusAssigned, StatusInProgress, true},
		{StatusInProgress, StatusReview, true},
		{StatusReview, StatusDone, true},
		{StatusReview, StatusChangesRequested, true},
		{StatusChangesRequested, StatusInProgress, true},
		{StatusInProgress, StatusCancelled, true},
		{StatusCreated, StatusDone, false},
		{StatusDone, StatusInProgress, false},
		{StatusCancelled, StatusCreated, false},
		{StatusReview, StatusReview, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, StatusDone.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusReview.Terminal())
	assert.Empty(t, NextStatuses(StatusDone))
	assert.Contains(t, NextStatuses(StatusCreated), StatusCancelled)
}

func TestListFilterNormalize(t *testing.T) {
	tests := []struct {
		name                  string
		in                    ListFilter
		wantLimit, wantOffset int
	}{
		{"defaults", ListFilter{}, DefaultLimit, 0},
		{"negative limit", ListFilter{Limit: -5}, 1, 0},
		{"huge limit", ListFilter{Limit: 1000}, MaxLimit, 0},
		{"negative offset", ListFilter{Limit: 10, Offset: -3}, 10, 0},
		{"in range", ListFilter{Limit: 20, Offset: 40}, 20, 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := tt.in
			require.NoError(t, f.Normalize())
			assert.Equal(t, tt.wantLimit, f.Limit)
			assert.Equal(t, tt.wantOffset, f.Offset)
		})
	}

	bad := ListFilter{Status: "archived"}
	assert.ErrorIs(t, bad.Normalize(), domain.ErrValidation)
}

func TestRollup(t *testing.T) {
	page := []Task{{ID: "t1"}, {ID: "t4"}}
	subs := []Task{
		{ID: "t2", ParentTaskID: "t1", Status: StatusCreated},
		{ID: "t3", ParentTaskID: "t1", Status: StatusDone},
		{ID: "t5", ParentTaskID: "t1", Status: StatusCancelled},
		{ID: "t6", ParentTaskID: "other", Status: StatusDone},
		{ID: "t7", Status: StatusDone},
	}

	ApplyRollup(page, CountByParent(subs))

	assert.Equal(t, 3, page[0].SubtaskCount)
	assert.Equal(t, 2, page[0].CompletedSubtaskCount)
	assert.Equal(t, 0, page[1].SubtaskCount)
	assert.Equal(t, 0, page[1].CompletedSubtaskCount)
	assert.Equal(t, []string{"t1", "t4"}, IDs(page))
}
