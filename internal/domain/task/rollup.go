package task

// SubtaskCounts is the rollup of the direct subtasks of one parent.
type SubtaskCounts struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
}

// IDs returns the ids of tasks in order.
func IDs(tasks []Task) []string {
	ids := make([]string, len(tasks))
	for i := range tasks {
		ids[i] = tasks[i].ID
	}
	return ids
}

// CountByParent groups subtasks by parent id. Tasks without a parent are
// skipped.
func CountByParent(subtasks []Task) map[string]SubtaskCounts {
	counts := make(map[string]SubtaskCounts)
	for i := range subtasks {
		parent := subtasks[i].ParentTaskID
		if parent == "" {
			continue
		}
		c := counts[parent]
		c.Total++
		if subtasks[i].Status.Completed() {
			c.Completed++
		}
		counts[parent] = c
	}
	return counts
}

// ApplyRollup sets SubtaskCount and CompletedSubtaskCount on every task in
// the page. Tasks missing from counts get zero.
func ApplyRollup(tasks []Task, counts map[string]SubtaskCounts) {
	for i := range tasks {
		c := counts[tasks[i].ID]
		tasks[i].SubtaskCount = c.Total
		tasks[i].CompletedSubtaskCount = c.Completed
	}
}
