package services

import (
	"sort"

	"github.com/shahpalash10/chore-Mate/internal/constants"
	model "github.com/shahpalash10/chore-Mate/internal/models"
)

// View projections are pure: they derive read-only slices of the task
// collection for a given viewer and never touch shared state.

// MyTasks returns the tasks assigned to userID.
func MyTasks(tasks []model.Task, userID string) []model.Task {
	var out []model.Task
	for _, t := range tasks {
		if t.AssignedToID != nil && *t.AssignedToID == userID {
			out = append(out, t)
		}
	}
	return out
}

// PendingCount is the badge number: the viewer's incomplete tasks.
func PendingCount(tasks []model.Task, userID string) int {
	count := 0
	for _, t := range MyTasks(tasks, userID) {
		if !t.IsCompleted {
			count++
		}
	}
	return count
}

// VisibleTasks applies role visibility: admins see everything, employees
// see only their own incomplete tasks. A nil viewer sees nothing.
func VisibleTasks(tasks []model.Task, viewer *model.User) []model.Task {
	if viewer == nil {
		return nil
	}
	if viewer.IsAdmin() {
		out := make([]model.Task, len(tasks))
		copy(out, tasks)
		return out
	}

	var out []model.Task
	for _, t := range MyTasks(tasks, viewer.ID) {
		if !t.IsCompleted {
			out = append(out, t)
		}
	}
	return out
}

// TaskGroup is one due-date bucket of the feed.
type TaskGroup struct {
	Date  string       `json:"date"`
	Tasks []model.Task `json:"tasks"`
}

// GroupTasks partitions tasks by due date. Tasks without one land under the
// NoDateKey sentinel. Groups are ordered by plain string comparison of the
// keys, which puts the sentinel after every ISO date.
func GroupTasks(tasks []model.Task) []TaskGroup {
	buckets := make(map[string][]model.Task)
	for _, t := range tasks {
		key := t.DueDate
		if key == "" {
			key = constants.NoDateKey
		}
		buckets[key] = append(buckets[key], t)
	}

	keys := make([]string, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	groups := make([]TaskGroup, 0, len(keys))
	for _, key := range keys {
		groups = append(groups, TaskGroup{Date: key, Tasks: buckets[key]})
	}
	return groups
}
