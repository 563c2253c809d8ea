package models

import "time"

type TaskStatus string

const (
	TaskStatusNotStarted TaskStatus = "not_started"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
	TaskStatusPaused     TaskStatus = "paused"
	TaskStatusPostponed  TaskStatus = "postponed"
	TaskStatusWaiting    TaskStatus = "waiting"
)

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

type Task struct {
	Record
	Title            string       `json:"title"`
	Description      string       `json:"description"`
	Priority         TaskPriority `json:"priority"`
	Status           TaskStatus   `json:"status"`
	DueDate          *time.Time   `json:"due_date,omitempty"`
	CompletedAt      *time.Time   `json:"completed_at,omitempty"`
	ProjectID        *string      `json:"project_id,omitempty"`
	ParentTaskID     *string      `json:"parent_task_id,omitempty"`
	DependsOnTaskID  *string      `json:"depends_on_task_id,omitempty"`
	EstimatedMinutes int64        `json:"estimated_minutes"`
	ActualMinutes    int64        `json:"actual_minutes"`
	Recurring        bool         `json:"is_recurring"`
	RecurrenceRule   *string      `json:"recurrence_rule,omitempty"`
	SortOrder        int64        `json:"sort_order"`
}

// TaskPatch is a partial update; nil fields are left untouched.
type TaskPatch struct {
	Title            *string
	Description      *string
	Priority         *TaskPriority
	Status           *TaskStatus
	DueDate          *time.Time
	CompletedAt      *time.Time
	ProjectID        *string
	ParentTaskID     *string
	DependsOnTaskID  *string
	EstimatedMinutes *int64
	ActualMinutes    *int64
	Recurring        *bool
	RecurrenceRule   *string
	SortOrder        *int64
}

// TaskView is the outward projection of a task: the joined project (if any)
// and a derived completion flag.
type TaskView struct {
	Task
	Project   *Project `json:"project,omitempty"`
	Completed bool     `json:"completed"`
}

// WorkLogSummary aggregates logged work time for one task.
type WorkLogSummary struct {
	TaskID       string `json:"task_id"`
	TotalMinutes int64  `json:"total_minutes"`
	TodayMinutes int64  `json:"today_minutes"`
	WeekMinutes  int64  `json:"week_minutes"`
}
