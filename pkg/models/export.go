package models

import "time"

// ExportFilters narrows the set of tasks included in an export. A nil
// or zero filter field is not applied.
type ExportFilters struct {
	TaskIDs       []string       `json:"taskIds,omitempty"`
	CompletedFrom *time.Time     `json:"completedFrom,omitempty"`
	CompletedTo   *time.Time     `json:"completedTo,omitempty"`
	ProjectIDs    []string       `json:"projectIds,omitempty"`
	Priorities    []TaskPriority `json:"priorities,omitempty"`
	Text          string         `json:"text,omitempty"`
}

// ExportedTask is the flattened export record. The project name is
// substituted for the project id.
type ExportedTask struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Priority         string     `json:"priority"`
	Status           string     `json:"status"`
	Project          string     `json:"project,omitempty"`
	DueDate          *time.Time `json:"dueDate,omitempty"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
	EstimatedMinutes int64      `json:"estimatedMinutes"`
	ActualMinutes    int64      `json:"actualMinutes"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// TaskExport is the export payload. Field names are part of the
// external format and must not change.
type TaskExport struct {
	ExportTime time.Time      `json:"exportTime"`
	TotalTasks int            `json:"totalTasks"`
	Filters    ExportFilters  `json:"filters"`
	Tasks      []ExportedTask `json:"tasks"`
}
