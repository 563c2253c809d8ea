package db

import (
	"context"

	"github.com/mkline/tasknest/pkg/models"
)

// TaskStore is the task data accessor.
type TaskStore struct {
	*store[models.Task]
}

func NewTaskStore(database *DB) *TaskStore {
	return &TaskStore{newStore(database, mapping[models.Task]{
		table: "tasks",
		columns: []string{
			"title", "description", "priority", "status", "due_date", "completed_at",
			"project_id", "parent_task_id", "depends_on_task_id",
			"estimated_minutes", "actual_minutes", "is_recurring", "recurrence_rule", "sort_order",
		},
		values: func(t *models.Task) []any {
			return []any{
				t.Title, t.Description, t.Priority, t.Status, t.DueDate, t.CompletedAt,
				t.ProjectID, t.ParentTaskID, t.DependsOnTaskID,
				t.EstimatedMinutes, t.ActualMinutes, boolInt(t.Recurring), t.RecurrenceRule, t.SortOrder,
			}
		},
		scan:   scanTask,
		record: func(t *models.Task) *models.Record { return &t.Record },
	})}
}

func scanTask(r rowScanner) (*models.Task, error) {
	t := &models.Task{}
	var recurring, deleted int
	dest := []any{
		&t.ID, &t.Title, &t.Description, &t.Priority, &t.Status, &t.DueDate, &t.CompletedAt,
		&t.ProjectID, &t.ParentTaskID, &t.DependsOnTaskID,
		&t.EstimatedMinutes, &t.ActualMinutes, &recurring, &t.RecurrenceRule, &t.SortOrder,
	}
	dest = append(dest, recordDest(&t.Record, &deleted)...)
	if err := r.Scan(dest...); err != nil {
		return nil, err
	}
	t.Recurring = recurring == 1
	t.Deleted = deleted == 1
	return t, nil
}

// Create inserts a new task, defaulting status and priority when unset.
func (s *TaskStore) Create(ctx context.Context, t *models.Task) error {
	applyTaskDefaults(t)
	return s.create(ctx, s.db.DB, t)
}

func (s *TaskStore) CreateBatch(ctx context.Context, tasks []*models.Task) error {
	for _, t := range tasks {
		applyTaskDefaults(t)
	}
	return s.store.CreateBatch(ctx, tasks)
}

func applyTaskDefaults(t *models.Task) {
	if t.Status == "" {
		t.Status = models.TaskStatusNotStarted
	}
	if t.Priority == "" {
		t.Priority = models.TaskPriorityMedium
	}
}

// Update applies the patch. Returns nil, nil when the task is missing or
// soft-deleted.
func (s *TaskStore) Update(ctx context.Context, id string, p models.TaskPatch) (*models.Task, error) {
	return s.update(ctx, s.db.DB, id, taskSets(p))
}

// TaskBatchUpdate pairs a task id with the patch to apply to it.
type TaskBatchUpdate struct {
	ID    string
	Patch models.TaskPatch
}

// UpdateBatch applies all patches in one transaction; a missing task
// rolls back the whole batch.
func (s *TaskStore) UpdateBatch(ctx context.Context, ups []TaskBatchUpdate) error {
	batch := make([]batchUpdate, len(ups))
	for i, up := range ups {
		batch[i] = batchUpdate{id: up.ID, sets: taskSets(up.Patch)}
	}
	return s.updateBatch(ctx, batch)
}

func taskSets(p models.TaskPatch) []assign {
	var sets []assign
	if p.Title != nil {
		sets = append(sets, set("title", *p.Title))
	}
	if p.Description != nil {
		sets = append(sets, set("description", *p.Description))
	}
	if p.Priority != nil {
		sets = append(sets, set("priority", *p.Priority))
	}
	if p.Status != nil {
		sets = append(sets, set("status", *p.Status))
	}
	if p.DueDate != nil {
		sets = append(sets, set("due_date", *p.DueDate))
	}
	if p.CompletedAt != nil {
		sets = append(sets, set("completed_at", *p.CompletedAt))
	}
	if p.ProjectID != nil {
		sets = append(sets, set("project_id", *p.ProjectID))
	}
	if p.ParentTaskID != nil {
		sets = append(sets, set("parent_task_id", *p.ParentTaskID))
	}
	if p.DependsOnTaskID != nil {
		sets = append(sets, set("depends_on_task_id", *p.DependsOnTaskID))
	}
	if p.EstimatedMinutes != nil {
		sets = append(sets, set("estimated_minutes", *p.EstimatedMinutes))
	}
	if p.ActualMinutes != nil {
		sets = append(sets, set("actual_minutes", *p.ActualMinutes))
	}
	if p.Recurring != nil {
		sets = append(sets, set("is_recurring", boolInt(*p.Recurring)))
	}
	if p.RecurrenceRule != nil {
		sets = append(sets, set("recurrence_rule", *p.RecurrenceRule))
	}
	if p.SortOrder != nil {
		sets = append(sets, set("sort_order", *p.SortOrder))
	}
	return sets
}

// ClearCompletedAt nulls out the completion timestamp, used when a task
// leaves the completed status.
func (s *TaskStore) ClearCompletedAt(ctx context.Context, id string, status models.TaskStatus) (*models.Task, error) {
	return s.update(ctx, s.db.DB, id, []assign{set("status", status), set("completed_at", nil)})
}

func (s *TaskStore) ByStatus(ctx context.Context, status models.TaskStatus) ([]*models.Task, error) {
	return s.find(ctx, "status = ?", "sort_order ASC, created_at ASC", status)
}

func (s *TaskStore) ByProject(ctx context.Context, projectID string) ([]*models.Task, error) {
	return s.find(ctx, "project_id = ?", "sort_order ASC, created_at ASC", projectID)
}

// Subtasks returns the direct children of a task.
func (s *TaskStore) Subtasks(ctx context.Context, parentID string) ([]*models.Task, error) {
	return s.find(ctx, "parent_task_id = ?", "sort_order ASC, created_at ASC", parentID)
}

// Dependents returns tasks that declare a dependency on the given task.
func (s *TaskStore) Dependents(ctx context.Context, taskID string) ([]*models.Task, error) {
	return s.find(ctx, "depends_on_task_id = ?", "sort_order ASC, created_at ASC", taskID)
}
