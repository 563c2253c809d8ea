package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mkline/tasknest/internal/bus"
	"github.com/mkline/tasknest/pkg/apperr"
	"github.com/mkline/tasknest/pkg/models"
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 1000

	// DefaultCategory is the form sentinel meaning "no project".
	DefaultCategory = "default"
)

// TaskService owns the task business rules: status-transition legality,
// input validation, work-time logging and event emission.
type TaskService struct {
	tasks    TaskRepository
	projects ProjectRepository
	logs     TimeLogRepository
	bus      *bus.Bus

	now func() time.Time
}

func NewTaskService(tasks TaskRepository, projects ProjectRepository, logs TimeLogRepository, b *bus.Bus) *TaskService {
	return &TaskService{tasks: tasks, projects: projects, logs: logs, bus: b, now: time.Now}
}

// TaskForm is the creation input. Category carries either the
// DefaultCategory sentinel or a project id.
type TaskForm struct {
	Title            string
	Description      string
	Priority         models.TaskPriority
	DueDate          *time.Time
	Category         string
	EstimatedMinutes int64
	Recurring        bool
	RecurrenceRule   *string
	SortOrder        int64
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return apperr.New(apperr.Validation, "title is required")
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return apperr.New(apperr.Validation, "title must be at most %d characters", maxTitleLen)
	}
	return nil
}

func validateDescription(description string) error {
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		return apperr.New(apperr.Validation, "description must be at most %d characters", maxDescriptionLen)
	}
	return nil
}

func validatePriority(p models.TaskPriority) error {
	switch p {
	case models.TaskPriorityLow, models.TaskPriorityMedium, models.TaskPriorityHigh:
		return nil
	}
	return apperr.New(apperr.Validation, "unknown priority: %s", p)
}

// CreateTask validates the form, persists the task and publishes a
// creation event.
func (s *TaskService) CreateTask(ctx context.Context, form TaskForm) (*models.TaskView, error) {
	return s.createTask(ctx, form, nil)
}

func (s *TaskService) createTask(ctx context.Context, form TaskForm, parentID *string) (*models.TaskView, error) {
	if err := validateTitle(form.Title); err != nil {
		return nil, err
	}
	if err := validateDescription(form.Description); err != nil {
		return nil, err
	}

	t := &models.Task{
		Title:            form.Title,
		Description:      form.Description,
		Priority:         form.Priority,
		DueDate:          form.DueDate,
		ParentTaskID:     parentID,
		EstimatedMinutes: form.EstimatedMinutes,
		Recurring:        form.Recurring,
		RecurrenceRule:   form.RecurrenceRule,
		SortOrder:        form.SortOrder,
	}
	if form.Category != "" && form.Category != DefaultCategory {
		projectID := form.Category
		t.ProjectID = &projectID
	}

	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, err
	}

	view, err := s.view(ctx, t)
	if err != nil {
		return nil, err
	}
	if err := s.bus.Publish(ctx, models.TaskCreatedEvent{Task: view}); err != nil {
		return nil, err
	}
	return view, nil
}

// view projects a task outward: joined project and derived completion flag.
func (s *TaskService) view(ctx context.Context, t *models.Task) (*models.TaskView, error) {
	v := &models.TaskView{Task: *t, Completed: t.Status == models.TaskStatusCompleted}
	if t.ProjectID != nil {
		p, err := s.projects.GetByID(ctx, *t.ProjectID)
		if err != nil {
			return nil, err
		}
		v.Project = p
	}
	return v, nil
}

// GetTask returns the projected task, or nil if it does not exist.
func (s *TaskService) GetTask(ctx context.Context, id string) (*models.TaskView, error) {
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, nil
	}
	return s.view(ctx, t)
}

// ListTasks returns projected tasks, optionally filtered by status.
func (s *TaskService) ListTasks(ctx context.Context, status *models.TaskStatus) ([]*models.TaskView, error) {
	var tasks []*models.Task
	var err error
	if status != nil {
		tasks, err = s.tasks.ByStatus(ctx, *status)
	} else {
		tasks, err = s.tasks.List(ctx, "sort_order ASC, created_at ASC")
	}
	if err != nil {
		return nil, err
	}

	views := make([]*models.TaskView, 0, len(tasks))
	for _, t := range tasks {
		v, err := s.view(ctx, t)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

func (s *TaskService) getExisting(ctx context.Context, id string) (*models.Task, error) {
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperr.New(apperr.NotFound, "task not found: %s", id)
	}
	return t, nil
}

// UpdateTask applies a partial update and publishes an update event
// carrying the changed fields.
func (s *TaskService) UpdateTask(ctx context.Context, id string, p models.TaskPatch) (*models.TaskView, error) {
	current, err := s.getExisting(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Title != nil {
		if err := validateTitle(*p.Title); err != nil {
			return nil, err
		}
	}
	if p.Description != nil {
		if err := validateDescription(*p.Description); err != nil {
			return nil, err
		}
	}
	if p.Status != nil {
		if err := checkTransition(current.Status, *p.Status); err != nil {
			return nil, err
		}
	}

	updated, err := s.tasks.Update(ctx, id, p)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperr.New(apperr.NotFound, "task not found: %s", id)
	}

	if err := s.bus.Publish(ctx, models.TaskUpdatedEvent{TaskID: id, Changed: taskChanges(p)}); err != nil {
		return nil, err
	}
	return s.view(ctx, updated)
}

// UpdateTaskStatus moves a task along the status state machine,
// maintaining completed_at on entry to and exit from completed.
func (s *TaskService) UpdateTaskStatus(ctx context.Context, id string, to models.TaskStatus) (*models.TaskView, error) {
	current, err := s.getExisting(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(current.Status, to); err != nil {
		return nil, err
	}

	var updated *models.Task
	switch {
	case to == models.TaskStatusCompleted:
		now := s.now()
		updated, err = s.tasks.Update(ctx, id, models.TaskPatch{Status: &to, CompletedAt: &now})
	case current.Status == models.TaskStatusCompleted:
		updated, err = s.tasks.ClearCompletedAt(ctx, id, to)
	default:
		updated, err = s.tasks.Update(ctx, id, models.TaskPatch{Status: &to})
	}
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperr.New(apperr.NotFound, "task not found: %s", id)
	}

	if err := s.bus.Publish(ctx, models.TaskUpdatedEvent{TaskID: id, Changed: map[string]any{"status": to}}); err != nil {
		return nil, err
	}
	return s.view(ctx, updated)
}

func (s *TaskService) UpdateTaskPriority(ctx context.Context, id string, priority models.TaskPriority) (*models.TaskView, error) {
	if err := validatePriority(priority); err != nil {
		return nil, err
	}
	if _, err := s.getExisting(ctx, id); err != nil {
		return nil, err
	}

	updated, err := s.tasks.Update(ctx, id, models.TaskPatch{Priority: &priority})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperr.New(apperr.NotFound, "task not found: %s", id)
	}

	if err := s.bus.Publish(ctx, models.TaskUpdatedEvent{TaskID: id, Changed: map[string]any{"priority": priority}}); err != nil {
		return nil, err
	}
	return s.view(ctx, updated)
}

// CompleteTask is the dedicated completion path: it checks the
// transition, records completed_at and publishes a completion event
// distinct from a generic update.
func (s *TaskService) CompleteTask(ctx context.Context, id string) (*models.TaskView, error) {
	current, err := s.getExisting(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(current.Status, models.TaskStatusCompleted); err != nil {
		return nil, err
	}

	now := s.now()
	status := models.TaskStatusCompleted
	updated, err := s.tasks.Update(ctx, id, models.TaskPatch{Status: &status, CompletedAt: &now})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperr.New(apperr.NotFound, "task not found: %s", id)
	}

	view, err := s.view(ctx, updated)
	if err != nil {
		return nil, err
	}
	if err := s.bus.Publish(ctx, models.TaskCompletedEvent{Task: view}); err != nil {
		return nil, err
	}
	return view, nil
}

// DeleteTask soft-deletes a single task.
func (s *TaskService) DeleteTask(ctx context.Context, id string) error {
	ok, err := s.tasks.SoftDelete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.New(apperr.NotFound, "task not found: %s", id)
	}
	return s.bus.Publish(ctx, models.TaskDeletedEvent{TaskID: id})
}

// BatchDelete soft-deletes each task individually, publishing one
// deletion event per success. It reports whether every deletion
// succeeded; already-applied deletions are not rolled back.
func (s *TaskService) BatchDelete(ctx context.Context, ids []string) (bool, error) {
	if len(ids) == 0 {
		return false, apperr.New(apperr.Validation, "no task ids given")
	}

	allOK := true
	var errs []error
	for _, id := range ids {
		ok, err := s.tasks.SoftDelete(ctx, id)
		if err != nil {
			allOK = false
			errs = append(errs, err)
			continue
		}
		if !ok {
			allOK = false
			continue
		}
		if err := s.bus.Publish(ctx, models.TaskDeletedEvent{TaskID: id}); err != nil {
			allOK = false
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return false, apperr.Wrap(apperr.BusinessRule, errors.Join(errs...), "batch delete failed")
	}
	return allOK, nil
}

// BatchUpdateStatus moves each task individually with full transition
// validation, same error model as BatchDelete.
func (s *TaskService) BatchUpdateStatus(ctx context.Context, ids []string, to models.TaskStatus) (bool, error) {
	if len(ids) == 0 {
		return false, apperr.New(apperr.Validation, "no task ids given")
	}

	allOK := true
	var errs []error
	for _, id := range ids {
		if _, err := s.UpdateTaskStatus(ctx, id, to); err != nil {
			allOK = false
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return false, apperr.Wrap(apperr.BusinessRule, errors.Join(errs...), "batch status update failed")
	}
	return allOK, nil
}

// BatchRestoreCompletedTasks moves completed tasks back to not_started.
func (s *TaskService) BatchRestoreCompletedTasks(ctx context.Context, ids []string) (bool, error) {
	return s.BatchUpdateStatus(ctx, ids, models.TaskStatusNotStarted)
}

// GetSubtasks lists the direct children of a task.
func (s *TaskService) GetSubtasks(ctx context.Context, parentID string) ([]*models.TaskView, error) {
	subtasks, err := s.tasks.Subtasks(ctx, parentID)
	if err != nil {
		return nil, err
	}
	views := make([]*models.TaskView, 0, len(subtasks))
	for _, t := range subtasks {
		v, err := s.view(ctx, t)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

// AddSubtask creates a task parented to an existing one.
func (s *TaskService) AddSubtask(ctx context.Context, parentID string, form TaskForm) (*models.TaskView, error) {
	ok, err := s.tasks.Exists(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.New(apperr.BusinessRule, "parent task not found: %s", parentID)
	}
	return s.createTask(ctx, form, &parentID)
}

// AddDependency records that taskID depends on dependsOnID. A task may
// not depend on itself.
func (s *TaskService) AddDependency(ctx context.Context, taskID, dependsOnID string) (*models.TaskView, error) {
	if taskID == dependsOnID {
		return nil, apperr.New(apperr.Validation, "task cannot depend on itself")
	}
	if _, err := s.getExisting(ctx, taskID); err != nil {
		return nil, err
	}
	ok, err := s.tasks.Exists(ctx, dependsOnID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.New(apperr.BusinessRule, "dependency task not found: %s", dependsOnID)
	}

	updated, err := s.tasks.Update(ctx, taskID, models.TaskPatch{DependsOnTaskID: &dependsOnID})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperr.New(apperr.NotFound, "task not found: %s", taskID)
	}

	if err := s.bus.Publish(ctx, models.TaskUpdatedEvent{TaskID: taskID, Changed: map[string]any{"depends_on_task_id": dependsOnID}}); err != nil {
		return nil, err
	}
	return s.view(ctx, updated)
}

// StartWorkTimer opens a new time log for the task. Only one open log
// per task is allowed.
func (s *TaskService) StartWorkTimer(ctx context.Context, taskID, description string) (*models.TimeLog, error) {
	if _, err := s.getExisting(ctx, taskID); err != nil {
		return nil, err
	}
	active, err := s.logs.ActiveForTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, apperr.New(apperr.Validation, "a work timer is already running for task %s", taskID)
	}

	log := &models.TimeLog{TaskID: taskID, StartTime: s.now(), Description: description}
	if err := s.logs.Create(ctx, log); err != nil {
		return nil, err
	}
	return log, nil
}

// StopWorkTimer closes the open log by stamping its end time.
func (s *TaskService) StopWorkTimer(ctx context.Context, taskID string) (*models.TimeLog, error) {
	active, err := s.logs.ActiveForTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if active == nil {
		return nil, apperr.New(apperr.BusinessRule, "no active work timer for task %s", taskID)
	}

	end := s.now()
	closed, err := s.logs.Update(ctx, active.ID, models.TimeLogPatch{EndTime: &end})
	if err != nil {
		return nil, err
	}
	if closed == nil {
		return nil, apperr.New(apperr.NotFound, "work log not found: %s", active.ID)
	}
	return closed, nil
}

// GetActiveTimer returns the open log for a task, or nil.
func (s *TaskService) GetActiveTimer(ctx context.Context, taskID string) (*models.TimeLog, error) {
	return s.logs.ActiveForTask(ctx, taskID)
}

// AddWorkLog records a closed span of work.
func (s *TaskService) AddWorkLog(ctx context.Context, taskID string, start, end time.Time, description string) (*models.TimeLog, error) {
	if _, err := s.getExisting(ctx, taskID); err != nil {
		return nil, err
	}
	if !end.After(start) {
		return nil, apperr.New(apperr.Validation, "end time must be after start time")
	}

	log := &models.TimeLog{TaskID: taskID, StartTime: start, EndTime: &end, Description: description}
	if err := s.logs.Create(ctx, log); err != nil {
		return nil, err
	}
	return log, nil
}

func (s *TaskService) DeleteWorkLog(ctx context.Context, logID string) error {
	ok, err := s.logs.SoftDelete(ctx, logID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.New(apperr.NotFound, "work log not found: %s", logID)
	}
	return nil
}

// GetWorkLogSummary sums logged minutes for a task, bucketed into
// total, current calendar day and trailing 7 days. Open logs count up
// to now.
func (s *TaskService) GetWorkLogSummary(ctx context.Context, taskID string) (*models.WorkLogSummary, error) {
	if _, err := s.getExisting(ctx, taskID); err != nil {
		return nil, err
	}
	logs, err := s.logs.ForTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekStart := now.AddDate(0, 0, -7)

	var total, today, week time.Duration
	for _, l := range logs {
		d := l.Duration(now)
		total += d
		if !l.StartTime.Before(dayStart) {
			today += d
		}
		if !l.StartTime.Before(weekStart) {
			week += d
		}
	}

	return &models.WorkLogSummary{
		TaskID:       taskID,
		TotalMinutes: int64(total.Minutes()),
		TodayMinutes: int64(today.Minutes()),
		WeekMinutes:  int64(week.Minutes()),
	}, nil
}

func taskChanges(p models.TaskPatch) map[string]any {
	changed := make(map[string]any)
	if p.Title != nil {
		changed["title"] = *p.Title
	}
	if p.Description != nil {
		changed["description"] = *p.Description
	}
	if p.Priority != nil {
		changed["priority"] = *p.Priority
	}
	if p.Status != nil {
		changed["status"] = *p.Status
	}
	if p.DueDate != nil {
		changed["due_date"] = *p.DueDate
	}
	if p.CompletedAt != nil {
		changed["completed_at"] = *p.CompletedAt
	}
	if p.ProjectID != nil {
		changed["project_id"] = *p.ProjectID
	}
	if p.ParentTaskID != nil {
		changed["parent_task_id"] = *p.ParentTaskID
	}
	if p.DependsOnTaskID != nil {
		changed["depends_on_task_id"] = *p.DependsOnTaskID
	}
	if p.EstimatedMinutes != nil {
		changed["estimated_minutes"] = *p.EstimatedMinutes
	}
	if p.ActualMinutes != nil {
		changed["actual_minutes"] = *p.ActualMinutes
	}
	if p.Recurring != nil {
		changed["is_recurring"] = *p.Recurring
	}
	if p.RecurrenceRule != nil {
		changed["recurrence_rule"] = *p.RecurrenceRule
	}
	if p.SortOrder != nil {
		changed["sort_order"] = *p.SortOrder
	}
	return changed
}
