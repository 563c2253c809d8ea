package db

import (
	"context"
	"testing"
	"time"

	"github.com/mkline/tasknest/pkg/models"
)

func TestTaskCRUD(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	store := NewTaskStore(db)

	// 1. Create with defaults
	task := &models.Task{Title: "Write report"}
	if err := store.Create(ctx, task); err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}
	if task.Status != models.TaskStatusNotStarted {
		t.Errorf("Expected status not_started, got %s", task.Status)
	}
	if task.Priority != models.TaskPriorityMedium {
		t.Errorf("Expected priority medium, got %s", task.Priority)
	}

	// 2. Get
	fetched, err := store.GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("Failed to get task: %v", err)
	}
	if fetched == nil {
		t.Fatalf("Task not found")
	}
	if fetched.Title != "Write report" {
		t.Errorf("Expected title Write report, got %s", fetched.Title)
	}

	// 3. Patch update only touches present fields
	newTitle := "Write the report"
	high := models.TaskPriorityHigh
	updated, err := store.Update(ctx, task.ID, models.TaskPatch{Title: &newTitle, Priority: &high})
	if err != nil {
		t.Fatalf("Failed to update task: %v", err)
	}
	if updated.Title != newTitle {
		t.Errorf("Expected title %s, got %s", newTitle, updated.Title)
	}
	if updated.Priority != models.TaskPriorityHigh {
		t.Errorf("Expected priority high, got %s", updated.Priority)
	}
	if updated.Status != models.TaskStatusNotStarted {
		t.Errorf("Expected status untouched, got %s", updated.Status)
	}
	if updated.LocalVersion != 2 {
		t.Errorf("Expected local version 2, got %d", updated.LocalVersion)
	}

	// 4. Completion timestamp round-trip
	now := time.Now().UTC().Truncate(time.Second)
	completed := models.TaskStatusCompleted
	updated, err = store.Update(ctx, task.ID, models.TaskPatch{Status: &completed, CompletedAt: &now})
	if err != nil {
		t.Fatalf("Failed to complete task: %v", err)
	}
	if updated.CompletedAt == nil || !updated.CompletedAt.Equal(now) {
		t.Errorf("Expected completed_at %v, got %v", now, updated.CompletedAt)
	}

	// 5. ClearCompletedAt nulls the timestamp while changing status
	updated, err = store.ClearCompletedAt(ctx, task.ID, models.TaskStatusNotStarted)
	if err != nil {
		t.Fatalf("Failed to clear completed_at: %v", err)
	}
	if updated.CompletedAt != nil {
		t.Errorf("Expected completed_at cleared, got %v", updated.CompletedAt)
	}
	if updated.Status != models.TaskStatusNotStarted {
		t.Errorf("Expected status not_started, got %s", updated.Status)
	}
}

func TestTaskQueries(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	tasks := NewTaskStore(db)
	projects := NewProjectStore(db)

	project := &models.Project{Name: "Home"}
	if err := projects.Create(ctx, project); err != nil {
		t.Fatalf("Failed to create project: %v", err)
	}

	parent := &models.Task{Title: "Renovate kitchen", ProjectID: &project.ID}
	if err := tasks.Create(ctx, parent); err != nil {
		t.Fatalf("Failed to create parent: %v", err)
	}

	child := &models.Task{Title: "Buy paint", ProjectID: &project.ID, ParentTaskID: &parent.ID}
	if err := tasks.Create(ctx, child); err != nil {
		t.Fatalf("Failed to create child: %v", err)
	}

	blocked := &models.Task{Title: "Paint walls", DependsOnTaskID: &child.ID}
	if err := tasks.Create(ctx, blocked); err != nil {
		t.Fatalf("Failed to create dependent: %v", err)
	}

	// 1. ByProject
	inProject, err := tasks.ByProject(ctx, project.ID)
	if err != nil {
		t.Fatalf("Failed to query by project: %v", err)
	}
	if len(inProject) != 2 {
		t.Errorf("Expected 2 tasks in project, got %d", len(inProject))
	}

	// 2. Subtasks
	children, err := tasks.Subtasks(ctx, parent.ID)
	if err != nil {
		t.Fatalf("Failed to query subtasks: %v", err)
	}
	if len(children) != 1 || children[0].ID != child.ID {
		t.Errorf("Expected one subtask %s, got %d", child.ID, len(children))
	}

	// 3. Dependents
	deps, err := tasks.Dependents(ctx, child.ID)
	if err != nil {
		t.Fatalf("Failed to query dependents: %v", err)
	}
	if len(deps) != 1 || deps[0].ID != blocked.ID {
		t.Errorf("Expected one dependent %s, got %d", blocked.ID, len(deps))
	}

	// 4. ByStatus sees all three
	notStarted, err := tasks.ByStatus(ctx, models.TaskStatusNotStarted)
	if err != nil {
		t.Fatalf("Failed to query by status: %v", err)
	}
	if len(notStarted) != 3 {
		t.Errorf("Expected 3 not_started tasks, got %d", len(notStarted))
	}
}
