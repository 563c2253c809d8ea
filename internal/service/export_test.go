package service

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mkline/tasknest/pkg/models"
)

func TestExportTasks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	env.tasks.now = func() time.Time { return now }

	project := &models.Project{Name: "Reports"}
	if err := env.projects.Create(ctx, project); err != nil {
		t.Fatalf("Failed to create project: %v", err)
	}

	mkDone := func(title, category string) *models.TaskView {
		view, err := env.tasks.CreateTask(ctx, TaskForm{Title: title, Category: category})
		if err != nil {
			t.Fatalf("Failed to create task: %v", err)
		}
		done, err := env.tasks.CompleteTask(ctx, view.ID)
		if err != nil {
			t.Fatalf("Failed to complete task: %v", err)
		}
		return done
	}

	done := mkDone("Quarterly report", project.ID)
	mkDone("Standalone chore", "")

	open, err := env.tasks.CreateTask(ctx, TaskForm{Title: "Still open"})
	if err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}

	// 1. Default export takes all completed tasks
	export, err := env.tasks.ExportTasks(ctx, models.ExportFilters{})
	if err != nil {
		t.Fatalf("Failed to export: %v", err)
	}
	if export.TotalTasks != 2 || len(export.Tasks) != 2 {
		t.Fatalf("Expected 2 exported tasks, got %d", export.TotalTasks)
	}
	if !export.ExportTime.Equal(now) {
		t.Errorf("Expected export time %v, got %v", now, export.ExportTime)
	}
	for _, e := range export.Tasks {
		if e.ID == open.ID {
			t.Errorf("Expected open task to be excluded")
		}
		if e.ID == done.ID && e.Project != "Reports" {
			t.Errorf("Expected project name Reports, got %s", e.Project)
		}
	}

	// 2. Text filter narrows by title
	export, err = env.tasks.ExportTasks(ctx, models.ExportFilters{Text: "quarterly"})
	if err != nil {
		t.Fatalf("Failed to export: %v", err)
	}
	if export.TotalTasks != 1 || export.Tasks[0].Title != "Quarterly report" {
		t.Errorf("Expected the quarterly report only, got %d tasks", export.TotalTasks)
	}

	// 3. Project filter
	export, err = env.tasks.ExportTasks(ctx, models.ExportFilters{ProjectIDs: []string{project.ID}})
	if err != nil {
		t.Fatalf("Failed to export: %v", err)
	}
	if export.TotalTasks != 1 {
		t.Errorf("Expected 1 task in project, got %d", export.TotalTasks)
	}

	// 4. An explicit id list bypasses the completed-only default
	export, err = env.tasks.ExportTasks(ctx, models.ExportFilters{TaskIDs: []string{open.ID}})
	if err != nil {
		t.Fatalf("Failed to export: %v", err)
	}
	if export.TotalTasks != 1 || export.Tasks[0].ID != open.ID {
		t.Errorf("Expected the open task by id, got %d tasks", export.TotalTasks)
	}

	// 5. No matches still yields an empty array, not null
	export, err = env.tasks.ExportTasks(ctx, models.ExportFilters{Text: "no such task"})
	if err != nil {
		t.Fatalf("Failed to export: %v", err)
	}
	data, err := json.Marshal(export)
	if err != nil {
		t.Fatalf("Failed to marshal export: %v", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Failed to unmarshal export: %v", err)
	}
	if string(raw["tasks"]) != "[]" {
		t.Errorf("Expected tasks to serialize as [], got %s", raw["tasks"])
	}
	for _, key := range []string{"exportTime", "totalTasks", "filters", "tasks"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("Expected export key %s", key)
		}
	}
}

func TestWriteExport(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	view, err := env.tasks.CreateTask(ctx, TaskForm{Title: "to file"})
	if err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}
	if _, err := env.tasks.CompleteTask(ctx, view.ID); err != nil {
		t.Fatalf("Failed to complete task: %v", err)
	}

	path := filepath.Join(t.TempDir(), "nested", "export.json")
	written, err := env.tasks.WriteExport(ctx, models.ExportFilters{}, path)
	if err != nil {
		t.Fatalf("Failed to write export: %v", err)
	}
	if written.TotalTasks != 1 {
		t.Errorf("Expected 1 task in returned payload, got %d", written.TotalTasks)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read export file: %v", err)
	}

	var export models.TaskExport
	if err := json.Unmarshal(data, &export); err != nil {
		t.Fatalf("Failed to parse export file: %v", err)
	}
	if export.TotalTasks != 1 || export.Tasks[0].Title != "to file" {
		t.Errorf("Expected 1 exported task, got %d", export.TotalTasks)
	}

	// No temp files left behind
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("Failed to read export dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected only the export file, found %d entries", len(entries))
	}
}
