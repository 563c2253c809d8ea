package db

import (
	"context"
	"testing"
	"time"

	"github.com/mkline/tasknest/pkg/models"
)

func TestTimeLogs(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	tasks := NewTaskStore(db)
	logs := NewTimeLogStore(db)

	task := &models.Task{Title: "Deep work"}
	if err := tasks.Create(ctx, task); err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}

	// 1. No active log yet
	active, err := logs.ActiveForTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("Failed to query active log: %v", err)
	}
	if active != nil {
		t.Errorf("Expected no active log, got %+v", active)
	}

	// 2. An open log (no end time) counts as active
	start := time.Now().UTC().Truncate(time.Second)
	open := &models.TimeLog{TaskID: task.ID, StartTime: start, Description: "morning session"}
	if err := logs.Create(ctx, open); err != nil {
		t.Fatalf("Failed to create log: %v", err)
	}

	active, err = logs.ActiveForTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("Failed to query active log: %v", err)
	}
	if active == nil || active.ID != open.ID {
		t.Fatalf("Expected the open log to be active")
	}

	// 3. Setting end_time closes it
	end := start.Add(45 * time.Minute)
	closed, err := logs.Update(ctx, open.ID, models.TimeLogPatch{EndTime: &end})
	if err != nil {
		t.Fatalf("Failed to close log: %v", err)
	}
	if closed.EndTime == nil || !closed.EndTime.Equal(end) {
		t.Errorf("Expected end time %v, got %v", end, closed.EndTime)
	}

	active, err = logs.ActiveForTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("Failed to query active log: %v", err)
	}
	if active != nil {
		t.Errorf("Expected no active log after close, got %+v", active)
	}

	// 4. ForTask returns logs ordered by start time
	earlier := &models.TimeLog{TaskID: task.ID, StartTime: start.Add(-2 * time.Hour)}
	later := &models.TimeLog{TaskID: task.ID, StartTime: start.Add(time.Hour)}
	for _, l := range []*models.TimeLog{later, earlier} {
		if err := logs.Create(ctx, l); err != nil {
			t.Fatalf("Failed to create log: %v", err)
		}
	}

	all, err := logs.ForTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("Failed to list logs: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected 3 logs, got %d", len(all))
	}
	if all[0].ID != earlier.ID || all[2].ID != later.ID {
		t.Errorf("Expected logs ordered by start time")
	}
}

func TestTimeLogDuration(t *testing.T) {
	start := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Minute)

	closed := models.TimeLog{StartTime: start, EndTime: &end}
	if d := closed.Duration(end.Add(time.Hour)); d != 90*time.Minute {
		t.Errorf("Expected 90m for closed log, got %v", d)
	}

	open := models.TimeLog{StartTime: start}
	if d := open.Duration(start.Add(30 * time.Minute)); d != 30*time.Minute {
		t.Errorf("Expected 30m for open log, got %v", d)
	}
}
