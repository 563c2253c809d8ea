package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mkline/tasknest/pkg/models"
)

// ExportTasks projects either the given id list or all completed tasks,
// applies the post-filters and returns the export payload.
func (s *TaskService) ExportTasks(ctx context.Context, filters models.ExportFilters) (*models.TaskExport, error) {
	var tasks []*models.Task
	if len(filters.TaskIDs) > 0 {
		for _, id := range filters.TaskIDs {
			t, err := s.tasks.GetByID(ctx, id)
			if err != nil {
				return nil, err
			}
			if t != nil {
				tasks = append(tasks, t)
			}
		}
	} else {
		var err error
		tasks, err = s.tasks.ByStatus(ctx, models.TaskStatusCompleted)
		if err != nil {
			return nil, err
		}
	}

	export := &models.TaskExport{
		ExportTime: s.now().UTC(),
		Filters:    filters,
		Tasks:      []models.ExportedTask{},
	}

	projectNames := make(map[string]string)
	for _, t := range tasks {
		if !matchesExportFilters(t, filters) {
			continue
		}

		projectName := ""
		if t.ProjectID != nil {
			name, ok := projectNames[*t.ProjectID]
			if !ok {
				p, err := s.projects.GetByID(ctx, *t.ProjectID)
				if err != nil {
					return nil, err
				}
				if p != nil {
					name = p.Name
				}
				projectNames[*t.ProjectID] = name
			}
			projectName = name
		}

		export.Tasks = append(export.Tasks, models.ExportedTask{
			ID:               t.ID,
			Title:            t.Title,
			Description:      t.Description,
			Priority:         string(t.Priority),
			Status:           string(t.Status),
			Project:          projectName,
			DueDate:          t.DueDate,
			CompletedAt:      t.CompletedAt,
			EstimatedMinutes: t.EstimatedMinutes,
			ActualMinutes:    t.ActualMinutes,
			CreatedAt:        t.CreatedAt,
			UpdatedAt:        t.UpdatedAt,
		})
	}

	export.TotalTasks = len(export.Tasks)
	return export, nil
}

func matchesExportFilters(t *models.Task, f models.ExportFilters) bool {
	if f.CompletedFrom != nil && (t.CompletedAt == nil || t.CompletedAt.Before(*f.CompletedFrom)) {
		return false
	}
	if f.CompletedTo != nil && (t.CompletedAt == nil || t.CompletedAt.After(*f.CompletedTo)) {
		return false
	}
	if len(f.ProjectIDs) > 0 {
		if t.ProjectID == nil || !contains(f.ProjectIDs, *t.ProjectID) {
			return false
		}
	}
	if len(f.Priorities) > 0 && !contains(f.Priorities, t.Priority) {
		return false
	}
	if f.Text != "" {
		q := strings.ToLower(f.Text)
		if !strings.Contains(strings.ToLower(t.Title), q) && !strings.Contains(strings.ToLower(t.Description), q) {
			return false
		}
	}
	return true
}

func contains[T comparable](list []T, v T) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// WriteExport serializes an export to path, writing atomically through
// a temporary file, and returns the written payload.
func (s *TaskService) WriteExport(ctx context.Context, filters models.ExportFilters, path string) (*models.TaskExport, error) {
	export, err := s.ExportTasks(ctx, filters)
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal export: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, "export-*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if tempFile != nil {
			tempFile.Close()
			os.Remove(tempFile.Name())
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write export: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		return nil, fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return nil, fmt.Errorf("failed to close temp file: %w", err)
	}

	filename := tempFile.Name()
	tempFile = nil // Prevent defer from removing it

	if err := os.Rename(filename, path); err != nil {
		os.Remove(filename)
		return nil, fmt.Errorf("failed to rename temp file: %w", err)
	}
	return export, nil
}
