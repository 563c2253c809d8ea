package service

import (
	"context"

	"github.com/mkline/tasknest/internal/db"
	"github.com/mkline/tasknest/pkg/models"
)

// Repository contracts the services depend on, implemented by the
// record stores in internal/db.

type TaskRepository interface {
	Create(ctx context.Context, t *models.Task) error
	CreateBatch(ctx context.Context, tasks []*models.Task) error
	GetByID(ctx context.Context, id string) (*models.Task, error)
	List(ctx context.Context, orderBy string) ([]*models.Task, error)
	ByStatus(ctx context.Context, status models.TaskStatus) ([]*models.Task, error)
	ByProject(ctx context.Context, projectID string) ([]*models.Task, error)
	Subtasks(ctx context.Context, parentID string) ([]*models.Task, error)
	Update(ctx context.Context, id string, p models.TaskPatch) (*models.Task, error)
	ClearCompletedAt(ctx context.Context, id string, status models.TaskStatus) (*models.Task, error)
	SoftDelete(ctx context.Context, id string) (bool, error)
	Exists(ctx context.Context, id string) (bool, error)
}

type ProjectRepository interface {
	Create(ctx context.Context, p *models.Project) error
	GetByID(ctx context.Context, id string) (*models.Project, error)
	List(ctx context.Context, orderBy string) ([]*models.Project, error)
	Update(ctx context.Context, id string, p models.ProjectPatch) (*models.Project, error)
	SoftDelete(ctx context.Context, id string) (bool, error)
}

type TimeLogRepository interface {
	Create(ctx context.Context, l *models.TimeLog) error
	ActiveForTask(ctx context.Context, taskID string) (*models.TimeLog, error)
	ForTask(ctx context.Context, taskID string) ([]*models.TimeLog, error)
	Update(ctx context.Context, id string, p models.TimeLogPatch) (*models.TimeLog, error)
	SoftDelete(ctx context.Context, id string) (bool, error)
}

type NoteRepository interface {
	Create(ctx context.Context, n *models.Note) error
	GetByID(ctx context.Context, id string) (*models.Note, error)
	List(ctx context.Context, orderBy string) ([]*models.Note, error)
	Update(ctx context.Context, id string, p models.NotePatch) (*models.Note, error)
	SoftDelete(ctx context.Context, id string) (bool, error)
	Search(ctx context.Context, query string) ([]*models.Note, error)
	ByCategory(ctx context.Context, category string) ([]*models.Note, error)
	ByTag(ctx context.Context, tagID string) ([]*models.Note, error)
	ByTagName(ctx context.Context, name string) ([]*models.Note, error)
	ByNotebook(ctx context.Context, notebookID string) ([]*models.Note, error)
	AddTag(ctx context.Context, noteID, tagID string) error
	RemoveTag(ctx context.Context, noteID, tagID string) error
	Tags(ctx context.Context, noteID string) ([]*models.Tag, error)
}

type TagRepository interface {
	Create(ctx context.Context, t *models.Tag) error
	GetByID(ctx context.Context, id string) (*models.Tag, error)
	ByName(ctx context.Context, name string) (*models.Tag, error)
	List(ctx context.Context, orderBy string) ([]*models.Tag, error)
	Exists(ctx context.Context, id string) (bool, error)
}

// Interface conformance for the concrete stores.
var (
	_ TaskRepository    = (*db.TaskStore)(nil)
	_ ProjectRepository = (*db.ProjectStore)(nil)
	_ TimeLogRepository = (*db.TimeLogStore)(nil)
	_ NoteRepository    = (*db.NoteStore)(nil)
	_ TagRepository     = (*db.TagStore)(nil)
)
