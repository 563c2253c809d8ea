package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/mkline/tasknest/internal/bus"
	"github.com/mkline/tasknest/internal/config"
	"github.com/mkline/tasknest/internal/db"
	"github.com/mkline/tasknest/internal/service"
)

// App is the application facade. It owns the database handle and wires
// the stores, event bus and services together with typed constructors.
// Zero until Initialize is called; Initialize is idempotent.
type App struct {
	cfg *config.Config

	mu          sync.Mutex
	initialized bool

	database *db.DB
	bus      *bus.Bus

	taskStore     *db.TaskStore
	noteStore     *db.NoteStore
	projectStore  *db.ProjectStore
	notebookStore *db.NotebookStore
	tagStore      *db.TagStore
	timeLogStore  *db.TimeLogStore

	tasks *service.TaskService
	notes *service.NoteService
}

func New(cfg *config.Config) *App {
	if cfg == nil {
		cfg = config.Default()
	}
	return &App{cfg: cfg}
}

// Initialize opens the database, runs migrations and wires the object
// graph. Calling it again on an initialized App is a no-op.
func (a *App) Initialize(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.initialized {
		return nil
	}

	database, err := db.Open(a.cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err := database.Init(ctx); err != nil {
		database.Close()
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	a.database = database
	a.bus = bus.New()

	a.taskStore = db.NewTaskStore(database)
	a.noteStore = db.NewNoteStore(database)
	a.projectStore = db.NewProjectStore(database)
	a.notebookStore = db.NewNotebookStore(database)
	a.tagStore = db.NewTagStore(database)
	a.timeLogStore = db.NewTimeLogStore(database)

	a.tasks = service.NewTaskService(a.taskStore, a.projectStore, a.timeLogStore, a.bus)
	a.notes = service.NewNoteService(a.noteStore, a.tagStore, a.bus)

	a.initialized = true
	return nil
}

var errNotInitialized = fmt.Errorf("application not initialized")

// Tasks returns the task service. Fails before Initialize.
func (a *App) Tasks() (*service.TaskService, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.initialized {
		return nil, errNotInitialized
	}
	return a.tasks, nil
}

// Notes returns the note service. Fails before Initialize.
func (a *App) Notes() (*service.NoteService, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.initialized {
		return nil, errNotInitialized
	}
	return a.notes, nil
}

// Bus returns the event bus. Fails before Initialize.
func (a *App) Bus() (*bus.Bus, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.initialized {
		return nil, errNotInitialized
	}
	return a.bus, nil
}

// DB returns the raw database handle. Fails before Initialize.
func (a *App) DB() (*db.DB, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.initialized {
		return nil, errNotInitialized
	}
	return a.database, nil
}

// TaskStore returns the task record store. Fails before Initialize.
func (a *App) TaskStore() (*db.TaskStore, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.initialized {
		return nil, errNotInitialized
	}
	return a.taskStore, nil
}

// NoteStore returns the note record store. Fails before Initialize.
func (a *App) NoteStore() (*db.NoteStore, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.initialized {
		return nil, errNotInitialized
	}
	return a.noteStore, nil
}

// ProjectStore returns the project record store. Fails before Initialize.
func (a *App) ProjectStore() (*db.ProjectStore, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.initialized {
		return nil, errNotInitialized
	}
	return a.projectStore, nil
}

// NotebookStore returns the notebook record store. Fails before Initialize.
func (a *App) NotebookStore() (*db.NotebookStore, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.initialized {
		return nil, errNotInitialized
	}
	return a.notebookStore, nil
}

// Config returns the configuration the App was built with.
func (a *App) Config() *config.Config {
	return a.cfg
}

// Close releases the database. The App goes back to uninitialized and
// may be initialized again.
func (a *App) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.initialized {
		return nil
	}
	a.initialized = false
	return a.database.Close()
}
