package models

// Event is a domain event published on the in-process bus.
type Event interface {
	EventType() string
}

const (
	EventTaskCreated   = "task.created"
	EventTaskUpdated   = "task.updated"
	EventTaskCompleted = "task.completed"
	EventTaskDeleted   = "task.deleted"
	EventNoteCreated   = "note.created"
	EventNoteUpdated   = "note.updated"
	EventNoteDeleted   = "note.deleted"
)

type TaskCreatedEvent struct {
	Task *TaskView `json:"task"`
}

func (TaskCreatedEvent) EventType() string { return EventTaskCreated }

// TaskUpdatedEvent carries the fields changed by the update.
type TaskUpdatedEvent struct {
	TaskID  string         `json:"task_id"`
	Changed map[string]any `json:"changed"`
}

func (TaskUpdatedEvent) EventType() string { return EventTaskUpdated }

type TaskCompletedEvent struct {
	Task *TaskView `json:"task"`
}

func (TaskCompletedEvent) EventType() string { return EventTaskCompleted }

type TaskDeletedEvent struct {
	TaskID string `json:"task_id"`
}

func (TaskDeletedEvent) EventType() string { return EventTaskDeleted }

type NoteCreatedEvent struct {
	Note *Note `json:"note"`
}

func (NoteCreatedEvent) EventType() string { return EventNoteCreated }

type NoteUpdatedEvent struct {
	NoteID  string         `json:"note_id"`
	Changed map[string]any `json:"changed"`
}

func (NoteUpdatedEvent) EventType() string { return EventNoteUpdated }

type NoteDeletedEvent struct {
	NoteID string `json:"note_id"`
}

func (NoteDeletedEvent) EventType() string { return EventNoteDeleted }
