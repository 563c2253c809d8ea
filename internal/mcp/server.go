package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mkline/tasknest/internal/service"
	"github.com/mkline/tasknest/pkg/models"
)

// NewServer creates a new MCP server exposing the task and note
// services as tools.
func NewServer(tasks *service.TaskService, notes *service.NoteService) *server.MCPServer {
	s := server.NewMCPServer("TaskNest", "0.1.0")

	// Task Management
	s.AddTool(mcp.NewTool("create_task",
		mcp.WithDescription("Create a new task."),
		mcp.WithString("title", mcp.Description("Task title (max 200 chars)"), mcp.Required()),
		mcp.WithString("description", mcp.Description("Task description (max 1000 chars)")),
		mcp.WithString("priority", mcp.Description("Priority (low|medium|high)")),
		mcp.WithString("category", mcp.Description("Project name, or 'default' for no project")),
		mcp.WithString("due_date", mcp.Description("Due date (RFC3339)")),
		mcp.WithNumber("estimated_minutes", mcp.Description("Estimated effort in minutes")),
	), createTaskHandler(tasks))

	s.AddTool(mcp.NewTool("get_task",
		mcp.WithDescription("Get a single task by id."),
		mcp.WithString("id", mcp.Description("Task id"), mcp.Required()),
	), getTaskHandler(tasks))

	s.AddTool(mcp.NewTool("list_tasks",
		mcp.WithDescription("List tasks with an optional status filter."),
		mcp.WithString("status", mcp.Description("Filter by status (not_started|in_progress|completed|cancelled|paused|postponed|waiting)")),
	), listTasksHandler(tasks))

	s.AddTool(mcp.NewTool("update_task",
		mcp.WithDescription("Update fields of an existing task."),
		mcp.WithString("id", mcp.Description("Task id"), mcp.Required()),
		mcp.WithString("title", mcp.Description("New title")),
		mcp.WithString("description", mcp.Description("New description")),
		mcp.WithString("priority", mcp.Description("New priority (low|medium|high)")),
		mcp.WithString("due_date", mcp.Description("New due date (RFC3339)")),
		mcp.WithNumber("estimated_minutes", mcp.Description("New estimated effort in minutes")),
	), updateTaskHandler(tasks))

	s.AddTool(mcp.NewTool("update_task_status",
		mcp.WithDescription("Move a task to a new status. Illegal transitions are rejected."),
		mcp.WithString("id", mcp.Description("Task id"), mcp.Required()),
		mcp.WithString("status", mcp.Description("Target status"), mcp.Required()),
	), updateTaskStatusHandler(tasks))

	s.AddTool(mcp.NewTool("update_task_priority",
		mcp.WithDescription("Change a task's priority."),
		mcp.WithString("id", mcp.Description("Task id"), mcp.Required()),
		mcp.WithString("priority", mcp.Description("New priority (low|medium|high)"), mcp.Required()),
	), updateTaskPriorityHandler(tasks))

	s.AddTool(mcp.NewTool("complete_task",
		mcp.WithDescription("Mark a task as completed."),
		mcp.WithString("id", mcp.Description("Task id"), mcp.Required()),
	), completeTaskHandler(tasks))

	s.AddTool(mcp.NewTool("delete_task",
		mcp.WithDescription("Soft-delete a task."),
		mcp.WithString("id", mcp.Description("Task id"), mcp.Required()),
	), deleteTaskHandler(tasks))

	s.AddTool(mcp.NewTool("batch_delete_tasks",
		mcp.WithDescription("Soft-delete several tasks at once."),
		mcp.WithString("ids", mcp.Description("Comma-separated task ids"), mcp.Required()),
	), batchDeleteTasksHandler(tasks))

	s.AddTool(mcp.NewTool("batch_update_task_status",
		mcp.WithDescription("Move several tasks to a new status; each transition is validated."),
		mcp.WithString("ids", mcp.Description("Comma-separated task ids"), mcp.Required()),
		mcp.WithString("status", mcp.Description("Target status"), mcp.Required()),
	), batchUpdateTaskStatusHandler(tasks))

	s.AddTool(mcp.NewTool("restore_completed_tasks",
		mcp.WithDescription("Move completed tasks back to not_started."),
		mcp.WithString("ids", mcp.Description("Comma-separated task ids"), mcp.Required()),
	), restoreCompletedTasksHandler(tasks))

	s.AddTool(mcp.NewTool("add_subtask",
		mcp.WithDescription("Create a task parented to an existing one."),
		mcp.WithString("parent_id", mcp.Description("Parent task id"), mcp.Required()),
		mcp.WithString("title", mcp.Description("Subtask title"), mcp.Required()),
		mcp.WithString("description", mcp.Description("Subtask description")),
		mcp.WithString("priority", mcp.Description("Priority (low|medium|high)")),
	), addSubtaskHandler(tasks))

	s.AddTool(mcp.NewTool("list_subtasks",
		mcp.WithDescription("List the direct children of a task."),
		mcp.WithString("parent_id", mcp.Description("Parent task id"), mcp.Required()),
	), listSubtasksHandler(tasks))

	s.AddTool(mcp.NewTool("add_dependency",
		mcp.WithDescription("Record that a task depends on another task."),
		mcp.WithString("id", mcp.Description("Dependent task id"), mcp.Required()),
		mcp.WithString("depends_on_id", mcp.Description("Prerequisite task id"), mcp.Required()),
	), addDependencyHandler(tasks))

	// Work Timers
	s.AddTool(mcp.NewTool("start_work_timer",
		mcp.WithDescription("Start a work timer on a task. Only one timer may run per task."),
		mcp.WithString("id", mcp.Description("Task id"), mcp.Required()),
		mcp.WithString("description", mcp.Description("What the time is being spent on")),
	), startWorkTimerHandler(tasks))

	s.AddTool(mcp.NewTool("stop_work_timer",
		mcp.WithDescription("Stop the running work timer on a task."),
		mcp.WithString("id", mcp.Description("Task id"), mcp.Required()),
	), stopWorkTimerHandler(tasks))

	s.AddTool(mcp.NewTool("get_active_timer",
		mcp.WithDescription("Get the running work timer on a task, if any."),
		mcp.WithString("id", mcp.Description("Task id"), mcp.Required()),
	), getActiveTimerHandler(tasks))

	s.AddTool(mcp.NewTool("add_work_log",
		mcp.WithDescription("Record a closed span of work on a task."),
		mcp.WithString("id", mcp.Description("Task id"), mcp.Required()),
		mcp.WithString("start_time", mcp.Description("Span start (RFC3339)"), mcp.Required()),
		mcp.WithString("end_time", mcp.Description("Span end (RFC3339)"), mcp.Required()),
		mcp.WithString("description", mcp.Description("What the time was spent on")),
	), addWorkLogHandler(tasks))

	s.AddTool(mcp.NewTool("delete_work_log",
		mcp.WithDescription("Delete a work log entry."),
		mcp.WithString("id", mcp.Description("Work log id"), mcp.Required()),
	), deleteWorkLogHandler(tasks))

	s.AddTool(mcp.NewTool("get_work_log_summary",
		mcp.WithDescription("Get total, today and last-week logged minutes for a task."),
		mcp.WithString("id", mcp.Description("Task id"), mcp.Required()),
	), workLogSummaryHandler(tasks))

	// Export
	s.AddTool(mcp.NewTool("export_tasks",
		mcp.WithDescription("Export completed tasks (or a given id list) as JSON."),
		mcp.WithString("ids", mcp.Description("Comma-separated task ids; all completed tasks when omitted")),
		mcp.WithString("completed_from", mcp.Description("Only tasks completed at or after this time (RFC3339)")),
		mcp.WithString("completed_to", mcp.Description("Only tasks completed at or before this time (RFC3339)")),
		mcp.WithString("project_ids", mcp.Description("Comma-separated project ids")),
		mcp.WithString("priorities", mcp.Description("Comma-separated priorities (low|medium|high)")),
		mcp.WithString("text", mcp.Description("Filter by title/description text")),
	), exportTasksHandler(tasks))

	// Note Management
	s.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a new note."),
		mcp.WithString("title", mcp.Description("Note title (max 200 chars)"), mcp.Required()),
		mcp.WithString("content", mcp.Description("Note body")),
		mcp.WithString("category", mcp.Description("Note category")),
	), createNoteHandler(notes))

	s.AddTool(mcp.NewTool("get_note",
		mcp.WithDescription("Get a single note by id."),
		mcp.WithString("id", mcp.Description("Note id"), mcp.Required()),
	), getNoteHandler(notes))

	s.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List all notes, pinned first."),
	), listNotesHandler(notes))

	s.AddTool(mcp.NewTool("update_note",
		mcp.WithDescription("Update fields of an existing note."),
		mcp.WithString("id", mcp.Description("Note id"), mcp.Required()),
		mcp.WithString("title", mcp.Description("New title")),
		mcp.WithString("content", mcp.Description("New body")),
		mcp.WithString("category", mcp.Description("New category")),
	), updateNoteHandler(notes))

	s.AddTool(mcp.NewTool("delete_note",
		mcp.WithDescription("Soft-delete a note."),
		mcp.WithString("id", mcp.Description("Note id"), mcp.Required()),
	), deleteNoteHandler(notes))

	s.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Search notes by title and content."),
		mcp.WithString("query", mcp.Description("Search text"), mcp.Required()),
	), searchNotesHandler(notes))

	s.AddTool(mcp.NewTool("search_notes_by_category",
		mcp.WithDescription("List notes in a category."),
		mcp.WithString("category", mcp.Description("Category name"), mcp.Required()),
	), searchNotesByCategoryHandler(notes))

	s.AddTool(mcp.NewTool("find_notes_by_tag",
		mcp.WithDescription("List notes carrying a tag."),
		mcp.WithString("tag", mcp.Description("Tag name"), mcp.Required()),
	), findNotesByTagHandler(notes))

	s.AddTool(mcp.NewTool("tag_note",
		mcp.WithDescription("Attach a tag to a note, creating the tag if needed."),
		mcp.WithString("id", mcp.Description("Note id"), mcp.Required()),
		mcp.WithString("tag", mcp.Description("Tag name"), mcp.Required()),
	), tagNoteHandler(notes))

	s.AddTool(mcp.NewTool("untag_note",
		mcp.WithDescription("Detach a tag from a note."),
		mcp.WithString("id", mcp.Description("Note id"), mcp.Required()),
		mcp.WithString("tag", mcp.Description("Tag name"), mcp.Required()),
	), untagNoteHandler(notes))

	s.AddTool(mcp.NewTool("list_note_tags",
		mcp.WithDescription("List the tags attached to a note."),
		mcp.WithString("id", mcp.Description("Note id"), mcp.Required()),
	), listNoteTagsHandler(notes))

	s.AddTool(mcp.NewTool("pin_note",
		mcp.WithDescription("Pin or unpin a note."),
		mcp.WithString("id", mcp.Description("Note id"), mcp.Required()),
		mcp.WithBoolean("pinned", mcp.Description("Pinned state (defaults to true)")),
	), pinNoteHandler(notes))

	s.AddTool(mcp.NewTool("archive_note",
		mcp.WithDescription("Archive or unarchive a note."),
		mcp.WithString("id", mcp.Description("Note id"), mcp.Required()),
		mcp.WithBoolean("archived", mcp.Description("Archived state (defaults to true)")),
	), archiveNoteHandler(notes))

	return s
}

// Serve starts the MCP server on stdio.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func splitIDs(raw string) []string {
	var ids []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	return ids
}

func parseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", raw, err)
	}
	return &t, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func createTaskHandler(tasks *service.TaskService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		form := service.TaskForm{
			Title:            mcp.ParseString(request, "title", ""),
			Description:      mcp.ParseString(request, "description", ""),
			Priority:         models.TaskPriority(mcp.ParseString(request, "priority", "")),
			Category:         mcp.ParseString(request, "category", ""),
			EstimatedMinutes: int64(mcp.ParseInt(request, "estimated_minutes", 0)),
		}

		due, err := parseDate(mcp.ParseString(request, "due_date", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		form.DueDate = due

		view, err := tasks.CreateTask(ctx, form)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(view)
	}
}

func getTaskHandler(tasks *service.TaskService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")

		view, err := tasks.GetTask(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if view == nil {
			return mcp.NewToolResultError(fmt.Sprintf("Task with id '%s' not found", id)), nil
		}
		return jsonResult(view)
	}
}

func listTasksHandler(tasks *service.TaskService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var status *models.TaskStatus
		if s := mcp.ParseString(request, "status", ""); s != "" {
			ts := models.TaskStatus(s)
			status = &ts
		}

		views, err := tasks.ListTasks(ctx, status)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(map[string]interface{}{"tasks": views})
	}
}

func updateTaskHandler(tasks *service.TaskService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")

		var p models.TaskPatch
		args, _ := request.Params.Arguments.(map[string]any)
		if title, ok := args["title"].(string); ok {
			p.Title = &title
		}
		if description, ok := args["description"].(string); ok {
			p.Description = &description
		}
		if priority, ok := args["priority"].(string); ok {
			tp := models.TaskPriority(priority)
			p.Priority = &tp
		}
		if raw, ok := args["due_date"].(string); ok {
			due, err := parseDate(raw)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			p.DueDate = due
		}
		if minutes, ok := args["estimated_minutes"].(float64); ok {
			m := int64(minutes)
			p.EstimatedMinutes = &m
		}

		view, err := tasks.UpdateTask(ctx, id, p)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(view)
	}
}

func updateTaskStatusHandler(tasks *service.TaskService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")
		status := mcp.ParseString(request, "status", "")

		view, err := tasks.UpdateTaskStatus(ctx, id, models.TaskStatus(status))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(view)
	}
}

func updateTaskPriorityHandler(tasks *service.TaskService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")
		priority := mcp.ParseString(request, "priority", "")

		view, err := tasks.UpdateTaskPriority(ctx, id, models.TaskPriority(priority))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(view)
	}
}

func completeTaskHandler(tasks *service.TaskService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")

		view, err := tasks.CompleteTask(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(view)
	}
}

func deleteTaskHandler(tasks *service.TaskService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")

		if err := tasks.DeleteTask(ctx, id); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText("Task deleted successfully"), nil
	}
}

func batchDeleteTasksHandler(tasks *service.TaskService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ids := splitIDs(mcp.ParseString(request, "ids", ""))

		ok, err := tasks.BatchDelete(ctx, ids)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if !ok {
			return mcp.NewToolResultText("Some tasks could not be deleted"), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("%d tasks deleted successfully", len(ids))), nil
	}
}

func batchUpdateTaskStatusHandler(tasks *service.TaskService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ids := splitIDs(mcp.ParseString(request, "ids", ""))
		status := mcp.ParseString(request, "status", "")

		ok, err := tasks.BatchUpdateStatus(ctx, ids, models.TaskStatus(status))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if !ok {
			return mcp.NewToolResultText("Some tasks could not be moved"), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("%d tasks moved to %s", len(ids), status)), nil
	}
}

func restoreCompletedTasksHandler(tasks *service.TaskService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ids := splitIDs(mcp.ParseString(request, "ids", ""))

		ok, err := tasks.BatchRestoreCompletedTasks(ctx, ids)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if !ok {
			return mcp.NewToolResultText("Some tasks could not be restored"), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("%d tasks restored successfully", len(ids))), nil
	}
}

func addSubtaskHandler(tasks *service.TaskService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		parentID := mcp.ParseString(request, "parent_id", "")
		form := service.TaskForm{
			Title:       mcp.ParseString(request, "title", ""),
			Description: mcp.ParseString(request, "description", ""),
			Priority:    models.TaskPriority(mcp.ParseString(request, "priority", "")),
		}

		view, err := tasks.AddSubtask(ctx, parentID, form)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(view)
	}
}

func listSubtasksHandler(tasks *service.TaskService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		parentID := mcp.ParseString(request, "parent_id", "")

		views, err := tasks.GetSubtasks(ctx, parentID)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(map[string]interface{}{"subtasks": views})
	}
}

func addDependencyHandler(tasks *service.TaskService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")
		dependsOnID := mcp.ParseString(request, "depends_on_id", "")

		view, err := tasks.AddDependency(ctx, id, dependsOnID)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(view)
	}
}

func startWorkTimerHandler(tasks *service.TaskService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")
		description := mcp.ParseString(request, "description", "")

		log, err := tasks.StartWorkTimer(ctx, id, description)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(log)
	}
}

func stopWorkTimerHandler(tasks *service.TaskService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")

		log, err := tasks.StopWorkTimer(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(log)
	}
}

func getActiveTimerHandler(tasks *service.TaskService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")

		log, err := tasks.GetActiveTimer(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if log == nil {
			return mcp.NewToolResultText("No timer running"), nil
		}
		return jsonResult(log)
	}
}

func addWorkLogHandler(tasks *service.TaskService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")
		description := mcp.ParseString(request, "description", "")

		start, err := parseDate(mcp.ParseString(request, "start_time", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		end, err := parseDate(mcp.ParseString(request, "end_time", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if start == nil || end == nil {
			return mcp.NewToolResultError("start_time and end_time are required"), nil
		}

		log, err := tasks.AddWorkLog(ctx, id, *start, *end, description)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(log)
	}
}

func deleteWorkLogHandler(tasks *service.TaskService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")

		if err := tasks.DeleteWorkLog(ctx, id); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText("Work log deleted successfully"), nil
	}
}

func workLogSummaryHandler(tasks *service.TaskService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")

		summary, err := tasks.GetWorkLogSummary(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(summary)
	}
}

func exportTasksHandler(tasks *service.TaskService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		filters := models.ExportFilters{
			TaskIDs:    splitIDs(mcp.ParseString(request, "ids", "")),
			ProjectIDs: splitIDs(mcp.ParseString(request, "project_ids", "")),
			Text:       mcp.ParseString(request, "text", ""),
		}
		for _, p := range splitIDs(mcp.ParseString(request, "priorities", "")) {
			filters.Priorities = append(filters.Priorities, models.TaskPriority(p))
		}

		from, err := parseDate(mcp.ParseString(request, "completed_from", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		to, err := parseDate(mcp.ParseString(request, "completed_to", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		filters.CompletedFrom = from
		filters.CompletedTo = to

		export, err := tasks.ExportTasks(ctx, filters)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(export)
	}
}

func createNoteHandler(notes *service.NoteService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		form := service.NoteForm{
			Title:    mcp.ParseString(request, "title", ""),
			Content:  mcp.ParseString(request, "content", ""),
			Category: mcp.ParseString(request, "category", ""),
		}

		n, err := notes.CreateNote(ctx, form)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(n)
	}
}

func getNoteHandler(notes *service.NoteService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")

		n, err := notes.GetNote(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if n == nil {
			return mcp.NewToolResultError(fmt.Sprintf("Note with id '%s' not found", id)), nil
		}
		return jsonResult(n)
	}
}

func listNotesHandler(notes *service.NoteService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		list, err := notes.ListNotes(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(map[string]interface{}{"notes": list})
	}
}

func updateNoteHandler(notes *service.NoteService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")

		var p models.NotePatch
		args, _ := request.Params.Arguments.(map[string]any)
		if title, ok := args["title"].(string); ok {
			p.Title = &title
		}
		if content, ok := args["content"].(string); ok {
			p.Content = &content
		}
		if category, ok := args["category"].(string); ok {
			p.Category = &category
		}

		n, err := notes.UpdateNote(ctx, id, p)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(n)
	}
}

func deleteNoteHandler(notes *service.NoteService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")

		if err := notes.DeleteNote(ctx, id); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText("Note deleted successfully"), nil
	}
}

func searchNotesHandler(notes *service.NoteService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query := mcp.ParseString(request, "query", "")

		list, err := notes.Search(ctx, query)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(map[string]interface{}{"notes": list})
	}
}

func searchNotesByCategoryHandler(notes *service.NoteService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		category := mcp.ParseString(request, "category", "")

		list, err := notes.SearchByCategory(ctx, category)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(map[string]interface{}{"notes": list})
	}
}

func findNotesByTagHandler(notes *service.NoteService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tag := mcp.ParseString(request, "tag", "")

		list, err := notes.SearchByTagName(ctx, tag)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(map[string]interface{}{"notes": list})
	}
}

func tagNoteHandler(notes *service.NoteService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")
		name := mcp.ParseString(request, "tag", "")

		tag, err := notes.EnsureTag(ctx, name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := notes.AddTag(ctx, id, tag.ID); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Tag '%s' added to note", name)), nil
	}
}

func untagNoteHandler(notes *service.NoteService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")
		name := mcp.ParseString(request, "tag", "")

		tag, err := notes.EnsureTag(ctx, name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := notes.RemoveTag(ctx, id, tag.ID); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Tag '%s' removed from note", name)), nil
	}
}

func listNoteTagsHandler(notes *service.NoteService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")

		tags, err := notes.GetTags(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(map[string]interface{}{"tags": tags})
	}
}

func pinNoteHandler(notes *service.NoteService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")
		pinned := mcp.ParseBoolean(request, "pinned", true)

		n, err := notes.SetPinned(ctx, id, pinned)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(n)
	}
}

func archiveNoteHandler(notes *service.NoteService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")
		archived := mcp.ParseBoolean(request, "archived", true)

		n, err := notes.SetArchived(ctx, id, archived)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(n)
	}
}
