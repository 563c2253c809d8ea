package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mkline/tasknest/internal/app"
	"github.com/mkline/tasknest/internal/config"
	"github.com/mkline/tasknest/internal/mcp"
	"github.com/mkline/tasknest/pkg/models"
)

var (
	configPath string
	dbPath     string
)

func main() {
	flag.StringVar(&configPath, "config", filepath.Join(config.DefaultDir, "config.yaml"), "Path to config file")
	flag.StringVar(&dbPath, "db-path", "", "Path to database file (overrides config)")
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(1)
	}

	command := flag.Arg(0)
	args := flag.Args()[1:]

	var err error
	switch command {
	case "init":
		err = runInit(args)
	case "mcp":
		err = runMCP(args)
	case "list-tasks":
		err = runListTasks(args)
	case "list-notes":
		err = runListNotes(args)
	case "status":
		err = runStatus(args)
	case "export":
		err = runExport(args)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("Usage: tasknest [flags] <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  init        Create the data directory and database")
	fmt.Println("  mcp         Serve the MCP tool surface on stdio")
	fmt.Println("  list-tasks  List tasks with optional filters")
	fmt.Println("  list-notes  List notes")
	fmt.Println("  status      Show a task status breakdown")
	fmt.Println("  export      Export completed tasks as JSON")
}

func loadApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}

	a := app.New(cfg)
	if err := a.Initialize(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

func runInit(args []string) error {
	targetDir := "."
	if len(args) > 0 {
		targetDir = args[0]
	}

	dataDir := filepath.Join(targetDir, config.DefaultDir)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", config.DefaultDir, err)
	}
	fmt.Printf("✓ Created %s/ directory\n", config.DefaultDir)

	gitignorePath := filepath.Join(dataDir, ".gitignore")
	if err := os.WriteFile(gitignorePath, []byte("tasknest.db*\n"), 0644); err != nil {
		return fmt.Errorf("failed to create .gitignore: %w", err)
	}
	fmt.Printf("✓ Created %s/.gitignore\n", config.DefaultDir)

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	} else {
		cfg.Database.Path = filepath.Join(dataDir, config.DefaultDatabaseFile)
	}

	ctx := context.Background()
	a := app.New(cfg)
	if err := a.Initialize(ctx); err != nil {
		return err
	}
	defer a.Close()

	fmt.Printf("✓ Initialized database at %s\n", cfg.Database.Path)
	fmt.Println("✓ TaskNest initialized successfully")
	return nil
}

func runMCP(args []string) error {
	ctx := context.Background()
	a, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	tasks, err := a.Tasks()
	if err != nil {
		return err
	}
	notes, err := a.Notes()
	if err != nil {
		return err
	}

	s := mcp.NewServer(tasks, notes)
	return mcp.Serve(s)
}

func runListTasks(args []string) error {
	taskFlags := flag.NewFlagSet("list-tasks", flag.ContinueOnError)
	statusFilter := taskFlags.String("status", "", "Filter by status (not_started, in_progress, completed, cancelled, paused, postponed, waiting)")
	if err := taskFlags.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	a, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	tasks, err := a.Tasks()
	if err != nil {
		return err
	}

	var status *models.TaskStatus
	if *statusFilter != "" {
		s := models.TaskStatus(*statusFilter)
		status = &s
	}

	views, err := tasks.ListTasks(ctx, status)
	if err != nil {
		return err
	}

	fmt.Printf("%-36s %-30s %-15s %-10s\n", "ID", "TITLE", "PROJECT", "STATUS")
	fmt.Println("---------------------------------------------------------------------------------------------")
	for _, v := range views {
		project := ""
		if v.Project != nil {
			project = v.Project.Name
		}
		fmt.Printf("%-36s %-30s %-15s %-10s\n", v.ID, v.Title, project, v.Status)
	}
	return nil
}

func runListNotes(args []string) error {
	ctx := context.Background()
	a, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	notes, err := a.Notes()
	if err != nil {
		return err
	}

	list, err := notes.ListNotes(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("%-36s %-30s %-15s %-6s\n", "ID", "TITLE", "CATEGORY", "PINNED")
	fmt.Println("------------------------------------------------------------------------------------------")
	for _, n := range list {
		pinned := ""
		if n.Pinned {
			pinned = "yes"
		}
		fmt.Printf("%-36s %-30s %-15s %-6s\n", n.ID, n.Title, n.Category, pinned)
	}
	return nil
}

func runStatus(args []string) error {
	ctx := context.Background()
	a, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	tasks, err := a.Tasks()
	if err != nil {
		return err
	}
	notes, err := a.Notes()
	if err != nil {
		return err
	}

	views, err := tasks.ListTasks(ctx, nil)
	if err != nil {
		return err
	}
	noteList, err := notes.ListNotes(ctx)
	if err != nil {
		return err
	}

	fmt.Println("TaskNest Status")
	fmt.Println("===============")
	fmt.Printf("Total Tasks: %d\n", len(views))
	fmt.Printf("Total Notes: %d\n", len(noteList))

	statusCounts := make(map[models.TaskStatus]int)
	for _, v := range views {
		statusCounts[v.Status]++
	}

	fmt.Println("\nTask Breakdown:")
	fmt.Printf("  Not Started: %d\n", statusCounts[models.TaskStatusNotStarted])
	fmt.Printf("  In Progress: %d\n", statusCounts[models.TaskStatusInProgress])
	fmt.Printf("  Completed:   %d\n", statusCounts[models.TaskStatusCompleted])
	fmt.Printf("  Cancelled:   %d\n", statusCounts[models.TaskStatusCancelled])
	fmt.Printf("  Paused:      %d\n", statusCounts[models.TaskStatusPaused])
	fmt.Printf("  Postponed:   %d\n", statusCounts[models.TaskStatusPostponed])
	fmt.Printf("  Waiting:     %d\n", statusCounts[models.TaskStatusWaiting])
	return nil
}

func runExport(args []string) error {
	exportFlags := flag.NewFlagSet("export", flag.ContinueOnError)
	outPath := exportFlags.String("out", "", "Output path (defaults to the configured export path)")
	text := exportFlags.String("text", "", "Filter by title/description text")
	if err := exportFlags.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	a, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	tasks, err := a.Tasks()
	if err != nil {
		return err
	}

	path := *outPath
	if path == "" {
		path = a.Config().Export.Path
	}

	filters := models.ExportFilters{Text: *text}
	export, err := tasks.WriteExport(ctx, filters, path)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Exported %d tasks to %s\n", export.TotalTasks, path)
	return nil
}
