// AngelaMos | 2026
// main.go

// Command taskflow is a terminal client for the TaskFlow API. It drives the
// auth and task state containers the same way the web UI does: restore the
// session, run one operation, print the resulting snapshot.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/carterperez-dev/taskflow/internal/client/authstore"
	"github.com/carterperez-dev/taskflow/internal/client/backend"
	"github.com/carterperez-dev/taskflow/internal/client/taskstore"
)

const defaultBaseURL = "http://localhost:8080"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `usage: taskflow <command> [arguments]

commands:
  signup   -email -password -first -last   register an account
  login    -email -password               sign in
  logout                                  sign out
  whoami                                  show the signed-in user
  list     [-status todo|in_progress|done] list tasks
  add      -title [-desc] [-status] [-due] create a task
  done     <task-id>                      mark a task done
  edit     <task-id> [-title] [-desc] [-status] [-due]
  rm       <task-id>                      delete a task
  search   <query>                        search tasks by text
`)
}

//nolint:funlen // command dispatch is a flat switch
func run(args []string) error {
	if len(args) == 0 {
		usage()
		return fmt.Errorf("missing command")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	baseURL := os.Getenv("TASKFLOW_API_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	sessionPath, err := backend.DefaultSessionPath()
	if err != nil {
		return err
	}
	storageDir, err := authstore.DefaultStorageDir()
	if err != nil {
		return err
	}

	client := backend.New(backend.Config{
		BaseURL: baseURL,
		Logger:  logger,
		Storage: backend.NewFileStorage(sessionPath),
	})

	auth := authstore.New(authstore.Config{
		Backend: client,
		Storage: authstore.NewFileStorage(storageDir),
		Logger:  logger,
	})

	tasks := taskstore.New(taskstore.Config{
		Backend: client,
		Auth:    auth,
		Logger:  logger,
	})

	ctx := context.Background()
	command, rest := args[0], args[1:]

	switch command {
	case "signup":
		return cmdSignup(ctx, auth, rest)
	case "login":
		return cmdLogin(ctx, auth, rest)
	case "logout":
		auth.Logout(ctx)
		fmt.Println("signed out")
		return nil
	case "whoami":
		return cmdWhoami(ctx, auth)
	case "list":
		return cmdList(ctx, auth, tasks, rest)
	case "add":
		return cmdAdd(ctx, auth, tasks, rest)
	case "done":
		return cmdDone(ctx, auth, tasks, rest)
	case "edit":
		return cmdEdit(ctx, auth, tasks, rest)
	case "rm":
		return cmdRemove(ctx, auth, tasks, rest)
	case "search":
		return cmdSearch(ctx, auth, tasks, rest)
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func cmdSignup(ctx context.Context, auth *authstore.Store, args []string) error {
	fs := flag.NewFlagSet("signup", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	first := fs.String("first", "", "first name")
	last := fs.String("last", "", "last name")
	//nolint:errcheck // ExitOnError
	_ = fs.Parse(args)

	needsConfirmation, err := auth.Signup(ctx, authstore.SignupParams{
		Email:           *email,
		Password:        *password,
		ConfirmPassword: *password,
		FirstName:       *first,
		LastName:        *last,
	})
	if err != nil {
		return err
	}

	if needsConfirmation {
		fmt.Println("account created; check your email to confirm")
		return nil
	}

	fmt.Printf("signed up as %s\n", *email)
	return nil
}

func cmdLogin(ctx context.Context, auth *authstore.Store, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	//nolint:errcheck // ExitOnError
	_ = fs.Parse(args)

	if err := auth.Login(ctx, *email, *password); err != nil {
		return err
	}

	st := auth.Get()
	fmt.Printf("signed in as %s %s <%s>\n",
		st.User.FirstName, st.User.LastName, st.User.Email)
	return nil
}

func cmdWhoami(ctx context.Context, auth *authstore.Store) error {
	auth.RestoreSession(ctx)

	st := auth.Get()
	if !st.IsAuthenticated {
		fmt.Println("not signed in")
		return nil
	}

	fmt.Printf("%s %s <%s> role=%s\n",
		st.User.FirstName, st.User.LastName, st.User.Email, st.User.Role)
	return nil
}

func cmdList(
	ctx context.Context,
	auth *authstore.Store,
	tasks *taskstore.Store,
	args []string,
) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	status := fs.String("status", "", "filter by status")
	//nolint:errcheck // ExitOnError
	_ = fs.Parse(args)

	if err := fetch(ctx, auth, tasks); err != nil {
		return err
	}

	var rows []taskstore.Task
	if *status != "" {
		rows = tasks.GetTasksByStatus(*status)
	} else {
		rows = tasks.SearchTasks("")
	}

	printTasks(rows)
	return nil
}

func cmdAdd(
	ctx context.Context,
	auth *authstore.Store,
	tasks *taskstore.Store,
	args []string,
) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	title := fs.String("title", "", "task title")
	desc := fs.String("desc", "", "task description")
	status := fs.String("status", taskstore.StatusTodo, "initial status")
	due := fs.String("due", "", "due date (YYYY-MM-DD)")
	//nolint:errcheck // ExitOnError
	_ = fs.Parse(args)

	if *title == "" {
		return fmt.Errorf("-title is required")
	}

	var dueDate time.Time
	if *due != "" {
		parsed, err := time.Parse("2006-01-02", *due)
		if err != nil {
			return fmt.Errorf("-due must be YYYY-MM-DD: %w", err)
		}
		dueDate = parsed
	}

	auth.RestoreSession(ctx)

	task, err := tasks.AddTask(ctx, taskstore.AddInput{
		Title:       *title,
		Description: *desc,
		Status:      *status,
		DueDate:     dueDate,
	})
	if err != nil {
		return err
	}

	fmt.Printf("created %s  %s\n", task.ID, task.Title)
	return nil
}

func cmdDone(
	ctx context.Context,
	auth *authstore.Store,
	tasks *taskstore.Store,
	args []string,
) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: taskflow done <task-id>")
	}

	auth.RestoreSession(ctx)

	status := taskstore.StatusDone
	task, err := tasks.UpdateTask(ctx, args[0], taskstore.Update{
		Status: &status,
	})
	if err != nil {
		return err
	}

	fmt.Printf("done %s  %s\n", task.ID, task.Title)
	return nil
}

func cmdEdit(
	ctx context.Context,
	auth *authstore.Store,
	tasks *taskstore.Store,
	args []string,
) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: taskflow edit <task-id> [flags]")
	}
	id := args[0]

	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	title := fs.String("title", "", "new title")
	desc := fs.String("desc", "", "new description")
	status := fs.String("status", "", "new status")
	due := fs.String("due", "", "new due date (YYYY-MM-DD)")
	//nolint:errcheck // ExitOnError
	_ = fs.Parse(args[1:])

	var update taskstore.Update
	if *title != "" {
		update.Title = title
	}
	if *desc != "" {
		update.Description = desc
	}
	if *status != "" {
		update.Status = status
	}
	if *due != "" {
		dueDate, err := time.Parse("2006-01-02", *due)
		if err != nil {
			return fmt.Errorf("-due must be YYYY-MM-DD: %w", err)
		}
		update.DueDate = &dueDate
	}

	auth.RestoreSession(ctx)

	task, err := tasks.UpdateTask(ctx, id, update)
	if err != nil {
		return err
	}

	fmt.Printf("updated %s  %s [%s]\n", task.ID, task.Title, task.Status)
	return nil
}

func cmdRemove(
	ctx context.Context,
	auth *authstore.Store,
	tasks *taskstore.Store,
	args []string,
) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: taskflow rm <task-id>")
	}

	auth.RestoreSession(ctx)

	if err := tasks.DeleteTask(ctx, args[0]); err != nil {
		return err
	}

	fmt.Printf("deleted %s\n", args[0])
	return nil
}

func cmdSearch(
	ctx context.Context,
	auth *authstore.Store,
	tasks *taskstore.Store,
	args []string,
) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: taskflow search <query>")
	}

	if err := fetch(ctx, auth, tasks); err != nil {
		return err
	}

	printTasks(tasks.SearchTasks(args[0]))
	return nil
}

func fetch(
	ctx context.Context,
	auth *authstore.Store,
	tasks *taskstore.Store,
) error {
	auth.RestoreSession(ctx)

	if err := tasks.FetchTasks(ctx); err != nil {
		return err
	}

	if st := tasks.Get(); st.Error != "" {
		return fmt.Errorf("fetch tasks: %s", st.Error)
	}

	return nil
}

func printTasks(rows []taskstore.Task) {
	if len(rows) == 0 {
		fmt.Println("no tasks")
		return
	}

	for _, t := range rows {
		due := "-"
		if t.DueDate != nil {
			due = t.DueDate.Format("2006-01-02")
		}
		fmt.Printf("%s  [%-11s]  due %s  %s\n", t.ID, t.Status, due, t.Title)
	}
}
