package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/gophtodo/internal/client/client"
	"github.com/dmitrijs2005/gophtodo/internal/client/models"
	"github.com/dmitrijs2005/gophtodo/internal/client/router"
	"github.com/google/uuid"
)

const todosPerPage = 10

// render draws the page for a freshly committed location.
func (a *App) render(ctx context.Context, to, _ router.Location) {
	switch to.Route.Name {
	case "home":
		a.println("GophTodo: organize your tasks into categories.")
		if a.isLoggedIn() {
			a.println("Type 'todos' to see your list or 'go /dashboard' for an overview.")
		} else {
			a.println("Type 'login' or 'register' to get started.")
		}
	case "about":
		a.println("GophTodo CLI, a terminal client for the GophTodo API.")
	case "login":
		a.println("== Log in ==")
	case "register":
		a.println("== Create an account ==")
	case "dashboard":
		a.renderDashboard(ctx)
	case "todos":
		page, _ := strconv.Atoi(to.Query.Get("page"))
		a.renderTodos(ctx, max(page, 1))
	case "todo-create":
		a.println("== New todo ==")
	case "todo-edit":
		a.renderTodo(ctx, to.Params["id"])
	case "categories":
		a.renderCategories(ctx)
	}
}

func (a *App) renderDashboard(ctx context.Context) {
	pending, err := a.api.ListTodos(ctx, models.TodoFilter{Status: models.TodoPending, PerPage: 1})
	if err != nil {
		a.reportError("load dashboard", err)
		return
	}
	completed, err := a.api.ListTodos(ctx, models.TodoFilter{Status: models.TodoCompleted, PerPage: 1})
	if err != nil {
		a.reportError("load dashboard", err)
		return
	}
	recent, err := a.api.ListTodos(ctx, models.TodoFilter{PerPage: 5, SortBy: "created_at", SortOrder: "desc"})
	if err != nil {
		a.reportError("load dashboard", err)
		return
	}

	name := ""
	if u := a.session.User(); u != nil {
		name = u.Username
	}
	a.printf("== Dashboard: %s ==\n", name)
	a.printf("Pending: %d  Completed: %d  Total: %d\n", pending.Total, completed.Total, pending.Total+completed.Total)
	if len(recent.Items) > 0 {
		a.println("Recent:")
		a.printTodos(recent.Items)
	}
}

func (a *App) renderTodos(ctx context.Context, page int) {
	list, err := a.api.ListTodos(ctx, models.TodoFilter{Page: page, PerPage: todosPerPage})
	if err != nil {
		a.reportError("load todos", err)
		return
	}

	a.printf("== Todos (page %d of %d, %d total) ==\n", list.Page, max(list.Pages, 1), list.Total)
	if len(list.Items) == 0 {
		a.println("Nothing here yet. Use 'addtodo' to create one.")
		return
	}
	a.printTodos(list.Items)
}

func (a *App) renderTodo(ctx context.Context, rawID string) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		a.println("Invalid todo id:", rawID)
		return
	}
	t, err := a.api.GetTodo(ctx, id)
	if err != nil {
		a.reportError("load todo", err)
		return
	}

	a.println("== Edit todo ==")
	a.printf("Title:       %s\n", t.Title)
	a.printf("Description: %s\n", t.Description)
	a.printf("Status:      %s\n", t.Status)
	a.printf("Priority:    %s\n", t.Priority)
	if t.DueDate != nil {
		a.printf("Due:         %s\n", t.DueDate.Format("2006-01-02"))
	}
}

func (a *App) renderCategories(ctx context.Context) {
	list, err := a.api.ListCategories(ctx)
	if err != nil {
		a.reportError("load categories", err)
		return
	}

	a.printf("== Categories (%d) ==\n", list.Total)
	if len(list.Items) == 0 {
		a.println("No categories yet. Use 'addcategory' to create one.")
		return
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCOLOR\tTODOS")
	for _, c := range list.Items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", c.ID, c.Name, colorName(c.Color), c.TodoCount)
	}
	_ = w.Flush()
}

func (a *App) printTodos(items []models.Todo) {
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDONE\tTITLE\tPRIORITY\tDUE\tCATEGORIES")
	for _, t := range items {
		done := "[ ]"
		if t.Status == models.TodoCompleted {
			done = "[x]"
		}
		due := ""
		if t.DueDate != nil {
			due = t.DueDate.Format("2006-01-02")
		}
		names := make([]string, 0, len(t.Categories))
		for _, c := range t.Categories {
			names = append(names, c.Name)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", t.ID, done, t.Title, t.Priority, due, strings.Join(names, ","))
	}
	_ = w.Flush()
}

// reportError prints a one-line failure. 401s are announced by the
// unauthorized hook already.
func (a *App) reportError(what string, err error) {
	switch client.Classify(err) {
	case client.KindAuth:
		if !a.isLoggedIn() {
			return
		}
		a.printf("Error: %s: not allowed\n", what)
	case client.KindNetwork:
		a.printf("Error: %s: server unreachable\n", what)
	default:
		msg := client.Detail(err)
		if msg == "" {
			msg = err.Error()
		}
		a.printf("Error: %s: %s\n", what, msg)
	}
}

func colorName(value string) string {
	for _, c := range models.CategoryColors {
		if strings.EqualFold(c.Value, value) {
			return c.Name
		}
	}
	return value
}
