package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/client/models"
	"github.com/dmitrijs2005/gophtodo/internal/common"
	"github.com/google/uuid"
)

var (
	ErrInvalidID   = errors.New("invalid id")
	ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")
	ErrEmptyTitle  = errors.New("title must not be empty")
)

var (
	priorityChoices = []string{string(models.PriorityLow), string(models.PriorityMedium), string(models.PriorityHigh)}
	statusChoices   = []string{string(models.TodoPending), string(models.TodoCompleted)}
)

// Todos shows one page of the todo list.
func (a *App) Todos(ctx context.Context, page int) error {
	_, err := a.enter(ctx, fmt.Sprintf("/todos?page=%d", page))
	return err
}

// AddTodo opens the new-todo page and creates a todo from the answers.
func (a *App) AddTodo(ctx context.Context) error {
	if _, err := a.enter(ctx, "/todos/new"); err != nil {
		return err
	}

	title, err := getSimpleText(a.reader, "Title", a.out)
	if err != nil {
		return err
	}
	if title == "" {
		a.println("Error:", ErrEmptyTitle)
		return ErrEmptyTitle
	}
	description, err := getSimpleText(a.reader, "Description (optional)", a.out)
	if err != nil {
		return err
	}
	priority, err := GetChoice(a.reader, "Priority", priorityChoices, string(models.PriorityMedium), a.out)
	if err != nil {
		a.println("Error:", err)
		return err
	}
	due, err := a.askDate("Due date YYYY-MM-DD (optional)", "")
	if err != nil {
		return err
	}
	categoryIDs, err := a.askCategories(ctx)
	if err != nil {
		return err
	}

	t, err := a.api.CreateTodo(ctx, models.TodoCreate{
		Title:       title,
		Description: description,
		Priority:    models.TodoPriority(priority),
		DueDate:     due,
		CategoryIDs: categoryIDs,
	})
	if err != nil {
		a.reportError("create todo", err)
		return err
	}

	a.printf("Created todo %s\n", t.ID)
	_, err = a.router.Push(ctx, "/todos")
	return err
}

// EditTodo opens the edit page of a todo and applies the changed fields.
// Empty answers keep the current value.
func (a *App) EditTodo(ctx context.Context, rawID string) error {
	id, err := a.parseID(rawID)
	if err != nil {
		return err
	}
	if _, err := a.enter(ctx, "/todos/"+id.String()+"/edit"); err != nil {
		return err
	}

	current, err := a.api.GetTodo(ctx, id)
	if err != nil {
		a.reportError("load todo", err)
		return err
	}

	var upd models.TodoUpdate
	if title, err := getSimpleText(a.reader, "New title (empty keeps current)", a.out); err != nil {
		return err
	} else if title != "" && title != current.Title {
		upd.Title = &title
	}
	if desc, err := getSimpleText(a.reader, "New description (empty keeps current)", a.out); err != nil {
		return err
	} else if desc != "" && desc != current.Description {
		upd.Description = &desc
	}

	priority, err := GetChoice(a.reader, "Priority", priorityChoices, orDefault(string(current.Priority), string(models.PriorityMedium)), a.out)
	if err != nil {
		a.println("Error:", err)
		return err
	}
	if p := models.TodoPriority(priority); p != current.Priority {
		upd.Priority = &p
	}

	status, err := GetChoice(a.reader, "Status", statusChoices, string(current.Status), a.out)
	if err != nil {
		a.println("Error:", err)
		return err
	}
	if s := models.TodoStatus(status); s != current.Status {
		upd.Status = &s
	}

	currentDue := ""
	if current.DueDate != nil {
		currentDue = current.DueDate.Format("2006-01-02")
	}
	due, err := a.askDate("Due date YYYY-MM-DD (empty keeps current)", currentDue)
	if err != nil {
		return err
	}
	if due != currentDue {
		upd.DueDate = &due
	}

	if _, err := a.api.UpdateTodo(ctx, id, upd); err != nil {
		a.reportError("update todo", err)
		return err
	}

	a.println("Todo updated.")
	_, err = a.router.Push(ctx, "/todos")
	return err
}

// ToggleTodo flips a todo between pending and completed.
func (a *App) ToggleTodo(ctx context.Context, rawID string) error {
	id, err := a.parseID(rawID)
	if err != nil {
		return err
	}

	t, err := a.api.ToggleTodo(ctx, id)
	if err != nil {
		a.reportError("toggle todo", err)
		return err
	}

	a.printf("%q is now %s\n", t.Title, t.Status)
	_, err = a.router.Push(ctx, "/todos")
	return err
}

// DeleteTodo removes a todo after confirmation.
func (a *App) DeleteTodo(ctx context.Context, rawID string) error {
	id, err := a.parseID(rawID)
	if err != nil {
		return err
	}

	answer, err := getSimpleText(a.reader, "Delete this todo? Type 'yes' to confirm", a.out)
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "yes") {
		a.println("Cancelled.")
		return nil
	}

	if err := a.api.DeleteTodo(ctx, id); err != nil {
		a.reportError("delete todo", err)
		return err
	}

	a.println("Todo deleted.")
	_, err = a.router.Push(ctx, "/todos")
	return err
}

func (a *App) parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		a.println("Error: not a valid id:", raw)
		return uuid.Nil, fmt.Errorf("%w: %q", ErrInvalidID, raw)
	}
	return id, nil
}

// askDate reads an optional YYYY-MM-DD date; empty input yields def.
func (a *App) askDate(prompt, def string) (string, error) {
	answer, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	if _, err := time.Parse("2006-01-02", answer); err != nil {
		a.println("Error:", ErrInvalidDate)
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, answer)
	}
	return answer, nil
}

// askCategories reads a comma separated list of category names and maps
// them to ids. Unknown names are reported and skipped.
func (a *App) askCategories(ctx context.Context) ([]uuid.UUID, error) {
	answer, err := getSimpleText(a.reader, "Categories, comma separated (optional)", a.out)
	if err != nil {
		return nil, err
	}
	names := common.SplitCSV(answer)
	if len(names) == 0 {
		return nil, nil
	}

	list, err := a.api.ListCategories(ctx)
	if err != nil {
		a.reportError("load categories", err)
		return nil, err
	}

	var ids []uuid.UUID
	for _, name := range names {
		found := false
		for _, c := range list.Items {
			if strings.EqualFold(c.Name, name) {
				ids = append(ids, c.ID)
				found = true
				break
			}
		}
		if !found {
			a.println("Unknown category skipped:", name)
		}
	}
	return ids, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
