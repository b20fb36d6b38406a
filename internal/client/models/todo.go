package models

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

type TodoStatus string

const (
	TodoPending   TodoStatus = "pending"
	TodoCompleted TodoStatus = "completed"
)

type TodoPriority string

const (
	PriorityLow    TodoPriority = "low"
	PriorityMedium TodoPriority = "medium"
	PriorityHigh   TodoPriority = "high"
)

// CategoryRef is the short category form embedded in a Todo.
type CategoryRef struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Color       string    `json:"color"`
	Description string    `json:"description,omitempty"`
}

type Todo struct {
	ID          uuid.UUID     `json:"id"`
	UserID      uuid.UUID     `json:"user_id"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Status      TodoStatus    `json:"status"`
	Priority    TodoPriority  `json:"priority,omitempty"`
	DueDate     *Timestamp    `json:"due_date,omitempty"`
	CreatedAt   Timestamp     `json:"created_at"`
	UpdatedAt   *Timestamp    `json:"updated_at,omitempty"`
	CategoryIDs []uuid.UUID   `json:"category_ids,omitempty"`
	Categories  []CategoryRef `json:"categories,omitempty"`
}

type TodoCreate struct {
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Status      TodoStatus   `json:"status,omitempty"`
	Priority    TodoPriority `json:"priority,omitempty"`
	DueDate     string       `json:"due_date,omitempty"`
	CategoryIDs []uuid.UUID  `json:"category_ids,omitempty"`
}

// TodoUpdate is a partial update; nil fields are left unchanged server-side.
type TodoUpdate struct {
	Title       *string       `json:"title,omitempty"`
	Description *string       `json:"description,omitempty"`
	Status      *TodoStatus   `json:"status,omitempty"`
	Priority    *TodoPriority `json:"priority,omitempty"`
	DueDate     *string       `json:"due_date,omitempty"`
	CategoryIDs []uuid.UUID   `json:"category_ids,omitempty"`
}

type TodoListResponse struct {
	Items   []Todo `json:"items"`
	Total   int    `json:"total"`
	Page    int    `json:"page"`
	PerPage int    `json:"per_page"`
	Pages   int    `json:"pages"`
}

// TodoFilter carries the query parameters of GET /todos. Zero values are
// omitted from the query string.
type TodoFilter struct {
	Page        int
	PerPage     int
	Status      TodoStatus
	SortBy      string
	SortOrder   string
	Search      string
	Priority    TodoPriority
	CategoryIDs []uuid.UUID
	DueDateFrom string
	DueDateTo   string
}

// Query encodes f as URL query values.
func (f TodoFilter) Query() url.Values {
	q := url.Values{}
	setInt := func(k string, v int) {
		if v > 0 {
			q.Set(k, strconv.Itoa(v))
		}
	}
	setStr := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}

	setInt("page", f.Page)
	setInt("per_page", f.PerPage)
	setStr("status", string(f.Status))
	setStr("sort_by", f.SortBy)
	setStr("sort_order", f.SortOrder)
	setStr("search", f.Search)
	setStr("priority", string(f.Priority))
	if len(f.CategoryIDs) > 0 {
		ids := make([]string, len(f.CategoryIDs))
		for i, id := range f.CategoryIDs {
			ids[i] = id.String()
		}
		q.Set("category_ids", strings.Join(ids, ","))
	}
	setStr("due_date_from", f.DueDateFrom)
	setStr("due_date_to", f.DueDateTo)
	return q
}
