package models

import "github.com/google/uuid"

type Category struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Name        string     `json:"name"`
	Color       string     `json:"color"`
	Description string     `json:"description,omitempty"`
	CreatedAt   Timestamp  `json:"created_at"`
	UpdatedAt   *Timestamp `json:"updated_at,omitempty"`
	TodoCount   int        `json:"todo_count"`
}

type CategoryCreate struct {
	Name        string `json:"name"`
	Color       string `json:"color,omitempty"`
	Description string `json:"description,omitempty"`
}

type CategoryUpdate struct {
	Name        *string `json:"name,omitempty"`
	Color       *string `json:"color,omitempty"`
	Description *string `json:"description,omitempty"`
}

type CategoryListResponse struct {
	Items []Category `json:"items"`
	Total int        `json:"total"`
}

type CategoryColor struct {
	Name  string
	Value string
}

// CategoryColors is the palette offered when creating a category.
var CategoryColors = []CategoryColor{
	{"Blue", "#1976d2"},
	{"Green", "#388e3c"},
	{"Orange", "#f57c00"},
	{"Purple", "#7b1fa2"},
	{"Red", "#d32f2f"},
	{"Teal", "#00796b"},
	{"Indigo", "#303f9f"},
	{"Pink", "#c2185b"},
	{"Brown", "#5d4037"},
	{"Blue Grey", "#455a64"},
	{"Deep Orange", "#e64a19"},
	{"Lime", "#689f38"},
}

// DefaultCategoryColor is used when the user does not pick one.
var DefaultCategoryColor = CategoryColors[0].Value
