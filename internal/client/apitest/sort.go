package apitest

import (
	"slices"
	"strings"

	"github.com/dmitrijs2005/gophtodo/internal/client/models"
)

// sortTodos orders newest first, matching the API default sort.
func sortTodos(items []models.Todo) {
	slices.SortFunc(items, func(a, b models.Todo) int {
		if c := b.CreatedAt.Compare(a.CreatedAt.Time); c != 0 {
			return c
		}
		return strings.Compare(a.Title, b.Title)
	})
}

func sortCategories(items []models.Category) {
	slices.SortFunc(items, func(a, b models.Category) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
}
