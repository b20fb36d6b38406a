package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophtodo/internal/client/models"
)

var ErrEmptyName = errors.New("name must not be empty")

// Categories shows the category list.
func (a *App) Categories(ctx context.Context) error {
	_, err := a.enter(ctx, "/categories")
	return err
}

// AddCategory creates a category on the categories page.
func (a *App) AddCategory(ctx context.Context) error {
	if _, err := a.enter(ctx, "/categories"); err != nil {
		return err
	}

	name, err := getSimpleText(a.reader, "Category name", a.out)
	if err != nil {
		return err
	}
	if name == "" {
		a.println("Error:", ErrEmptyName)
		return ErrEmptyName
	}

	colors := make([]string, len(models.CategoryColors))
	for i, c := range models.CategoryColors {
		colors[i] = c.Name
	}
	color, err := GetChoice(a.reader, "Color", colors, models.CategoryColors[0].Name, a.out)
	if err != nil {
		a.println("Error:", err)
		return err
	}

	description, err := getSimpleText(a.reader, "Description (optional)", a.out)
	if err != nil {
		return err
	}

	c, err := a.api.CreateCategory(ctx, models.CategoryCreate{
		Name:        name,
		Color:       colorValue(color),
		Description: description,
	})
	if err != nil {
		a.reportError("create category", err)
		return err
	}

	a.printf("Created category %q\n", c.Name)
	_, err = a.router.Push(ctx, "/categories")
	return err
}

func colorValue(name string) string {
	for _, c := range models.CategoryColors {
		if c.Name == name {
			return c.Value
		}
	}
	return models.DefaultCategoryColor
}
