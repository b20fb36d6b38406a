package client

import (
	"context"

	"github.com/dmitrijs2005/gophtodo/internal/client/models"
	"github.com/google/uuid"
)

// AuthAPI is the authentication surface of the remote API.
type AuthAPI interface {
	Register(ctx context.Context, in models.UserRegister) (*models.User, error)
	Login(ctx context.Context, in models.UserLogin) (*models.LoginResponse, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*models.User, error)
	Refresh(ctx context.Context) (*models.LoginResponse, error)
	GoogleLogin(ctx context.Context, idToken string) (*models.LoginResponse, error)
}

type TodoAPI interface {
	ListTodos(ctx context.Context, filter models.TodoFilter) (*models.TodoListResponse, error)
	GetTodo(ctx context.Context, id uuid.UUID) (*models.Todo, error)
	CreateTodo(ctx context.Context, in models.TodoCreate) (*models.Todo, error)
	UpdateTodo(ctx context.Context, id uuid.UUID, in models.TodoUpdate) (*models.Todo, error)
	DeleteTodo(ctx context.Context, id uuid.UUID) error
	ToggleTodo(ctx context.Context, id uuid.UUID) (*models.Todo, error)
}

type CategoryAPI interface {
	ListCategories(ctx context.Context) (*models.CategoryListResponse, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error)
	CreateCategory(ctx context.Context, in models.CategoryCreate) (*models.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, in models.CategoryUpdate) (*models.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

// Client is the full remote API.
type Client interface {
	AuthAPI
	TodoAPI
	CategoryAPI
}
