package client

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/gophtodo/internal/client/models"
	"github.com/google/uuid"
)

const (
	pathRegister    = "/auth/register"
	pathLogin       = "/auth/login"
	pathLogout      = "/auth/logout"
	pathMe          = "/auth/me"
	pathRefresh     = "/auth/refresh"
	pathGoogleLogin = "/auth/google-login"
	pathTodos       = "/todos"
	pathCategories  = "/categories"
)

// HTTPClient implements Client on top of a Dispatcher. It holds no state of
// its own.
type HTTPClient struct {
	d *Dispatcher
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(d *Dispatcher) *HTTPClient {
	return &HTTPClient{d: d}
}

func (c *HTTPClient) Register(ctx context.Context, in models.UserRegister) (*models.User, error) {
	var u models.User
	if err := c.d.Do(ctx, http.MethodPost, pathRegister, nil, in, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) Login(ctx context.Context, in models.UserLogin) (*models.LoginResponse, error) {
	return c.token(ctx, pathLogin, in)
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	return c.d.Do(ctx, http.MethodPost, pathLogout, nil, nil, nil)
}

func (c *HTTPClient) Me(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.d.Do(ctx, http.MethodGet, pathMe, nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) Refresh(ctx context.Context) (*models.LoginResponse, error) {
	return c.token(ctx, pathRefresh, nil)
}

func (c *HTTPClient) GoogleLogin(ctx context.Context, idToken string) (*models.LoginResponse, error) {
	return c.token(ctx, pathGoogleLogin, models.GoogleLogin{IDToken: idToken})
}

// token posts body to a token-issuing endpoint and insists on a non-empty
// access token in the answer.
func (c *HTTPClient) token(ctx context.Context, path string, body any) (*models.LoginResponse, error) {
	var resp models.LoginResponse
	if err := c.d.Do(ctx, http.MethodPost, path, nil, body, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, ErrEmptyToken
	}
	return &resp, nil
}

func (c *HTTPClient) ListTodos(ctx context.Context, filter models.TodoFilter) (*models.TodoListResponse, error) {
	var resp models.TodoListResponse
	if err := c.d.Do(ctx, http.MethodGet, pathTodos, filter.Query(), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) GetTodo(ctx context.Context, id uuid.UUID) (*models.Todo, error) {
	var t models.Todo
	if err := c.d.Do(ctx, http.MethodGet, pathTodos+"/"+id.String(), nil, nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *HTTPClient) CreateTodo(ctx context.Context, in models.TodoCreate) (*models.Todo, error) {
	var t models.Todo
	if err := c.d.Do(ctx, http.MethodPost, pathTodos, nil, in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *HTTPClient) UpdateTodo(ctx context.Context, id uuid.UUID, in models.TodoUpdate) (*models.Todo, error) {
	var t models.Todo
	if err := c.d.Do(ctx, http.MethodPut, pathTodos+"/"+id.String(), nil, in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *HTTPClient) DeleteTodo(ctx context.Context, id uuid.UUID) error {
	return c.d.Do(ctx, http.MethodDelete, pathTodos+"/"+id.String(), nil, nil, nil)
}

func (c *HTTPClient) ToggleTodo(ctx context.Context, id uuid.UUID) (*models.Todo, error) {
	var t models.Todo
	if err := c.d.Do(ctx, http.MethodPatch, pathTodos+"/"+id.String()+"/toggle", nil, nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *HTTPClient) ListCategories(ctx context.Context) (*models.CategoryListResponse, error) {
	var resp models.CategoryListResponse
	if err := c.d.Do(ctx, http.MethodGet, pathCategories, nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var cat models.Category
	if err := c.d.Do(ctx, http.MethodGet, pathCategories+"/"+id.String(), nil, nil, &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

func (c *HTTPClient) CreateCategory(ctx context.Context, in models.CategoryCreate) (*models.Category, error) {
	if in.Color == "" {
		in.Color = models.DefaultCategoryColor
	}
	var cat models.Category
	if err := c.d.Do(ctx, http.MethodPost, pathCategories, nil, in, &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

func (c *HTTPClient) UpdateCategory(ctx context.Context, id uuid.UUID, in models.CategoryUpdate) (*models.Category, error) {
	var cat models.Category
	if err := c.d.Do(ctx, http.MethodPut, pathCategories+"/"+id.String(), nil, in, &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

func (c *HTTPClient) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return c.d.Do(ctx, http.MethodDelete, pathCategories+"/"+id.String(), nil, nil, nil)
}
