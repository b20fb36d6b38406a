// Package apitest provides an in-memory fake of the to-do REST API for tests.
// It issues HS256 JWT access tokens, keeps users, todos and categories in
// maps, and lets tests force specific responses per endpoint.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/client/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenTTL is the lifetime of issued access tokens.
const TokenTTL = 30 * time.Minute

var signingKey = []byte("apitest-signing-key")

type account struct {
	user     models.User
	password string
}

type failure struct {
	status int
	detail string
}

// Server is a fake API rooted at URL().
type Server struct {
	srv *httptest.Server

	mu         sync.Mutex
	accounts   map[string]*account // by email
	tokens     map[string]string   // token -> email
	todos      map[uuid.UUID]models.Todo
	categories map[uuid.UUID]models.Category
	failures   map[string]failure // "METHOD /path" -> forced response
	calls      []string
	seq        int
	now        func() time.Time
}

// New starts a fake API and stops it when t finishes.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		accounts:   map[string]*account{},
		tokens:     map[string]string{},
		todos:      map[uuid.UUID]models.Todo{},
		categories: map[uuid.UUID]models.Category{},
		failures:   map[string]failure{},
		now:        time.Now,
	}
	s.srv = httptest.NewServer(s.routes())
	t.Cleanup(s.srv.Close)
	return s
}

// URL is the API base address, including the /api prefix.
func (s *Server) URL() string { return s.srv.URL + "/api" }

// Close stops the server; later requests fail at the transport level.
func (s *Server) Close() { s.srv.Close() }

// AddUser registers an account directly.
func (s *Server) AddUser(email, username, password string) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(email, username, password)
}

func (s *Server) addUserLocked(email, username, password string) models.User {
	u := models.User{
		ID:        uuid.New(),
		Email:     email,
		Username:  username,
		CreatedAt: models.Timestamp{Time: s.now().UTC()},
		IsActive:  true,
	}
	s.accounts[email] = &account{user: u, password: password}
	return u
}

// IssueToken mints a valid token for email.
func (s *Server) IssueToken(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueLocked(email)
}

func (s *Server) issueLocked(email string) string {
	s.seq++
	now := s.now()
	claims := jwt.MapClaims{
		"sub": email,
		"jti": strconv.Itoa(s.seq),
		"iat": now.Unix(),
		"exp": now.Add(TokenTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
	if err != nil {
		panic(err)
	}
	s.tokens[token] = email
	return token
}

// RevokeAll invalidates every issued token.
func (s *Server) RevokeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = map[string]string{}
}

// TokenValid reports whether token is currently accepted.
func (s *Server) TokenValid(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tokens[token]
	return ok
}

// Fail forces every "METHOD path" request (path without the /api prefix)
// to answer status with an optional detail. status 0 removes the override.
func (s *Server) Fail(method, path string, status int, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := method + " " + path
	if status == 0 {
		delete(s.failures, key)
		return
	}
	s.failures[key] = failure{status: status, detail: detail}
}

// Calls returns "METHOD /path" for every request received, in order.
func (s *Server) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// CountCalls counts received requests matching "METHOD /path".
func (s *Server) CountCalls(call string) int {
	n := 0
	for _, c := range s.Calls() {
		if c == call {
			n++
		}
	}
	return n
}

// AddTodo stores a todo owned by the account behind email.
func (s *Server) AddTodo(email, title string) models.Todo {
	s.mu.Lock()
	defer s.mu.Unlock()
	td := models.Todo{
		ID:        uuid.New(),
		UserID:    s.accounts[email].user.ID,
		Title:     title,
		Status:    models.TodoPending,
		CreatedAt: models.Timestamp{Time: s.now().UTC()},
	}
	s.todos[td.ID] = td
	return td
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/logout", s.authed(s.handleLogout))
	mux.HandleFunc("GET /api/auth/me", s.authed(s.handleMe))
	mux.HandleFunc("POST /api/auth/refresh", s.authed(s.handleRefresh))
	mux.HandleFunc("POST /api/auth/google-login", s.handleGoogleLogin)

	mux.HandleFunc("GET /api/todos", s.authed(s.handleListTodos))
	mux.HandleFunc("POST /api/todos", s.authed(s.handleCreateTodo))
	mux.HandleFunc("GET /api/todos/{id}", s.authed(s.handleGetTodo))
	mux.HandleFunc("PUT /api/todos/{id}", s.authed(s.handleUpdateTodo))
	mux.HandleFunc("DELETE /api/todos/{id}", s.authed(s.handleDeleteTodo))
	mux.HandleFunc("PATCH /api/todos/{id}/toggle", s.authed(s.handleToggleTodo))

	mux.HandleFunc("GET /api/categories", s.authed(s.handleListCategories))
	mux.HandleFunc("POST /api/categories", s.authed(s.handleCreateCategory))
	mux.HandleFunc("GET /api/categories/{id}", s.authed(s.handleGetCategory))
	mux.HandleFunc("PUT /api/categories/{id}", s.authed(s.handleUpdateCategory))
	mux.HandleFunc("DELETE /api/categories/{id}", s.authed(s.handleDeleteCategory))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + strings.TrimPrefix(r.URL.Path, "/api")

		s.mu.Lock()
		s.calls = append(s.calls, key)
		f, forced := s.failures[key]
		s.mu.Unlock()

		if forced {
			if f.detail == "" {
				w.WriteHeader(f.status)
				return
			}
			writeJSON(w, f.status, map[string]string{"detail": f.detail})
			return
		}
		mux.ServeHTTP(w, r)
	})
}

type authedHandler func(w http.ResponseWriter, r *http.Request, acc *account)

func (s *Server) authed(h authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.mu.Lock()
		email, valid := s.tokens[token]
		acc := s.accounts[email]
		s.mu.Unlock()

		if !ok || !valid || acc == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
			return
		}
		h(w, r, acc)
	}
}

func (s *Server) tokenResponse(email string) models.LoginResponse {
	return models.LoginResponse{
		AccessToken: s.issueLocked(email),
		TokenType:   "bearer",
		ExpiresIn:   int64(TokenTTL / time.Second),
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in models.UserRegister
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Email == "" || in.Password == "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"detail": []map[string]string{{"msg": "field required"}},
		})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[in.Email]; exists {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "User with this email already exists"})
		return
	}
	writeJSON(w, http.StatusCreated, s.addUserLocked(in.Email, in.Username, in.Password))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in models.UserLogin
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[in.Email]
	if !ok || acc.password != in.Password {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, s.tokenResponse(in.Email))
}

func (s *Server) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	var in models.GoogleLogin
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.IDToken == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Invalid Google token"})
		return
	}

	// The fake accepts id tokens of the form "google:<email>".
	email, ok := strings.CutPrefix(in.IDToken, "google:")
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid Google token"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[email]; !exists {
		s.addUserLocked(email, strings.Split(email, "@")[0], "")
	}
	writeJSON(w, http.StatusOK, s.tokenResponse(email))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request, _ *account) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, _ *http.Request, acc *account) {
	writeJSON(w, http.StatusOK, acc.user)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request, acc *account) {
	old := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, old)
	writeJSON(w, http.StatusOK, s.tokenResponse(acc.user.Email))
}

func (s *Server) handleListTodos(w http.ResponseWriter, r *http.Request, acc *account) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	if perPage < 1 {
		perPage = 20
	}
	status := q.Get("status")

	s.mu.Lock()
	var items []models.Todo
	for _, td := range s.todos {
		if td.UserID != acc.user.ID {
			continue
		}
		if status != "" && string(td.Status) != status {
			continue
		}
		items = append(items, td)
	}
	s.mu.Unlock()

	sortTodos(items)

	total := len(items)
	start := min((page-1)*perPage, total)
	end := min(start+perPage, total)
	pages := (total + perPage - 1) / perPage

	writeJSON(w, http.StatusOK, models.TodoListResponse{
		Items:   append([]models.Todo{}, items[start:end]...),
		Total:   total,
		Page:    page,
		PerPage: perPage,
		Pages:   pages,
	})
}

func (s *Server) handleCreateTodo(w http.ResponseWriter, r *http.Request, acc *account) {
	var in models.TodoCreate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || strings.TrimSpace(in.Title) == "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"detail": []map[string]string{{"msg": "title must not be empty"}},
		})
		return
	}
	status := in.Status
	if status == "" {
		status = models.TodoPending
	}
	due, err := parseDue(in.DueDate)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "invalid due_date"})
		return
	}

	s.mu.Lock()
	td := models.Todo{
		ID:          uuid.New(),
		UserID:      acc.user.ID,
		Title:       in.Title,
		Description: in.Description,
		Status:      status,
		Priority:    in.Priority,
		DueDate:     due,
		CreatedAt:   models.Timestamp{Time: s.now().UTC()},
		CategoryIDs: in.CategoryIDs,
	}
	s.todos[td.ID] = td
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, td)
}

func (s *Server) ownedTodo(w http.ResponseWriter, r *http.Request, acc *account) (models.Todo, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "invalid id"})
		return models.Todo{}, false
	}
	s.mu.Lock()
	td, ok := s.todos[id]
	s.mu.Unlock()
	if !ok || td.UserID != acc.user.ID {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Todo not found"})
		return models.Todo{}, false
	}
	return td, true
}

func (s *Server) handleGetTodo(w http.ResponseWriter, r *http.Request, acc *account) {
	if td, ok := s.ownedTodo(w, r, acc); ok {
		writeJSON(w, http.StatusOK, td)
	}
}

func (s *Server) handleUpdateTodo(w http.ResponseWriter, r *http.Request, acc *account) {
	td, ok := s.ownedTodo(w, r, acc)
	if !ok {
		return
	}
	var in models.TodoUpdate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		return
	}
	if in.Title != nil {
		td.Title = *in.Title
	}
	if in.Description != nil {
		td.Description = *in.Description
	}
	if in.Status != nil {
		td.Status = *in.Status
	}
	if in.Priority != nil {
		td.Priority = *in.Priority
	}
	if in.CategoryIDs != nil {
		td.CategoryIDs = in.CategoryIDs
	}
	if in.DueDate != nil {
		due, err := parseDue(*in.DueDate)
		if err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "invalid due_date"})
			return
		}
		td.DueDate = due
	}

	s.mu.Lock()
	td.UpdatedAt = &models.Timestamp{Time: s.now().UTC()}
	s.todos[td.ID] = td
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, td)
}

func (s *Server) handleDeleteTodo(w http.ResponseWriter, r *http.Request, acc *account) {
	td, ok := s.ownedTodo(w, r, acc)
	if !ok {
		return
	}
	s.mu.Lock()
	delete(s.todos, td.ID)
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggleTodo(w http.ResponseWriter, r *http.Request, acc *account) {
	td, ok := s.ownedTodo(w, r, acc)
	if !ok {
		return
	}
	if td.Status == models.TodoCompleted {
		td.Status = models.TodoPending
	} else {
		td.Status = models.TodoCompleted
	}
	s.mu.Lock()
	s.todos[td.ID] = td
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, td)
}

func (s *Server) handleListCategories(w http.ResponseWriter, _ *http.Request, acc *account) {
	s.mu.Lock()
	items := []models.Category{}
	for _, c := range s.categories {
		if c.UserID != acc.user.ID {
			continue
		}
		c.TodoCount = 0
		for _, td := range s.todos {
			for _, id := range td.CategoryIDs {
				if id == c.ID {
					c.TodoCount++
				}
			}
		}
		items = append(items, c)
	}
	s.mu.Unlock()

	sortCategories(items)
	writeJSON(w, http.StatusOK, models.CategoryListResponse{Items: items, Total: len(items)})
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request, acc *account) {
	var in models.CategoryCreate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || strings.TrimSpace(in.Name) == "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "name is required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if c.UserID == acc.user.ID && strings.EqualFold(c.Name, in.Name) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": fmt.Sprintf("Category '%s' already exists", in.Name)})
			return
		}
	}
	c := models.Category{
		ID:          uuid.New(),
		UserID:      acc.user.ID,
		Name:        in.Name,
		Color:       in.Color,
		Description: in.Description,
		CreatedAt:   models.Timestamp{Time: s.now().UTC()},
	}
	s.categories[c.ID] = c
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) ownedCategory(w http.ResponseWriter, r *http.Request, acc *account) (models.Category, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "invalid id"})
		return models.Category{}, false
	}
	s.mu.Lock()
	c, ok := s.categories[id]
	s.mu.Unlock()
	if !ok || c.UserID != acc.user.ID {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Category not found"})
		return models.Category{}, false
	}
	return c, true
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request, acc *account) {
	if c, ok := s.ownedCategory(w, r, acc); ok {
		writeJSON(w, http.StatusOK, c)
	}
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request, acc *account) {
	c, ok := s.ownedCategory(w, r, acc)
	if !ok {
		return
	}
	var in models.CategoryUpdate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		return
	}
	if in.Name != nil {
		c.Name = *in.Name
	}
	if in.Color != nil {
		c.Color = *in.Color
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
	s.mu.Lock()
	s.categories[c.ID] = c
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request, acc *account) {
	c, ok := s.ownedCategory(w, r, acc)
	if !ok {
		return
	}
	s.mu.Lock()
	delete(s.categories, c.ID)
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

// parseDue reads an optional YYYY-MM-DD date.
func parseDue(s string) (*models.Timestamp, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &models.Timestamp{Time: t}, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
