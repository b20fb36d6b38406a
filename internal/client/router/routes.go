// Package router maps client locations to pages and runs navigation guards.
package router

import (
	"net/url"
	"strings"
)

const (
	// LoginPath is where unauthenticated users are sent.
	LoginPath = "/login"
	// LandingPath is where authenticated users are sent from guest pages.
	LandingPath = "/dashboard"
)

// Route describes one page. Path segments starting with ':' match any
// single non-empty segment and are exposed as Location.Params.
type Route struct {
	Name          string
	Path          string
	RequiresAuth  bool
	RequiresGuest bool
}

// Location is a resolved navigation target.
type Location struct {
	Path   string
	Query  url.Values
	Params map[string]string
	Route  Route
}

// IsZero reports whether l is the empty location (before the first navigation).
func (l Location) IsZero() bool {
	return l.Path == ""
}

// DefaultRoutes is the page table of the to-do client.
func DefaultRoutes() []Route {
	return []Route{
		{Name: "home", Path: "/"},
		{Name: "dashboard", Path: "/dashboard", RequiresAuth: true},
		{Name: "todos", Path: "/todos", RequiresAuth: true},
		{Name: "todo-create", Path: "/todos/new", RequiresAuth: true},
		{Name: "todo-edit", Path: "/todos/:id/edit", RequiresAuth: true},
		{Name: "categories", Path: "/categories", RequiresAuth: true},
		{Name: "login", Path: LoginPath, RequiresGuest: true},
		{Name: "register", Path: "/register", RequiresGuest: true},
		{Name: "about", Path: "/about"},
	}
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// match reports whether path fits the route pattern and returns its params.
func (r Route) match(segments []string) (map[string]string, bool) {
	pattern := splitPath(r.Path)
	if len(pattern) != len(segments) {
		return nil, false
	}

	var params map[string]string
	for i, p := range pattern {
		if name, ok := strings.CutPrefix(p, ":"); ok {
			if segments[i] == "" {
				return nil, false
			}
			if params == nil {
				params = map[string]string{}
			}
			params[name] = segments[i]
			continue
		}
		if p != segments[i] {
			return nil, false
		}
	}
	return params, true
}
