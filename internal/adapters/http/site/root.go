// Package site serves the login page and the dashboard's static assets.
package site

import (
	"context"
	"net/http"
)

const (
	dashboardPath = "/dashboard"
	loginPage     = "login.html"
)

// Register attaches the login page, static assets and the root redirect to mux.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	root := NewRootHandler()
	mux.HandleFunc("/", root.HandleRoot)
	mux.HandleFunc("/login", root.HandleLogin)
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(FS())))
}

// RootHandler handles root path requests
type RootHandler struct{}

// NewRootHandler creates a new root handler
func NewRootHandler() *RootHandler {
	return &RootHandler{}
}

// HandleRoot redirects / to the dashboard; any other unmatched path is 404.
func (h *RootHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, dashboardPath, http.StatusFound)
}

// HandleLogin serves the embedded login page.
func (h *RootHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	http.ServeFileFS(w, r, staticSub, loginPage)
}
