package api

import (
	"net/http"
)

// LoginPath is where unauthenticated dashboard visits are sent.
const LoginPath = "/login"

// dashboardHandler handles dashboard requests
type dashboardHandler struct {
	auth *AuthHandler
}

func newDashboardHandler(auth *AuthHandler) *dashboardHandler {
	return &dashboardHandler{auth: auth}
}

// HandleDashboard handles GET /dashboard requests. Visitors without a live
// session are redirected to the login page.
func (h *dashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	if _, ok := h.auth.session(r); !ok {
		http.Redirect(w, r, LoginPath, http.StatusSeeOther)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	http.ServeFileFS(w, r, dashboardFS, "dashboard.html")
}
