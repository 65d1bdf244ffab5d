package api

import (
	"net/http"

	"github.com/justinas/alice"

	"github.com/cbitosc/HTF25-Team-374/internal/db"
	"github.com/cbitosc/HTF25-Team-374/internal/model"
	"github.com/cbitosc/HTF25-Team-374/internal/moderation"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(d *db.DB, jwtSecret string, svc *moderation.Service) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: d, JWTSecret: jwtSecret}
	itemsHandler := &ItemsHandler{DB: d, Service: svc}
	adminHandler := &AdminHandler{DB: d, Service: svc}
	usersHandler := &UsersHandler{DB: d}

	authed := alice.New(AuthMiddleware(jwtSecret, d))
	optional := alice.New(OptionalAuth(jwtSecret, d))
	admin := authed.Append(RequireRole(model.RoleAdmin))

	mux.HandleFunc("GET /api/health", health(d))

	// Identity.
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.Handle("POST /api/auth/logout", authed.ThenFunc(authHandler.Logout))
	mux.Handle("PUT /api/auth/password", authed.ThenFunc(authHandler.ChangePassword))

	// Public board.
	mux.HandleFunc("GET /api/home", itemsHandler.Home)
	mux.HandleFunc("GET /api/items", itemsHandler.List)
	mux.Handle("GET /api/items/{id}", optional.ThenFunc(itemsHandler.Get))
	mux.Handle("GET /api/items/{id}/image", optional.ThenFunc(itemsHandler.GetImage))

	// Submissions.
	mux.Handle("POST /api/items", authed.ThenFunc(itemsHandler.Create))
	mux.Handle("PUT /api/items/{id}/image", authed.ThenFunc(itemsHandler.UploadImage))

	// Moderation (admin only).
	mux.Handle("GET /api/admin/queue", admin.ThenFunc(adminHandler.Queue))
	mux.Handle("POST /api/admin/items/{id}/status", admin.ThenFunc(adminHandler.Transition))
	mux.Handle("GET /api/admin/items/{id}/duplicates", admin.ThenFunc(adminHandler.Duplicates))
	mux.Handle("GET /api/admin/items/{id}/history", admin.ThenFunc(adminHandler.History))
	mux.Handle("GET /api/admin/users", admin.ThenFunc(usersHandler.List))
	mux.Handle("PUT /api/admin/users/{id}/password", admin.ThenFunc(usersHandler.ResetPassword))
	mux.Handle("DELETE /api/admin/users/{id}", admin.ThenFunc(usersHandler.Delete))

	return mux
}

// health handles GET /api/health.
func health(d *db.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.PingContext(r.Context()); err != nil {
			jsonError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
