package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/Nrlsb/Logistica-Remitos/internal/buildinfo"
	"github.com/Nrlsb/Logistica-Remitos/internal/config"
	"github.com/Nrlsb/Logistica-Remitos/internal/database"
	"github.com/Nrlsb/Logistica-Remitos/internal/middleware"
	"github.com/Nrlsb/Logistica-Remitos/internal/models"
	"github.com/Nrlsb/Logistica-Remitos/internal/session"
	"github.com/Nrlsb/Logistica-Remitos/internal/store"
	"github.com/Nrlsb/Logistica-Remitos/internal/websocket"
)

// Router wraps the mux router with the handlers' collaborators
type Router struct {
	*mux.Router
	db    *database.DB
	store *store.Store
	guard *session.Guard
	hub   *websocket.Hub
	cfg   *config.Config
}

// NewRouter creates a new HTTP router with all routes
func NewRouter(db *database.DB, cfg *config.Config, guard *session.Guard, hub *websocket.Hub) *Router {
	r := &Router{
		Router: mux.NewRouter(),
		db:     db,
		store:  store.NewStore(db),
		guard:  guard,
		hub:    hub,
		cfg:    cfg,
	}

	// Health check endpoint
	r.HandleFunc("/health", r.healthCheck).Methods("GET")
	r.HandleFunc("/api/status", r.getStatus).Methods("GET")

	// Public auth routes
	r.HandleFunc("/api/auth/register", r.register).Methods("POST")
	r.HandleFunc("/api/auth/login", r.login).Methods("POST")

	// ERP webhook (trusted network, pushes expected orders)
	r.HandleFunc("/api/protheus/pre-remito", r.receivePreRemito).Methods("POST")

	// Dashboard event stream
	r.HandleFunc("/ws", func(w http.ResponseWriter, req *http.Request) {
		websocket.ServeWs(hub, w, req)
	})

	// Protected routes: every request re-validates the session mutex
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.AuthMiddleware(guard))

	api.HandleFunc("/auth/logout", r.logout).Methods("POST")
	api.HandleFunc("/auth/user", r.currentUser).Methods("GET")

	api.HandleFunc("/products/{barcode}", r.getProduct).Methods("GET")
	api.HandleFunc("/public/preparers", r.listPreparers).Methods("GET")

	api.HandleFunc("/pre-remitos", r.listPreRemitos).Methods("GET")
	api.HandleFunc("/pre-remitos/{orderNumber}", r.getPreRemito).Methods("GET")
	api.HandleFunc("/pre-remitos/{orderNumber}/draft", r.savePreRemitoDraft).Methods("PATCH")

	api.HandleFunc("/remitos", r.listRemitos).Methods("GET")
	api.HandleFunc("/remitos", r.createRemito).Methods("POST")
	api.HandleFunc("/remitos/{id}", r.getRemito).Methods("GET")
	api.HandleFunc("/remitos/{id}", r.updateRemito).Methods("PATCH")
	api.HandleFunc("/remitos/{id}/labels", r.printRemitoLabels).Methods("GET")

	// Admin-only user management
	admin := api.NewRoute().Subrouter()
	admin.Use(middleware.RequireRole("admin"))
	admin.HandleFunc("/users", r.listUsers).Methods("GET")
	admin.HandleFunc("/users/{id}/tasks", r.updateUserTasks).Methods("PATCH")
	admin.HandleFunc("/admin/users", r.createUser).Methods("POST")

	// Static files: the built SPA
	r.PathPrefix("/").Handler(http.FileServer(http.Dir(cfg.FrontendDir)))

	return r
}

// healthCheck returns the health status of the API
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// getStatus returns build and uptime information
func (r *Router) getStatus(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":     "running",
		"buildTime":  buildinfo.BuildTime,
		"commitHash": buildinfo.CommitHash,
		"startedAt":  buildinfo.StartTime,
	})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// logActivity appends to the audit trail. Best effort: a failed insert is
// logged, never surfaced to the request.
func (r *Router) logActivity(username, action, entityType, entityID string, details map[string]interface{}) {
	var payload []byte
	if details != nil {
		payload, _ = json.Marshal(details)
	}
	entry := models.ActivityLog{
		Username:   username,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    payload,
		CreatedAt:  time.Now().UTC(),
	}
	if err := r.db.Create(&entry).Error; err != nil {
		log.Printf("⚠️  Failed to log activity %s: %v", action, err)
	}
}
