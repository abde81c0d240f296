package handlers

import (
	"encoding/json"
	"net/http"
	"regexp"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/datatypes"

	"github.com/Nrlsb/Logistica-Remitos/internal/middleware"
	"github.com/Nrlsb/Logistica-Remitos/internal/models"
	"github.com/Nrlsb/Logistica-Remitos/internal/utils"
)

var userCodePattern = regexp.MustCompile(`^\d{3}$`)

// userListEntry is the admin user list row
type userListEntry struct {
	ID              string      `json:"id"`
	Username        string      `json:"username"`
	UserCode        string      `json:"userCode"`
	Role            string      `json:"role"`
	Tasks           []string    `json:"tasks"`
	IsSessionActive bool        `json:"isSessionActive"`
	CreatedAt       interface{} `json:"createdAt"`
}

// listUsers returns all accounts for the admin panel
func (r *Router) listUsers(w http.ResponseWriter, req *http.Request) {
	var users []models.UserAccount
	if err := r.db.Order("created_at DESC").Find(&users).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	result := make([]userListEntry, 0, len(users))
	for _, u := range users {
		tasks := u.TaskList()
		if tasks == nil {
			tasks = []string{}
		}
		result = append(result, userListEntry{
			ID:              u.ID,
			Username:        u.Username,
			UserCode:        u.UserCode,
			Role:            u.Role,
			Tasks:           tasks,
			IsSessionActive: u.IsSessionActive,
			CreatedAt:       u.CreatedAt,
		})
	}

	respondJSON(w, http.StatusOK, result)
}

// listPreparers returns the users whose duties include picking orders.
// Exposed to every authenticated operator so the dispatch form can offer a
// "prepared by" choice.
func (r *Router) listPreparers(w http.ResponseWriter, req *http.Request) {
	var users []models.UserAccount
	if err := r.db.Order("username").Find(&users).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	type preparer struct {
		Username string   `json:"username"`
		UserCode string   `json:"user_code"`
		Tasks    []string `json:"tasks"`
	}
	result := make([]preparer, 0)
	for _, u := range users {
		if u.HasTask("Preparador") {
			result = append(result, preparer{
				Username: u.Username,
				UserCode: u.UserCode,
				Tasks:    u.TaskList(),
			})
		}
	}

	respondJSON(w, http.StatusOK, result)
}

// updateUserTasks replaces an account's duty list (admin only)
func (r *Router) updateUserTasks(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)
	id := vars["id"]

	var body struct {
		Tasks []string `json:"tasks"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if body.Tasks == nil {
		respondError(w, http.StatusBadRequest, "Tasks must be an array")
		return
	}

	tasksJSON, err := json.Marshal(body.Tasks)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	var user models.UserAccount
	if err := r.db.Where("id = ?", id).First(&user).Error; err != nil {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}

	user.Tasks = datatypes.JSON(tasksJSON)
	if err := r.db.Save(&user).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	claims := middleware.ClaimsFromContext(req.Context())
	r.logActivity(claims.Username, "update_user_tasks", "user", id, map[string]interface{}{
		"new_tasks": body.Tasks,
	})

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"id":       user.ID,
		"username": user.Username,
		"role":     user.Role,
		"tasks":    body.Tasks,
	})
}

// CreateUserRequest is the admin user creation payload
type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	UserCode string `json:"user_code"`
	Role     string `json:"role"`
}

// createUser provisions an account from the admin panel. Unlike register,
// the new account starts with no session: the operator logs in themselves.
func (r *Router) createUser(w http.ResponseWriter, req *http.Request) {
	var body CreateUserRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if body.Username == "" || body.Password == "" || body.UserCode == "" || body.Role == "" {
		respondError(w, http.StatusBadRequest, "All fields are required")
		return
	}
	if !userCodePattern.MatchString(body.UserCode) {
		respondError(w, http.StatusBadRequest, "User code must be exactly 3 digits")
		return
	}
	if body.Role != "admin" && body.Role != "supervisor" && body.Role != "user" {
		respondError(w, http.StatusBadRequest, "Invalid role")
		return
	}

	var count int64
	err := r.db.Model(&models.UserAccount{}).
		Where("username = ? OR user_code = ?", body.Username, body.UserCode).
		Count(&count).Error
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if count > 0 {
		respondError(w, http.StatusBadRequest, "Username or User Code already exists")
		return
	}

	hashedPassword, err := utils.HashPassword(body.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	user := models.UserAccount{
		ID:       uuid.NewString(),
		Username: body.Username,
		Password: hashedPassword,
		UserCode: body.UserCode,
		Role:     body.Role,
		Tasks:    datatypes.JSON("[]"),
	}
	if err := r.db.Create(&user).Error; err != nil {
		respondError(w, http.StatusBadRequest, "Username or User Code already exists")
		return
	}

	claims := middleware.ClaimsFromContext(req.Context())
	r.logActivity(claims.Username, "admin_create_user", "user", user.ID, map[string]interface{}{
		"new_username": body.Username,
		"role":         body.Role,
		"user_code":    body.UserCode,
	})

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"id":        user.ID,
		"username":  user.Username,
		"role":      user.Role,
		"user_code": user.UserCode,
		"createdAt": user.CreatedAt,
	})
}
