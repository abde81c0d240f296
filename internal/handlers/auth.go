package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/Nrlsb/Logistica-Remitos/internal/middleware"
	"github.com/Nrlsb/Logistica-Remitos/internal/models"
	"github.com/Nrlsb/Logistica-Remitos/internal/session"
	"github.com/Nrlsb/Logistica-Remitos/internal/utils"
)

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Force    bool   `json:"force"`
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// userResponse is the public shape of an account
type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// login handles user login with the session mutex: an active session blocks
// the attempt with 409 unless force is set, in which case the old session is
// silently invalidated.
func (r *Router) login(w http.ResponseWriter, req *http.Request) {
	var loginReq LoginRequest
	if err := json.NewDecoder(req.Body).Decode(&loginReq); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if loginReq.Username == "" || loginReq.Password == "" {
		respondError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	token, user, err := r.guard.Login(loginReq.Username, loginReq.Password, loginReq.Force)
	switch {
	case errors.Is(err, session.ErrSessionActive):
		// Distinct from auth failure: the client shows the force-login dialog
		respondError(w, http.StatusConflict, "Ya existe una sesión activa en otro dispositivo.")
		return
	case errors.Is(err, session.ErrInvalidCredentials):
		respondError(w, http.StatusBadRequest, "Invalid credentials")
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	r.logActivity(user.Username, "login", "user", user.ID, map[string]interface{}{
		"force": loginReq.Force,
	})

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  userResponse{ID: user.ID, Username: user.Username, Role: user.Role},
	})
}

// register creates an account and opens its first session in one step
func (r *Router) register(w http.ResponseWriter, req *http.Request) {
	var regReq RegisterRequest
	if err := json.NewDecoder(req.Body).Decode(&regReq); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if regReq.Username == "" || regReq.Password == "" {
		respondError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	existing, err := r.store.AccountByUsername(regReq.Username)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if existing != nil {
		respondError(w, http.StatusBadRequest, "Username already exists")
		return
	}

	hashedPassword, err := utils.HashPassword(regReq.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	// Registration doubles as the first login
	sessionID := uuid.NewString()
	user := models.UserAccount{
		Username:         regReq.Username,
		Password:         hashedPassword,
		Role:             "user",
		CurrentSessionID: &sessionID,
		IsSessionActive:  true,
	}
	if err := r.db.Create(&user).Error; err != nil {
		respondError(w, http.StatusBadRequest, "Failed to create user (username might exist)")
		return
	}

	token, err := utils.GenerateSessionToken(&user, sessionID, r.cfg.JWTSecret, session.DefaultTokenTTL)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "User created but failed to generate token")
		return
	}

	r.logActivity(user.Username, "register", "user", user.ID, nil)

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"token": token,
		"user":  userResponse{ID: user.ID, Username: user.Username, Role: user.Role},
	})
}

// logout clears the session mutex; every outstanding token for the account
// dies with it
func (r *Router) logout(w http.ResponseWriter, req *http.Request) {
	claims := middleware.ClaimsFromContext(req.Context())

	if err := r.guard.Logout(claims.UserID); err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	r.logActivity(claims.Username, "logout", "user", claims.UserID, nil)

	respondJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// currentUser returns the authenticated account
func (r *Router) currentUser(w http.ResponseWriter, req *http.Request) {
	claims := middleware.ClaimsFromContext(req.Context())

	account, err := r.store.AccountByID(claims.UserID)
	if err != nil || account == nil {
		respondError(w, http.StatusInternalServerError, "Server Error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"id":        account.ID,
		"username":  account.Username,
		"role":      account.Role,
		"createdAt": account.CreatedAt,
	})
}
