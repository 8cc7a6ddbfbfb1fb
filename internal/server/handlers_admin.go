package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/andresilva/b3folio/internal/common"
	"github.com/andresilva/b3folio/internal/models"
)

// requireAdmin checks the resolved identity for the admin role. While the
// user table is empty the check passes, so the first admin account can be
// created without an existing credential.
func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	uc := common.UserContextFromContext(r.Context())
	if uc != nil && uc.Role == models.RoleAdmin {
		return true
	}

	if ids, err := s.storage.InternalStore().ListUsers(r.Context()); err == nil && len(ids) == 0 {
		return true
	}

	if uc == nil {
		WriteError(w, http.StatusUnauthorized, "Authentication required")
	} else {
		WriteError(w, http.StatusForbidden, "Admin access required")
	}
	return false
}

// validateUserID checks that a user ID is safe for storage.
func validateUserID(userID string) string {
	if userID == "" {
		return "user_id is required"
	}
	if len(userID) > 128 {
		return "user_id must be 128 characters or fewer"
	}
	for _, c := range userID {
		if c < 0x20 || c == 0x7f {
			return "user_id contains invalid control characters"
		}
	}
	return ""
}

// handleAdminUsers handles /api/admin/users — POST creates an account,
// GET lists the stored accounts.
func (s *Server) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	if !s.requireAdmin(w, r) {
		return
	}

	ctx := r.Context()
	store := s.storage.InternalStore()

	if r.Method == http.MethodGet {
		ids, err := store.ListUsers(ctx)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "Failed to list users: "+err.Error())
			return
		}
		users := make([]*models.InternalUser, 0, len(ids))
		for _, id := range ids {
			if user, err := store.GetUser(ctx, id); err == nil {
				users = append(users, user)
			}
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{"users": users})
		return
	}

	var req struct {
		UserID   string `json:"user_id"`
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	if msg := validateUserID(req.UserID); msg != "" {
		WriteError(w, http.StatusBadRequest, msg)
		return
	}
	if req.Password == "" {
		WriteError(w, http.StatusBadRequest, "password is required")
		return
	}
	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	switch role {
	case models.RoleUser, models.RoleAdmin, models.RoleService:
	default:
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid role %q", req.Role))
		return
	}

	if _, err := store.GetUser(ctx, req.UserID); err == nil {
		WriteError(w, http.StatusConflict, fmt.Sprintf("user '%s' already exists", req.UserID))
		return
	}

	user := &models.InternalUser{
		UserID: req.UserID,
		Email:  req.Email,
		Name:   req.Name,
		Role:   role,
	}
	if err := user.SetPassword(req.Password); err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		WriteError(w, http.StatusInternalServerError, "failed to create user")
		return
	}
	if err := store.SaveUser(ctx, user); err != nil {
		s.logger.Error().Err(err).Str("user_id", req.UserID).Msg("Failed to save user")
		WriteError(w, http.StatusInternalServerError, "failed to save user")
		return
	}

	WriteJSON(w, http.StatusCreated, user)
}

// handleAdminUserByID dispatches GET/DELETE for /api/admin/users/{id}.
func (s *Server) handleAdminUserByID(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodDelete) {
		return
	}
	if !s.requireAdmin(w, r) {
		return
	}

	userID := strings.TrimPrefix(r.URL.Path, "/api/admin/users/")
	if userID == "" {
		WriteError(w, http.StatusBadRequest, "user_id is required in path")
		return
	}

	ctx := r.Context()
	store := s.storage.InternalStore()

	switch r.Method {
	case http.MethodGet:
		user, err := store.GetUser(ctx, userID)
		if err != nil {
			WriteError(w, http.StatusNotFound, fmt.Sprintf("user '%s' not found", userID))
			return
		}
		WriteJSON(w, http.StatusOK, user)

	case http.MethodDelete:
		if _, err := store.GetUser(ctx, userID); err != nil {
			WriteError(w, http.StatusNotFound, fmt.Sprintf("user '%s' not found", userID))
			return
		}
		if err := store.DeleteUser(ctx, userID); err != nil {
			WriteError(w, http.StatusInternalServerError, "Failed to delete user: "+err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted", "user_id": userID})
	}
}

// handleAdminConfig handles /api/admin/config/{key} — GET reads a system
// configuration entry, PUT stores one. API keys resolved at startup
// (brapi_api_key, gemini_api_key) live here.
func (s *Server) handleAdminConfig(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPut) {
		return
	}
	if !s.requireAdmin(w, r) {
		return
	}

	key := strings.TrimPrefix(r.URL.Path, "/api/admin/config/")
	if key == "" || strings.Contains(key, "/") {
		WriteError(w, http.StatusBadRequest, "config key is required in path")
		return
	}

	ctx := r.Context()
	store := s.storage.InternalStore()

	switch r.Method {
	case http.MethodGet:
		value, err := store.GetSystemKV(ctx, key)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "Failed to read config: "+err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"key": key, "value": value})

	case http.MethodPut:
		var req struct {
			Value string `json:"value"`
		}
		if !DecodeJSON(w, r, &req) {
			return
		}
		if err := store.SetSystemKV(ctx, key, req.Value); err != nil {
			WriteError(w, http.StatusInternalServerError, "Failed to save config: "+err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"key": key, "value": req.Value})
	}
}
