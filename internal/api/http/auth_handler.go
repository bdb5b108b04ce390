package http

import (
	"net/http"

	"duedesk-backend/internal/domain"
	"duedesk-backend/internal/service"
)

type AuthHandler struct {
	auth service.AuthService
}

func NewAuthHandler(auth service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if req.Username == "" || req.Password == "" {
		respondError(w, r, domain.NewInvalidInput("username and password are required"))
		return
	}

	token, admin, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, envelope{
		"success": true,
		"token":   token,
		"user":    admin,
		"message": "Login successful",
	})
}

// Verify confirms the bearer token is still valid. Reaching the handler means
// the auth middleware already accepted it.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r)
	if !ok {
		respondErrorMessage(w, http.StatusUnauthorized, "Invalid token")
		return
	}
	respond(w, http.StatusOK, envelope{
		"success": true,
		"valid":   true,
		"user": envelope{
			"id":       claims.AdminID,
			"username": claims.Username,
			"email":    claims.Email,
			"fullName": claims.FullName,
			"role":     claims.Role,
		},
	})
}

func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r)
	if !ok {
		respondErrorMessage(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	admin, err := h.auth.Profile(r.Context(), claims.AdminID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, admin)
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r)
	if !ok {
		respondErrorMessage(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	if err := h.auth.ChangePassword(r.Context(), claims.AdminID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, envelope{
		"success": true,
		"message": "Password changed successfully",
	})
}

// Logout is stateless: tokens expire on their own, the endpoint only lets the
// client confirm the session ended.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, envelope{
		"success": true,
		"message": "Logged out successfully",
	})
}
