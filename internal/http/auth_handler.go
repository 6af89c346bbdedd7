package api

import (
	"encoding/json"
	"net/http"
)

type registerRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"name"`
	Password    string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// @Summary     Register
// @Tags        auth
// @Accept      json
// @Param       request  body  registerRequest  true  "Credentials"
// @Success     201  {object}  map[string]any
// @Failure     400  {object}  map[string]string
// @Router      /auth/register [post]
func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	u, sess, err := h.idp.SignUp(r.Context(), req.Email, req.DisplayName, req.Password)
	if err != nil {
		errorResponse(w, err)
		return
	}

	setSessionCookie(w, sess)
	writeJSON(w, http.StatusCreated, map[string]any{"user": u})
}

// @Summary     Login
// @Tags        auth
// @Accept      json
// @Param       request  body  loginRequest  true  "Credentials"
// @Success     200  {object}  map[string]any
// @Failure     401  {object}  map[string]string
// @Router      /auth/login [post]
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	u, sess, err := h.idp.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		errorResponse(w, err)
		return
	}

	setSessionCookie(w, sess)
	writeJSON(w, http.StatusOK, map[string]any{"user": u})
}

// @Summary     Logout
// @Tags        auth
// @Success     204
// @Router      /auth/logout [post]
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}
