package handler

import (
	"net/http"
	"time"

	"github.com/Shivanand-hulikatti/campus-events/internal/model"
)

type signupResponse struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

type tokensResponse struct {
	Access    string    `json:"access"`
	ExpiresAt time.Time `json:"expires_at"`
}

type loginResponse struct {
	Message string         `json:"message"`
	User    userView       `json:"user"`
	Roles   []model.Role   `json:"roles"`
	Tokens  tokensResponse `json:"tokens"`
}

type meResponse struct {
	User  userView     `json:"user"`
	Roles []model.Role `json:"roles"`
}

// Signup handles POST /auth/signup
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req model.SignupRequest
	if !h.bind(w, r, &req) {
		return
	}

	u, err := h.auth.Signup(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, signupResponse{Message: "Signup successful. Please login.", UserID: u.ID})
}

// Login handles POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !h.bind(w, r, &req) {
		return
	}

	session, err := h.auth.Login(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Message: "Login successful",
		User:    newUserView(session.User, session.Roles),
		Roles:   session.Roles.Roles(),
		Tokens:  tokensResponse{Access: session.AccessToken, ExpiresAt: session.ExpiresAt},
	})
}

// Me handles GET /auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	actor := ActorFrom(r.Context())
	u, err := h.auth.Me(r.Context(), actor)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, meResponse{User: newUserView(u, actor.Roles), Roles: actor.Roles.Roles()})
}
