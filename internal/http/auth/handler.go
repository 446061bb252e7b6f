package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/bursar/internal/application"
	"github.com/MrJamesThe3rd/bursar/internal/auth"
	"github.com/MrJamesThe3rd/bursar/internal/http/httperr"
	"github.com/MrJamesThe3rd/bursar/internal/user"
)

type Handler struct {
	users  *user.Service
	issuer *auth.Issuer
}

func NewHandler(users *user.Service, issuer *auth.Issuer) *Handler {
	return &Handler{users: users, issuer: issuer}
}

// Routes mounts the public endpoints. loginLimit wraps login and register.
func (h *Handler) Routes(r chi.Router, loginLimit func(http.Handler) http.Handler) {
	r.With(loginLimit).Post("/register", h.register)
	r.With(loginLimit).Post("/login", h.login)
}

// MeRoutes mounts the endpoints that need an authenticated caller.
func (h *Handler) MeRoutes(r chi.Router) {
	r.Get("/", h.me)
}

type registerRequest struct {
	FullName      string           `json:"full_name" validate:"required"`
	Email         string           `json:"email" validate:"required,email"`
	Password      string           `json:"password" validate:"required,min=8"`
	Role          application.Role `json:"role" validate:"required,oneof=student reviewer finance"`
	ContactNumber string           `json:"contact_number"`
	Address       string           `json:"address"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	ID            uuid.UUID        `json:"id"`
	FullName      string           `json:"full_name"`
	Email         string           `json:"email"`
	Role          application.Role `json:"role"`
	ContactNumber string           `json:"contact_number,omitempty"`
	Address       string           `json:"address,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      userResponse `json:"user"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httperr.Decode(r, &req); err != nil {
		httperr.Write(w, r, err)
		return
	}

	u, err := h.users.Register(r.Context(), user.RegisterParams{
		FullName:      req.FullName,
		Email:         req.Email,
		Password:      req.Password,
		Role:          req.Role,
		ContactNumber: req.ContactNumber,
		Address:       req.Address,
	})
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	httperr.JSON(w, http.StatusCreated, toUserResponse(u))
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httperr.Decode(r, &req); err != nil {
		httperr.Write(w, r, err)
		return
	}

	u, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	token, expires, err := h.issuer.Issue(auth.Identity{UserID: u.ID, Role: u.Role})
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	httperr.JSON(w, http.StatusOK, loginResponse{
		Token:     token,
		ExpiresAt: expires,
		User:      toUserResponse(u),
	})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFrom(r.Context())

	u, err := h.users.Get(r.Context(), id.UserID)
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	httperr.JSON(w, http.StatusOK, toUserResponse(u))
}

func toUserResponse(u *user.User) userResponse {
	return userResponse{
		ID:            u.ID,
		FullName:      u.FullName,
		Email:         u.Email,
		Role:          u.Role,
		ContactNumber: u.ContactNumber,
		Address:       u.Address,
		CreatedAt:     u.CreatedAt,
	}
}
