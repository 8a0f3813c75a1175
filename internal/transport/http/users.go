package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"idport/internal/user"
	dErrors "idport/pkg/domain-errors"
)

// UsersHandler exposes account creation and lookup.
type UsersHandler struct {
	store        user.Store
	logger       *slog.Logger
	usersCreated prometheus.Counter
}

func NewUsersHandler(store user.Store, logger *slog.Logger, usersCreated prometheus.Counter) *UsersHandler {
	return &UsersHandler{store: store, logger: logger, usersCreated: usersCreated}
}

func (h *UsersHandler) Register(r chi.Router) {
	r.Post("/users", h.create)
	r.Get("/users/{userID}", h.get)
}

type createUserRequest struct {
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

type userResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	MFAEnabled  bool   `json:"mfa_enabled"`
	IdvAttempts int    `json:"idv_attempts"`
}

func (h *UsersHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if req.Email == "" {
		writeError(w, h.logger, dErrors.New(dErrors.CodeInvalidInput, "email is required"))
		return
	}

	u := &user.User{
		ID:    uuid.New(),
		Email: req.Email,
		Phone: req.Phone,
	}
	if err := h.store.Create(r.Context(), u); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if h.usersCreated != nil {
		h.usersCreated.Inc()
	}

	writeJSON(w, http.StatusCreated, toUserResponse(u))
}

func (h *UsersHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := parseUserID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	u, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func toUserResponse(u *user.User) userResponse {
	return userResponse{
		ID:          u.ID.String(),
		Email:       u.Email,
		Phone:       u.Phone,
		MFAEnabled:  u.MFAEnabled,
		IdvAttempts: u.IdvAttempts,
	}
}

// parseUserID extracts and validates the {userID} route parameter.
func parseUserID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid user id")
	}
	return id, nil
}
