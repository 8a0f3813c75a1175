package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"idport/internal/audit"
	"idport/internal/notify"
	"idport/internal/platform/middleware"
	"idport/internal/policy"
	"idport/internal/user"
	"idport/pkg/requesttime"
)

// SignInHandler records completed sign-ins: it resolves where the user lands
// next and fires the new-device alert when the device was not seen before.
// Authentication itself happens upstream; this is the post-login hook.
type SignInHandler struct {
	users     user.Store
	newDevice *notify.NewDeviceSignInNotifier
	auditor   *audit.Publisher
	logger    *slog.Logger
}

func NewSignInHandler(users user.Store, newDevice *notify.NewDeviceSignInNotifier, auditor *audit.Publisher, logger *slog.Logger) *SignInHandler {
	return &SignInHandler{users: users, newDevice: newDevice, auditor: auditor, logger: logger}
}

func (h *SignInHandler) Register(r chi.Router) {
	r.Post("/users/{userID}/sign-ins", h.record)
}

type signInRequest struct {
	NewDevice               bool   `json:"new_device"`
	NewUser                 bool   `json:"new_user"`
	ServiceProviderURL      string `json:"service_provider_url,omitempty"`
	PersonalKeyAcknowledged bool   `json:"personal_key_acknowledged"`
}

type signInResponse struct {
	Destination policy.Destination `json:"destination"`
}

func (h *SignInHandler) record(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req signInRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	u, err := h.users.FindByID(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if req.NewDevice {
		if h.newDevice != nil {
			h.newDevice.Notify(u, requesttime.Now(r.Context()))
		}
		if h.auditor != nil {
			event := audit.Event{
				Timestamp: requesttime.Now(r.Context()),
				UserID:    u.ID.String(),
				Action:    audit.ActionNewDeviceSignIn,
				RequestID: middleware.GetRequestID(r.Context()),
			}
			if err := h.auditor.Emit(r.Context(), event); err != nil {
				h.logger.Warn("audit emit failed", "action", event.Action, "error", err)
			}
		}
	}

	destination := policy.PostLoginDestination(u, policy.SignInContext{
		NewUser:                 req.NewUser,
		ServiceProviderURL:      req.ServiceProviderURL,
		PersonalKeyAcknowledged: req.PersonalKeyAcknowledged,
	})
	writeJSON(w, http.StatusOK, signInResponse{Destination: destination})
}
