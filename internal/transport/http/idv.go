package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"idport/internal/idv/models"
	"idport/internal/idv/sessionstore"
	"idport/internal/idv/step"
	dErrors "idport/pkg/domain-errors"
)

// verification_unavailable is the wire error for vendor outages; clients
// retry later instead of telling the user their identity failed.
const errVerificationUnavailable = "verification_unavailable"

// IdvHandler drives the identity proofing flow over HTTP. Session state is
// checkpointed per user so a flow survives restarts and load balancing.
type IdvHandler struct {
	step     *step.Step
	sessions sessionstore.Store
	logger   *slog.Logger
}

func NewIdvHandler(s *step.Step, sessions sessionstore.Store, logger *slog.Logger) *IdvHandler {
	return &IdvHandler{step: s, sessions: sessions, logger: logger}
}

func (h *IdvHandler) Register(r chi.Router) {
	r.Route("/users/{userID}/idv", func(r chi.Router) {
		r.Post("/profile", h.submitProfile)
		r.Get("/attempts", h.attempts)
		r.Get("/session", h.session)
	})
}

func (h *IdvHandler) submitProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var params models.ProfileParams
	if err := decodeJSON(r, &params); err != nil {
		writeError(w, h.logger, err)
		return
	}

	session := h.loadSession(r, userID)

	result, err := h.step.Submit(r.Context(), userID, session, params)
	h.saveSession(r, userID, session)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnavailable) {
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{
				Error:   errVerificationUnavailable,
				Message: "identity verification is temporarily unavailable, try again later",
			})
			return
		}
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type attemptsResponse struct {
	Exceeded  bool `json:"idv_attempts_exceeded"`
	Remaining int  `json:"remaining"`
}

func (h *IdvHandler) attempts(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	exceeded, err := h.step.AttemptsExceeded(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	remaining, err := h.step.AttemptsRemaining(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, attemptsResponse{Exceeded: exceeded, Remaining: remaining})
}

type sessionResponse struct {
	ProfileConfirmed bool `json:"profile_confirmed"`
	InProgress       bool `json:"in_progress"`
}

func (h *IdvHandler) session(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	snap, err := h.sessions.Load(r.Context(), userID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			writeJSON(w, http.StatusOK, sessionResponse{})
			return
		}
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		ProfileConfirmed: snap.ProfileConfirmation,
		InProgress:       true,
	})
}

// loadSession restores the user's checkpointed session, or starts a fresh one
// if none exists. Checkpoint read failures degrade to a fresh session rather
// than blocking the flow.
func (h *IdvHandler) loadSession(r *http.Request, userID uuid.UUID) *models.Session {
	session := models.NewSession()
	snap, err := h.sessions.Load(r.Context(), userID)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			h.logger.Warn("session checkpoint load failed", "user_id", userID.String(), "error", err)
		}
		return session
	}
	session.Restore(snap)
	return session
}

func (h *IdvHandler) saveSession(r *http.Request, userID uuid.UUID, session *models.Session) {
	if err := h.sessions.Save(r.Context(), userID, session.Snapshot()); err != nil {
		h.logger.Warn("session checkpoint save failed", "user_id", userID.String(), "error", err)
	}
}
