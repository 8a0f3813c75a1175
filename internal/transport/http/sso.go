package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"idport/internal/audit"
	"idport/internal/idv/models"
	"idport/internal/idv/sessionstore"
	"idport/internal/platform/middleware"
	"idport/internal/sso"
	dErrors "idport/pkg/domain-errors"
	"idport/pkg/requesttime"
)

// SSOHandler issues identity assertions for relying parties. The protocol
// exchange (SAML/OIDC) lives downstream; this surface only signs the claims.
type SSOHandler struct {
	issuer   *sso.Issuer
	sessions sessionstore.Store
	auditor  *audit.Publisher
	logger   *slog.Logger
}

func NewSSOHandler(issuer *sso.Issuer, sessions sessionstore.Store, auditor *audit.Publisher, logger *slog.Logger) *SSOHandler {
	return &SSOHandler{issuer: issuer, sessions: sessions, auditor: auditor, logger: logger}
}

func (h *SSOHandler) Register(r chi.Router) {
	r.Post("/users/{userID}/sso/assertions", h.issue)
}

type assertionRequest struct {
	Audience string `json:"audience"`
}

type assertionResponse struct {
	Assertion string `json:"assertion"`
	IAL       string `json:"ial"`
}

func (h *SSOHandler) issue(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req assertionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if req.Audience == "" {
		writeError(w, h.logger, dErrors.New(dErrors.CodeInvalidInput, "audience is required"))
		return
	}

	var session *models.Session
	if snap, err := h.sessions.Load(r.Context(), userID); err == nil {
		session = models.NewSession()
		session.Restore(snap)
	} else if !dErrors.HasCode(err, dErrors.CodeNotFound) {
		writeError(w, h.logger, err)
		return
	}

	token, err := h.issuer.Issue(userID, req.Audience, session)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	ial := sso.IAL1
	if session != nil && session.ProfileConfirmation() {
		ial = sso.IAL2
	}

	if h.auditor != nil {
		event := audit.Event{
			Timestamp: requesttime.Now(r.Context()),
			UserID:    userID.String(),
			Action:    audit.ActionAssertionIssued,
			Decision:  "ial" + ial,
			RequestID: middleware.GetRequestID(r.Context()),
		}
		if err := h.auditor.Emit(r.Context(), event); err != nil {
			h.logger.Warn("audit emit failed", "action", event.Action, "error", err)
		}
	}

	writeJSON(w, http.StatusOK, assertionResponse{Assertion: token, IAL: ial})
}
