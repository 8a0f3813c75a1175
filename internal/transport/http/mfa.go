package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"idport/internal/audit"
	"idport/internal/mfa/backupcode"
	"idport/internal/mfa/totp"
	"idport/internal/platform/middleware"
	"idport/internal/user"
	dErrors "idport/pkg/domain-errors"
	"idport/pkg/requesttime"
)

// MFAHandler exposes second-factor enrollment and verification.
type MFAHandler struct {
	users   user.Store
	codes   *backupcode.Generator
	auditor *audit.Publisher
	logger  *slog.Logger
}

func NewMFAHandler(users user.Store, codes *backupcode.Generator, auditor *audit.Publisher, logger *slog.Logger) *MFAHandler {
	return &MFAHandler{users: users, codes: codes, auditor: auditor, logger: logger}
}

func (h *MFAHandler) Register(r chi.Router) {
	r.Route("/users/{userID}/mfa", func(r chi.Router) {
		r.Post("/totp", h.enrollTOTP)
		r.Post("/totp/verify", h.verifyTOTP)
		r.Post("/backup-codes", h.generateBackupCodes)
		r.Post("/backup-codes/verify", h.verifyBackupCode)
	})
}

type totpEnrollResponse struct {
	Secret string `json:"secret"`
	URL    string `json:"url"`
}

func (h *MFAHandler) enrollTOTP(w http.ResponseWriter, r *http.Request) {
	u, err := h.lookupUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	enrollment, err := totp.Enroll(u.Email)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	// The secret is provisional until the first code verifies.
	u.TOTPSecret = enrollment.Secret
	u.MFAEnabled = false
	if err := h.users.Update(r.Context(), u); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, totpEnrollResponse{
		Secret: enrollment.Secret,
		URL:    enrollment.URL,
	})
}

type verifyRequest struct {
	Code string `json:"code"`
}

type totpVerifyResponse struct {
	Verified bool `json:"verified"`
}

type backupVerifyResponse struct {
	Verified  bool `json:"verified"`
	Remaining int  `json:"remaining"`
}

func (h *MFAHandler) verifyTOTP(w http.ResponseWriter, r *http.Request) {
	u, err := h.lookupUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if u.TOTPSecret == "" {
		writeError(w, h.logger, dErrors.New(dErrors.CodeBadRequest, "totp enrollment not started"))
		return
	}

	var req verifyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if !totp.Verify(req.Code, u.TOTPSecret) {
		writeJSON(w, http.StatusOK, totpVerifyResponse{Verified: false})
		return
	}

	if !u.MFAEnabled {
		u.MFAEnabled = true
		if err := h.users.Update(r.Context(), u); err != nil {
			writeError(w, h.logger, err)
			return
		}
		h.emit(r, u, audit.ActionMFAEnrolled)
	}
	writeJSON(w, http.StatusOK, totpVerifyResponse{Verified: true})
}

type backupCodesResponse struct {
	Codes []string `json:"codes"`
}

func (h *MFAHandler) generateBackupCodes(w http.ResponseWriter, r *http.Request) {
	u, err := h.lookupUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	codes, err := h.codes.Generate(r.Context(), u.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	issuedAt := requesttime.Now(r.Context())
	u.PersonalKeyIssuedAt = &issuedAt
	if err := h.users.Update(r.Context(), u); err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.emit(r, u, audit.ActionBackupCodesIssued)

	writeJSON(w, http.StatusOK, backupCodesResponse{Codes: codes})
}

func (h *MFAHandler) verifyBackupCode(w http.ResponseWriter, r *http.Request) {
	u, err := h.lookupUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req verifyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	ok, err := h.codes.Verify(r.Context(), u.ID, req.Code)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	remaining, err := h.codes.Remaining(r.Context(), u.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, backupVerifyResponse{Verified: ok, Remaining: remaining})
}

func (h *MFAHandler) lookupUser(r *http.Request) (*user.User, error) {
	id, err := parseUserID(r)
	if err != nil {
		return nil, err
	}
	return h.users.FindByID(r.Context(), id)
}

func (h *MFAHandler) emit(r *http.Request, u *user.User, action audit.Action) {
	if h.auditor == nil {
		return
	}
	event := audit.Event{
		Timestamp: requesttime.Now(r.Context()),
		UserID:    u.ID.String(),
		Action:    action,
		RequestID: middleware.GetRequestID(r.Context()),
	}
	if err := h.auditor.Emit(r.Context(), event); err != nil {
		h.logger.Warn("audit emit failed", "action", action, "error", err)
	}
}
