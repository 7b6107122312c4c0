package identity

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/accountforge/service-identity-go/internal/apperror"
	"github.com/accountforge/service-identity-go/internal/identity/entity"
	"github.com/accountforge/service-identity-go/internal/token"
)

// Handler exposes HTTP endpoints for account operations.
type Handler struct {
	svc    *Service
	tokens *token.Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, tokens *token.Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, tokens: tokens, logger: logger}
}

// Envelope is the uniform response body. Token and Profile are omitted on
// failure and on endpoints that do not return them.
type Envelope struct {
	Success bool                  `json:"success"`
	Token   string                `json:"token,omitempty"`
	Profile *entity.PublicProfile `json:"profile,omitempty"`
	Message string                `json:"message"`
}

type credentialsRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Create handles POST /users: signup plus immediate token issuance.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, Envelope{Message: "invalid payload"})
		return
	}
	if req.Email == "" || req.Password == "" {
		h.writeJSON(w, http.StatusBadRequest, Envelope{Message: "email and password are required"})
		return
	}
	profile, err := h.svc.CreateAccount(r.Context(), CreateAccountInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		h.logger.Warnw("failed to create user", "err", err)
		h.writeError(w, err)
		return
	}
	signed, err := h.tokens.Issue(profile.ID)
	if err != nil {
		h.logger.Errorw("failed to issue token", "err", err)
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, Envelope{
		Success: true,
		Token:   "JWT " + signed,
		Profile: &profile,
		Message: "user created",
	})
}

// Login handles POST /users/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, Envelope{Message: "invalid payload"})
		return
	}
	if req.Email == "" || req.Password == "" {
		h.writeJSON(w, http.StatusBadRequest, Envelope{Message: "email and password are required"})
		return
	}
	profile, err := h.svc.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Debugw("failed to login user", "email", req.Email, "err", err)
		h.writeError(w, err)
		return
	}
	signed, err := h.tokens.Issue(profile.ID)
	if err != nil {
		h.logger.Errorw("failed to issue token", "err", err)
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, Envelope{
		Success: true,
		Token:   "JWT " + signed,
		Profile: &profile,
		Message: "user logged in",
	})
}

// Profile handles GET /users for the gate-resolved caller.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	profile, ok := ProfileFromContext(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusForbidden, Envelope{Message: apperror.Message(errUnknownOrDeleted())})
		return
	}
	h.writeJSON(w, http.StatusOK, Envelope{
		Success: true,
		Profile: &profile,
		Message: "user logged in",
	})
}

type updateRequest struct {
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Update handles PUT /users. The password must be resupplied even for
// name-only changes.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	profile, ok := ProfileFromContext(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusForbidden, Envelope{Message: apperror.Message(errUnknownOrDeleted())})
		return
	}
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, Envelope{Message: "invalid payload"})
		return
	}
	if req.Password == "" {
		h.writeJSON(w, http.StatusBadRequest, Envelope{Message: "password is required"})
		return
	}
	updated, err := h.svc.UpdateAccount(r.Context(), profile.ID, UpdateAccountInput{
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		h.logger.Warnw("failed to update user", "id", profile.ID, "err", err)
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, Envelope{
		Success: true,
		Profile: &updated,
		Message: "user updated",
	})
}

// Delete handles DELETE /users. Soft delete, 204 on success.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	profile, ok := ProfileFromContext(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusForbidden, Envelope{Message: apperror.Message(errUnknownOrDeleted())})
		return
	}
	if err := h.svc.DeleteAccount(r.Context(), profile.ID); err != nil {
		h.logger.Warnw("failed to delete user", "id", profile.ID, "err", err)
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeError maps a service failure to a status code and renders the
// uniform "<ErrorKind> : <detail>" message. Everything that is not the
// caller's input fault reports 500.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if apperror.IsKind(err, apperror.KindInvalidInput) {
		status = http.StatusBadRequest
	}
	h.writeJSON(w, status, Envelope{Message: apperror.Message(err)})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
