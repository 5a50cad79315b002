package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/odomo-app/odomo/internal/auth"
	"github.com/odomo-app/odomo/internal/model"
	"github.com/odomo-app/odomo/internal/storage"
)

// HandleSignup handles POST /auth/signup. Creates an owner account with the
// starting Koban balance and returns a token so the client can immediately
// create a pet.
func (h *Handlers) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req model.SignupRequest
	if err := decodeJSON(w, r, &req, h.maxRequestBodyBytes); err != nil {
		handleDecodeError(w, r, err)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := model.ValidateEmail(email); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, err.Error())
		return
	}
	if err := model.ValidatePassword(req.Password); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, err.Error())
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	owner, err := h.db.CreateOwner(r.Context(), email, hash)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			writeError(w, r, http.StatusConflict, model.ErrCodeConflict, "email already registered")
			return
		}
		h.writeDomainError(w, r, err)
		return
	}

	token, exp, err := h.jwtMgr.IssueToken(owner)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	h.logger.Info("owner signed up", "owner_id", owner.ID)
	writeJSON(w, r, http.StatusCreated, model.AuthTokenResponse{Token: token, ExpiresAt: exp})
}

// HandleLogin handles POST /auth/login. The failure path always burns an
// Argon2id verification so timing does not reveal whether the email exists.
func (h *Handlers) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeJSON(w, r, &req, h.maxRequestBodyBytes); err != nil {
		handleDecodeError(w, r, err)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	owner, err := h.db.GetOwnerByEmail(r.Context(), email)
	if err != nil {
		auth.DummyVerify()
		writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorized, "invalid credentials")
		return
	}

	valid, err := auth.VerifyPassword(req.Password, owner.PasswordHash)
	if err != nil || !valid {
		writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorized, "invalid credentials")
		return
	}

	token, exp, err := h.jwtMgr.IssueToken(owner)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	h.logger.Info("owner logged in", "owner_id", owner.ID)
	writeJSON(w, r, http.StatusOK, model.AuthTokenResponse{Token: token, ExpiresAt: exp})
}
