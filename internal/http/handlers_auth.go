package http

import (
	"net/http"
	"time"

	"outlay/internal/log"
	"outlay/internal/services"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the login payload. The token's subject is the email it
// was issued for.
type LoginResponse struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if err := decodeJSON(r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}

	cred, err := s.accounts.Register(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, cred)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decodeJSON(r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}

	cred, err := s.accounts.Authenticate(r.Context(), in.Email, in.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	token, expiresAt, err := s.tokens.Issue(cred.Email)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "failed to issue token",
			log.FieldError, err, log.FieldUserID, cred.ID)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Token:     token,
		Email:     cred.Email,
		ExpiresAt: expiresAt,
	})
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	cred, err := s.accounts.GetCredential(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cred)
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	var in services.UpdateInput
	if err := decodeJSON(r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}

	cred, err := s.accounts.UpdateCredential(r.Context(), userIDFrom(r.Context()), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cred)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := s.accounts.DeleteCredential(r.Context(), userIDFrom(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
