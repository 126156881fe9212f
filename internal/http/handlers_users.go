package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"spendwise/internal/services"
	"spendwise/internal/storage"
)

type userPayload struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeMessage(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body struct {
		Username        string `json:"username"`
		Email           string `json:"email"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirmPassword"`
		Codeword        string `json:"codeword"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	_, err := s.users.Register(r.Context(), services.RegisterInput{
		Username:        body.Username,
		Email:           body.Email,
		Password:        body.Password,
		ConfirmPassword: body.ConfirmPassword,
		Codeword:        body.Codeword,
	})
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			writeMessage(w, http.StatusConflict, err.Error())
			return
		}
		slog.WarnContext(r.Context(), "registration rejected", "username", body.Username, "error", err)
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	writeMessage(w, http.StatusCreated, "Registration successful! You can now log in.")
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeMessage(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := s.users.Login(r.Context(), body.Username, body.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			writeMessage(w, http.StatusUnauthorized, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "login failed", "username", body.Username, "error", err)
		writeMessage(w, http.StatusInternalServerError, "login failed")
		return
	}

	writeJSON(w, http.StatusOK, userPayload{ID: u.ID, Username: u.Username, Email: u.Email})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeMessage(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	idStr := strings.TrimPrefix(r.URL.Path, "/api/users/user/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id < 1 {
		writeMessage(w, http.StatusBadRequest, "invalid user id")
		return
	}

	u, err := s.users.GetUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			writeMessage(w, http.StatusNotFound, "user not found")
			return
		}
		slog.ErrorContext(r.Context(), "user lookup failed", "user_id", id, "error", err)
		writeMessage(w, http.StatusInternalServerError, "failed to load user")
		return
	}

	writeJSON(w, http.StatusOK, userPayload{ID: u.ID, Username: u.Username, Email: u.Email})
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeMessage(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body struct {
		Username string `json:"username"`
		Codeword string `json:"codeword"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.users.ResetPassword(r.Context(), body.Username, body.Codeword, body.Password); err != nil {
		if errors.Is(err, services.ErrInvalidCodeword) {
			writeMessage(w, http.StatusForbidden, err.Error())
			return
		}
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	writeMessage(w, http.StatusOK, "Password updated")
}
