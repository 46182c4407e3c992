package handlers

import (
	"errors"
	"net/http"
	"strings"

	"drinkdrop-go/internal/app"
	"drinkdrop-go/internal/db"
	"drinkdrop-go/internal/identity"
	"drinkdrop-go/internal/provision"
)

type signupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
}

func (s *Server) SignupPost(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	u, err := s.App.Provision().CreateAccount(r.Context(), provision.Params{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Phone:       req.Phone,
		Address:     req.Address,
		Role:        app.RoleUser,
	})
	if err != nil {
		switch {
		case errors.Is(err, provision.ErrEmailTaken), errors.Is(err, provision.ErrConflict):
			s.writeErr(w, http.StatusConflict, "email already registered")
		case errors.Is(err, provision.ErrInvalidParams):
			s.writeErr(w, http.StatusBadRequest, err.Error())
		default:
			s.App.Log().Error("signup failed", "err", err)
			s.writeErr(w, http.StatusInternalServerError, "could not create account")
		}
		return
	}

	token, err := s.App.Identity().SignIn(r.Context(), u.Email, req.Password)
	if err != nil {
		// Account exists; the client can still log in explicitly.
		s.App.Log().Warn("post-signup sign-in failed", "email", u.Email, "err", err)
		s.writeJSON(w, http.StatusCreated, u)
		return
	}
	s.App.SetSession(w, token)
	s.writeJSON(w, http.StatusCreated, map[string]any{"user": u, "token": token})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) LoginPost(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	email := identity.NormalizeEmail(req.Email)
	token, err := s.App.Identity().SignIn(r.Context(), email, req.Password)
	if err != nil {
		s.writeErr(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	u, err := s.App.Store().Q.GetUserByEmail(email)
	if err != nil || u == nil || !u.IsActive {
		s.writeErr(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	s.App.SetSession(w, token)
	s.writeJSON(w, http.StatusOK, map[string]any{"user": u, "token": token})
}

func (s *Server) LogoutPost(w http.ResponseWriter, r *http.Request) {
	s.App.ClearSession(w)
	s.App.Carts().Clear(w)
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

func (s *Server) MeGet(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.App.CurrentUser(r))
}

type profileRequest struct {
	DisplayName string `json:"display_name"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
}

// MeUpdatePut updates the delivery profile. Email and role are not editable
// here; email lives in the identity service and role changes are an admin
// concern.
func (s *Server) MeUpdatePut(w http.ResponseWriter, r *http.Request) {
	u := s.App.CurrentUser(r)

	var req profileRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if req.DisplayName == "" {
		s.writeErr(w, http.StatusBadRequest, "display_name is required")
		return
	}

	if err := s.App.Store().Q.UpdateUser(db.UpdateUserParams{
		ID:          u.ID,
		DisplayName: req.DisplayName,
		Phone:       req.Phone,
		Address:     req.Address,
	}); err != nil {
		s.writeErr(w, http.StatusInternalServerError, "could not update profile")
		return
	}

	updated, err := s.App.Store().Q.GetUserByID(u.ID)
	if err != nil || updated == nil {
		s.writeErr(w, http.StatusInternalServerError, "could not load profile")
		return
	}
	s.writeJSON(w, http.StatusOK, updated)
}
