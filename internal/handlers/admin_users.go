package handlers

import (
	"encoding/json"
	"net/http"

	"drinkdrop-go/internal/app"
	"drinkdrop-go/internal/db"
	"drinkdrop-go/internal/slots"
)

func (s *Server) AdminUsersGet(w http.ResponseWriter, r *http.Request) {
	users, err := s.App.Store().Q.ListUsers()
	if err != nil {
		s.writeErr(w, http.StatusInternalServerError, "could not load users")
		return
	}
	if users == nil {
		users = []db.User{}
	}
	s.writeJSON(w, http.StatusOK, users)
}

func (s *Server) AdminUserTogglePost(w http.ResponseWriter, r *http.Request) {
	admin := s.App.CurrentUser(r)
	id, ok := idParam(r)
	if !ok {
		s.writeErr(w, http.StatusBadRequest, "invalid user id")
		return
	}
	if id == admin.ID {
		s.writeErr(w, http.StatusBadRequest, "cannot deactivate yourself")
		return
	}
	u, err := s.App.Store().Q.GetUserByID(id)
	if err != nil || u == nil {
		s.writeErr(w, http.StatusNotFound, "user not found")
		return
	}
	if err := s.App.Store().Q.SetUserActive(id, !u.IsActive); err != nil {
		s.writeErr(w, http.StatusInternalServerError, "could not update user")
		return
	}
	u, _ = s.App.Store().Q.GetUserByID(id)
	s.writeJSON(w, http.StatusOK, u)
}

// AdminUserDelete removes the profile row and then the identity record.
// Identity deletion is best-effort: a failure leaves an orphaned identity,
// which is logged rather than surfaced.
func (s *Server) AdminUserDelete(w http.ResponseWriter, r *http.Request) {
	admin := s.App.CurrentUser(r)
	id, ok := idParam(r)
	if !ok {
		s.writeErr(w, http.StatusBadRequest, "invalid user id")
		return
	}
	if id == admin.ID {
		s.writeErr(w, http.StatusBadRequest, "cannot delete yourself")
		return
	}
	u, err := s.App.Store().Q.GetUserByID(id)
	if err != nil || u == nil {
		s.writeErr(w, http.StatusNotFound, "user not found")
		return
	}

	if err := s.App.Store().Q.DeleteUser(id); err != nil {
		s.writeErr(w, http.StatusInternalServerError, "could not delete user")
		return
	}
	if err := s.App.Identity().Delete(r.Context(), u.IdentityID); err != nil {
		s.App.Log().Warn("identity delete failed after profile removal",
			"identity_id", u.IdentityID, "email", u.Email, "err", err)
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

/* ---------------- delivery schedule settings ---------------- */

func (s *Server) AdminScheduleGet(w http.ResponseWriter, r *http.Request) {
	schedule, ok := s.App.LoadSchedule()
	if !ok {
		schedule = slots.DefaultSchedule()
	}
	s.writeJSON(w, http.StatusOK, schedule)
}

func (s *Server) AdminSchedulePut(w http.ResponseWriter, r *http.Request) {
	var schedule slots.Schedule
	if err := s.decodeJSON(w, r, &schedule); err != nil {
		s.writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := schedule.Validate(); err != nil {
		s.writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	raw, err := json.Marshal(schedule)
	if err != nil {
		s.writeErr(w, http.StatusInternalServerError, "could not encode schedule")
		return
	}
	if err := s.App.Store().Q.SetSetting(app.ScheduleSettingKey, string(raw)); err != nil {
		s.writeErr(w, http.StatusInternalServerError, "could not save schedule")
		return
	}
	s.writeJSON(w, http.StatusOK, schedule)
}

func (s *Server) AdminSeedPost(w http.ResponseWriter, r *http.Request) {
	if err := db.SeedCatalog(s.App.Store().DB); err != nil {
		s.writeErr(w, http.StatusInternalServerError, "seed failed")
		return
	}
	s.invalidateMenuCache()
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "seeded"})
}
