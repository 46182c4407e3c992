package handlers

import (
	"fmt"
	"net/http"

	"drinkdrop-go/internal/app"
	"drinkdrop-go/internal/db"
)

func menuCacheKey(userID int64) string { return fmt.Sprintf("menu:%d", userID) }

// MenuGet lists the live items visible to the current user. Responses are
// served from the TTL cache when fresh; a cache problem reads as a miss.
func (s *Server) MenuGet(w http.ResponseWriter, r *http.Request) {
	u := s.App.CurrentUser(r)

	key := menuCacheKey(u.ID)
	if v, ok := s.App.Cache().Get(key); ok {
		if items, ok := v.([]db.MenuItem); ok {
			s.writeJSON(w, http.StatusOK, items)
			return
		}
	}

	items, err := s.App.Store().Q.ListMenuItemsForUser(u.ID)
	if err != nil {
		s.App.Log().Error("menu list failed", "user_id", u.ID, "err", err)
		s.writeErr(w, http.StatusInternalServerError, "could not load menu")
		return
	}
	s.App.Cache().Set(key, items)
	s.writeJSON(w, http.StatusOK, items)
}

func (s *Server) MenuItemGet(w http.ResponseWriter, r *http.Request) {
	u := s.App.CurrentUser(r)
	id, ok := idParam(r)
	if !ok {
		s.writeErr(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := s.App.Store().Q.GetMenuItemByID(id)
	if err != nil || item == nil {
		s.writeErr(w, http.StatusNotFound, "item not found")
		return
	}
	if u.Role != app.RoleAdmin && !s.itemVisibleTo(u, item) {
		s.writeErr(w, http.StatusNotFound, "item not found")
		return
	}
	s.writeJSON(w, http.StatusOK, item)
}

func (s *Server) itemVisibleTo(u *db.User, item *db.MenuItem) bool {
	if !item.IsLive {
		return false
	}
	if item.AssignAll {
		return true
	}
	assigned, err := s.App.Store().Q.GetMenuAssignments(item.ID)
	if err != nil {
		// assume absence
		return false
	}
	for _, uid := range assigned {
		if uid == u.ID {
			return true
		}
	}
	return false
}
