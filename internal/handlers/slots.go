package handlers

import (
	"net/http"
	"time"

	"drinkdrop-go/internal/slots"
)

// SlotsGet returns the bookable delivery windows. When the stored schedule
// cannot be loaded the demo fallback is served instead.
func (s *Server) SlotsGet(w http.ResponseWriter, r *http.Request) {
	now := time.Now()

	schedule, ok := s.App.LoadSchedule()
	if !ok {
		s.App.Log().Warn("delivery schedule unavailable, serving demo fallback")
		s.writeJSON(w, http.StatusOK, map[string]any{
			"fallback": true,
			"slots":    slots.Fallback(now),
		})
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"fallback": false,
		"slots":    schedule.Generate(now),
	})
}
