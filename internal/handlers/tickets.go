package handlers

import (
	"net/http"
	"strings"

	"drinkdrop-go/internal/app"
	"drinkdrop-go/internal/db"
)

type ticketCreateRequest struct {
	Subject     string `json:"subject"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
	Description string `json:"description"`
}

func (s *Server) TicketCreatePost(w http.ResponseWriter, r *http.Request) {
	u := s.App.CurrentUser(r)

	var req ticketCreateRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Subject = strings.TrimSpace(req.Subject)
	if req.Subject == "" {
		s.writeErr(w, http.StatusBadRequest, "subject is required")
		return
	}
	if req.Category == "" {
		req.Category = "general"
	}
	if req.Priority == "" {
		req.Priority = "normal"
	}

	id, err := s.App.Store().Q.CreateTicket(db.CreateTicketParams{
		UserID:      u.ID,
		Subject:     req.Subject,
		Category:    req.Category,
		Priority:    req.Priority,
		Description: strings.TrimSpace(req.Description),
	})
	if err != nil {
		s.writeErr(w, http.StatusInternalServerError, "could not create ticket")
		return
	}

	s.App.Events().BroadcastRole(app.RoleAdmin, app.Event{Type: "ticket:created", Data: map[string]any{"ticket_id": id}})

	t, _ := s.App.Store().Q.GetTicketByID(id)
	s.writeJSON(w, http.StatusCreated, t)
}

func (s *Server) TicketsGet(w http.ResponseWriter, r *http.Request) {
	u := s.App.CurrentUser(r)
	tickets, err := s.App.Store().Q.ListTicketsForUser(u.ID)
	if err != nil {
		s.writeErr(w, http.StatusInternalServerError, "could not load tickets")
		return
	}
	if tickets == nil {
		tickets = []db.SupportTicket{}
	}
	s.writeJSON(w, http.StatusOK, tickets)
}

func (s *Server) TicketGet(w http.ResponseWriter, r *http.Request) {
	u := s.App.CurrentUser(r)
	id, ok := idParam(r)
	if !ok {
		s.writeErr(w, http.StatusBadRequest, "invalid ticket id")
		return
	}
	t, err := s.App.Store().Q.GetTicketByID(id)
	if err != nil || t == nil || (t.UserID != u.ID && u.Role != app.RoleAdmin) {
		s.writeErr(w, http.StatusNotFound, "ticket not found")
		return
	}
	s.writeJSON(w, http.StatusOK, t)
}
