package handlers

import (
	"net/http"
	"strings"

	"drinkdrop-go/internal/app"
	"drinkdrop-go/internal/db"
)

func (s *Server) AdminTicketsGet(w http.ResponseWriter, r *http.Request) {
	tickets, err := s.App.Store().Q.ListTickets(r.URL.Query().Get("status"))
	if err != nil {
		s.writeErr(w, http.StatusInternalServerError, "could not load tickets")
		return
	}
	if tickets == nil {
		tickets = []db.SupportTicket{}
	}
	s.writeJSON(w, http.StatusOK, tickets)
}

type ticketUpdateRequest struct {
	Status   string `json:"status"`
	Response string `json:"response"`
}

func (s *Server) AdminTicketUpdatePost(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		s.writeErr(w, http.StatusBadRequest, "invalid ticket id")
		return
	}

	var req ticketUpdateRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	t, err := s.App.Store().Q.GetTicketByID(id)
	if err != nil || t == nil {
		s.writeErr(w, http.StatusNotFound, "ticket not found")
		return
	}

	status := strings.TrimSpace(strings.ToUpper(req.Status))
	if status == "" {
		status = t.Status
	}
	switch status {
	case db.TicketStatusOpen, db.TicketStatusInProgress, db.TicketStatusResolved, db.TicketStatusClosed:
	default:
		s.writeErr(w, http.StatusBadRequest, "unknown status")
		return
	}

	response := t.AdminResponse
	if strings.TrimSpace(req.Response) != "" {
		response = strings.TrimSpace(req.Response)
	}

	if err := s.App.Store().Q.UpdateTicket(id, status, response); err != nil {
		s.writeErr(w, http.StatusInternalServerError, "could not update ticket")
		return
	}

	s.App.Events().BroadcastUser(t.UserID, app.Event{
		Type: "ticket:updated",
		Data: map[string]any{"ticket_id": id, "status": status},
	})

	t, _ = s.App.Store().Q.GetTicketByID(id)
	s.writeJSON(w, http.StatusOK, t)
}
