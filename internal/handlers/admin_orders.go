package handlers

import (
	"net/http"
	"strings"

	"drinkdrop-go/internal/db"
)

func (s *Server) AdminOrdersGet(w http.ResponseWriter, r *http.Request) {
	orders, err := s.App.Store().Q.ListOrders(r.URL.Query().Get("status"))
	if err != nil {
		s.writeErr(w, http.StatusInternalServerError, "could not load orders")
		return
	}
	if orders == nil {
		orders = []db.Order{}
	}
	s.writeJSON(w, http.StatusOK, orders)
}

func (s *Server) AdminOrderGet(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		s.writeErr(w, http.StatusBadRequest, "invalid order id")
		return
	}
	o := s.loadOrder(id)
	if o == nil {
		s.writeErr(w, http.StatusNotFound, "order not found")
		return
	}
	events, _ := s.App.Store().Q.ListOrderEvents(id)
	s.writeJSON(w, http.StatusOK, map[string]any{"order": o, "events": events})
}

type orderStatusRequest struct {
	Status string `json:"status"`
}

// AdminOrderStatusPost sets any status on any order. Transition legality is
// not enforced; jumps outside the normal lifecycle are logged and the change
// is always recorded in order_events.
func (s *Server) AdminOrderStatusPost(w http.ResponseWriter, r *http.Request) {
	u := s.App.CurrentUser(r)
	id, ok := idParam(r)
	if !ok {
		s.writeErr(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req orderStatusRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	to := strings.TrimSpace(strings.ToUpper(req.Status))
	if !validOrderStatus(to) {
		s.writeErr(w, http.StatusBadRequest, "unknown status")
		return
	}

	o, err := s.App.Store().Q.GetOrderByID(id)
	if err != nil || o == nil {
		s.writeErr(w, http.StatusNotFound, "order not found")
		return
	}
	if o.Status == to {
		s.writeJSON(w, http.StatusOK, s.loadOrder(id))
		return
	}

	if !sequentialTransition(o.Status, to) {
		s.App.Log().Warn("non-sequential order status change",
			"order_id", id, "from", o.Status, "to", to, "admin_id", u.ID)
	}

	if err := s.App.Store().Q.UpdateOrderStatus(id, o.Status, to, &u.ID); err != nil {
		s.writeErr(w, http.StatusInternalServerError, "could not update status")
		return
	}
	s.broadcastOrderUpdated(id)
	s.writeJSON(w, http.StatusOK, s.loadOrder(id))
}
