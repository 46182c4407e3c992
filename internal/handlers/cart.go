package handlers

import (
	"net/http"

	"drinkdrop-go/internal/cart"
)

type cartResponse struct {
	Items      []cart.Item `json:"items"`
	TotalCents int64       `json:"total_cents"`
}

func (s *Server) cartJSON(w http.ResponseWriter, c *cart.Cart) {
	items := c.Items
	if items == nil {
		items = []cart.Item{}
	}
	s.writeJSON(w, http.StatusOK, cartResponse{Items: items, TotalCents: c.TotalCents()})
}

func (s *Server) CartGet(w http.ResponseWriter, r *http.Request) {
	s.cartJSON(w, s.App.Carts().Read(r))
}

type cartAddRequest struct {
	MenuItemID int64 `json:"menu_item_id"`
	Quantity   int64 `json:"quantity"`
}

// CartItemAddPost snapshots the item's current name and price into the cart
// line; later menu edits do not touch carts already in flight.
func (s *Server) CartItemAddPost(w http.ResponseWriter, r *http.Request) {
	u := s.App.CurrentUser(r)

	var req cartAddRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.MenuItemID <= 0 {
		s.writeErr(w, http.StatusBadRequest, "menu_item_id is required")
		return
	}
	if req.Quantity <= 0 || req.Quantity > 50 {
		req.Quantity = 1
	}

	item, err := s.App.Store().Q.GetMenuItemByID(req.MenuItemID)
	if err != nil || item == nil || !s.itemVisibleTo(u, item) {
		s.writeErr(w, http.StatusNotFound, "item not found")
		return
	}
	if !item.InStock {
		s.writeErr(w, http.StatusConflict, "item is out of stock")
		return
	}

	c := s.App.Carts().Read(r)
	c.Add(cart.Item{
		MenuItemID:     item.ID,
		Name:           item.Name,
		UnitPriceCents: item.PriceCents,
		Quantity:       req.Quantity,
	})
	if err := s.App.Carts().Write(w, c); err != nil {
		s.writeErr(w, http.StatusInternalServerError, "could not save cart")
		return
	}
	s.cartJSON(w, c)
}

type cartUpdateRequest struct {
	Quantity int64 `json:"quantity"`
}

func (s *Server) CartItemUpdatePatch(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		s.writeErr(w, http.StatusBadRequest, "invalid item id")
		return
	}
	var req cartUpdateRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	c := s.App.Carts().Read(r)
	if !c.SetQuantity(id, req.Quantity) {
		s.writeErr(w, http.StatusNotFound, "item not in cart")
		return
	}
	if err := s.App.Carts().Write(w, c); err != nil {
		s.writeErr(w, http.StatusInternalServerError, "could not save cart")
		return
	}
	s.cartJSON(w, c)
}

func (s *Server) CartItemDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		s.writeErr(w, http.StatusBadRequest, "invalid item id")
		return
	}
	c := s.App.Carts().Read(r)
	if !c.Remove(id) {
		s.writeErr(w, http.StatusNotFound, "item not in cart")
		return
	}
	if err := s.App.Carts().Write(w, c); err != nil {
		s.writeErr(w, http.StatusInternalServerError, "could not save cart")
		return
	}
	s.cartJSON(w, c)
}

func (s *Server) CartClearDelete(w http.ResponseWriter, r *http.Request) {
	s.App.Carts().Clear(w)
	s.cartJSON(w, &cart.Cart{})
}
