package handlers

import (
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"drinkdrop-go/internal/db"

	"github.com/google/uuid"
	"github.com/nfnt/resize"
)

type menuItemRequest struct {
	Name        string   `json:"name"`
	Ingredients string   `json:"ingredients"`
	UnitSize    string   `json:"unit_size"`
	ABVPercent  *float64 `json:"abv_percent"`
	PriceCents  int64    `json:"price_cents"`
	Category    string   `json:"category"`
	InStock     bool     `json:"in_stock"`
	IsLive      bool     `json:"is_live"`
	AssignAll   bool     `json:"assign_all"`
}

func (req *menuItemRequest) validate() string {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return "name is required"
	}
	if req.PriceCents < 0 {
		return "price must not be negative"
	}
	if req.ABVPercent != nil && (*req.ABVPercent < 0 || *req.ABVPercent > 100) {
		return "abv_percent must be between 0 and 100"
	}
	return ""
}

func (s *Server) invalidateMenuCache() {
	s.App.Cache().DeletePrefix("menu:")
}

func (s *Server) AdminMenuGet(w http.ResponseWriter, r *http.Request) {
	items, err := s.App.Store().Q.ListMenuItems(r.URL.Query().Get("q"))
	if err != nil {
		s.writeErr(w, http.StatusInternalServerError, "could not load menu")
		return
	}
	if items == nil {
		items = []db.MenuItem{}
	}
	s.writeJSON(w, http.StatusOK, items)
}

func (s *Server) AdminMenuCreatePost(w http.ResponseWriter, r *http.Request) {
	var req menuItemRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		s.writeErr(w, http.StatusBadRequest, msg)
		return
	}

	id, err := s.App.Store().Q.CreateMenuItem(db.CreateMenuItemParams{
		Name:        req.Name,
		Ingredients: req.Ingredients,
		UnitSize:    req.UnitSize,
		ABVPercent:  req.ABVPercent,
		PriceCents:  req.PriceCents,
		Category:    req.Category,
		InStock:     req.InStock,
		IsLive:      req.IsLive,
		AssignAll:   req.AssignAll,
	})
	if err != nil {
		s.writeErr(w, http.StatusConflict, "could not create item (name may already exist)")
		return
	}

	s.invalidateMenuCache()
	item, _ := s.App.Store().Q.GetMenuItemByID(id)
	s.writeJSON(w, http.StatusCreated, item)
}

func (s *Server) AdminMenuUpdatePut(w http.ResponseWriter, r *http.Request) {
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

	var req menuItemRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		s.writeErr(w, http.StatusBadRequest, msg)
		return
	}

	if err := s.App.Store().Q.UpdateMenuItem(db.UpdateMenuItemParams{
		ID:          id,
		Name:        req.Name,
		Ingredients: req.Ingredients,
		UnitSize:    req.UnitSize,
		ABVPercent:  req.ABVPercent,
		PriceCents:  req.PriceCents,
		Category:    req.Category,
		InStock:     req.InStock,
		IsLive:      req.IsLive,
		AssignAll:   req.AssignAll,
	}); err != nil {
		s.writeErr(w, http.StatusConflict, "could not update item")
		return
	}

	s.invalidateMenuCache()
	item, _ = s.App.Store().Q.GetMenuItemByID(id)
	s.writeJSON(w, http.StatusOK, item)
}

func (s *Server) AdminMenuDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		s.writeErr(w, http.StatusBadRequest, "invalid item id")
		return
	}
	if err := s.App.Store().Q.DeleteMenuItem(id); err != nil {
		s.writeErr(w, http.StatusInternalServerError, "could not delete item")
		return
	}
	s.invalidateMenuCache()
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) AdminMenuToggleLivePost(w http.ResponseWriter, r *http.Request) {
	s.toggleMenuFlag(w, r, s.App.Store().Q.SetMenuItemLive, func(m *db.MenuItem) bool { return m.IsLive })
}

func (s *Server) AdminMenuToggleStockPost(w http.ResponseWriter, r *http.Request) {
	s.toggleMenuFlag(w, r, s.App.Store().Q.SetMenuItemInStock, func(m *db.MenuItem) bool { return m.InStock })
}

func (s *Server) toggleMenuFlag(w http.ResponseWriter, r *http.Request, set func(int64, bool) error, get func(*db.MenuItem) bool) {
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
	if err := set(id, !get(item)); err != nil {
		s.writeErr(w, http.StatusInternalServerError, "could not update item")
		return
	}
	s.invalidateMenuCache()
	item, _ = s.App.Store().Q.GetMenuItemByID(id)
	s.writeJSON(w, http.StatusOK, item)
}

type assignRequest struct {
	AssignAll bool    `json:"assign_all"`
	UserIDs   []int64 `json:"user_ids"`
}

func (s *Server) AdminMenuAssignPost(w http.ResponseWriter, r *http.Request) {
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

	var req assignRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.App.Store().Q.ReplaceMenuAssignments(id, req.AssignAll, req.UserIDs); err != nil {
		s.writeErr(w, http.StatusInternalServerError, "could not update assignments")
		return
	}
	s.invalidateMenuCache()

	assigned, _ := s.App.Store().Q.GetMenuAssignments(id)
	s.writeJSON(w, http.StatusOK, map[string]any{"assign_all": req.AssignAll, "user_ids": assigned})
}

const maxImageBytes = 10 << 20
const imageMaxWidth = 800

// AdminMenuImagePost accepts a multipart image upload, scales it down to a
// web-friendly width and stores it under the upload dir.
func (s *Server) AdminMenuImagePost(w http.ResponseWriter, r *http.Request) {
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

	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		s.writeErr(w, http.StatusBadRequest, "invalid upload")
		return
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		s.writeErr(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		s.writeErr(w, http.StatusBadRequest, "unsupported image format")
		return
	}

	scaled := resize.Resize(imageMaxWidth, 0, img, resize.Lanczos3)

	name := fmt.Sprintf("item-%d-%s.jpg", id, uuid.NewString()[:8])
	dst := filepath.Join(s.App.Config().UploadDir, name)
	out, err := os.Create(dst)
	if err != nil {
		s.writeErr(w, http.StatusInternalServerError, "could not store image")
		return
	}
	defer out.Close()
	if err := jpeg.Encode(out, scaled, &jpeg.Options{Quality: 85}); err != nil {
		s.writeErr(w, http.StatusInternalServerError, "could not encode image")
		return
	}

	imagePath := "/uploads/" + name
	if err := s.App.Store().Q.SetMenuItemImage(id, imagePath); err != nil {
		s.writeErr(w, http.StatusInternalServerError, "could not save image path")
		return
	}
	s.invalidateMenuCache()

	item, _ = s.App.Store().Q.GetMenuItemByID(id)
	s.writeJSON(w, http.StatusOK, item)
}
