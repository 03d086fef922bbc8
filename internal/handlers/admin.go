package handlers

import (
	"net/http"

	"wallmag/internal/services"
	helpers "wallmag/internal/utils/helpers"

	"github.com/gorilla/mux"
)

// ModerationHandler: очередь модерации для редакторов.
type ModerationHandler struct {
	svc *services.PostService
}

func NewModerationHandler(svc *services.PostService) *ModerationHandler {
	return &ModerationHandler{svc: svc}
}

// Pending godoc
// @Summary Работы, ожидающие модерации
// @Tags admin
// @Security CookieAuth
// @Produce json
// @Success 200 {object} postItemsResponse
// @Failure 401 {object} helpers.MessageResponse
// @Failure 403 {object} helpers.MessageResponse
// @Router /api/admin/submissions [get]
func (h *ModerationHandler) Pending(w http.ResponseWriter, r *http.Request) {
	helpers.JSON(w, http.StatusOK, postItemsResponse{Items: h.svc.Pending(r.Context())})
}

// Approve godoc
// @Summary Одобрить работу
// @Tags admin
// @Security CookieAuth
// @Produce json
// @Param id path string true "ID публикации"
// @Success 200 {object} models.Post
// @Failure 403 {object} helpers.MessageResponse
// @Failure 404 {object} helpers.MessageResponse
// @Router /api/admin/posts/{id}/approve [patch]
func (h *ModerationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	post, err := h.svc.Approve(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondMapped(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, post)
}
