package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"wallmag/internal/logger"
	"wallmag/internal/models"
	"wallmag/internal/services"
	helpers "wallmag/internal/utils/helpers"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type PostHandler struct {
	svc *services.PostService
}

func NewPostHandler(svc *services.PostService) *PostHandler {
	return &PostHandler{svc: svc}
}

type postItemsResponse struct {
	Items []models.Post `json:"items"`
}

// List godoc
// @Summary Список одобренных публикаций
// @Description Поиск по подстроке (заголовок, автор, анонс), фильтр по категории, пагинация. Новые сначала.
// @Tags posts
// @Produce json
// @Param q query string false "Поиск"
// @Param category query string false "article | poem | news | art"
// @Param page query int false "Страница (с 1)"
// @Param limit query int false "Размер страницы (1..50, по умолчанию 6)"
// @Success 200 {object} models.PostPage
// @Failure 400 {object} helpers.MessageResponse
// @Router /api/posts [get]
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	res, err := h.svc.List(r.Context(), q.Get("category"), q.Get("q"), page, limit)
	if err != nil {
		respondMapped(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, res)
}

// Featured godoc
// @Summary Публикация для главной
// @Tags posts
// @Produce json
// @Success 200 {object} models.Post
// @Failure 404 {object} helpers.MessageResponse
// @Router /api/posts/featured [get]
func (h *PostHandler) Featured(w http.ResponseWriter, r *http.Request) {
	post, err := h.svc.Featured(r.Context())
	if err != nil {
		respondMapped(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, post)
}

// Latest godoc
// @Summary Последние публикации категории
// @Tags posts
// @Produce json
// @Param category query string true "article | poem | news | art"
// @Param limit query int false "По умолчанию 3"
// @Success 200 {object} postItemsResponse
// @Failure 400 {object} helpers.MessageResponse
// @Router /api/posts/latest [get]
func (h *PostHandler) Latest(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	items, err := h.svc.Latest(r.Context(), r.URL.Query().Get("category"), limit)
	if err != nil {
		respondMapped(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, postItemsResponse{Items: items})
}

// Get godoc
// @Summary Публикация по id
// @Tags posts
// @Produce json
// @Param id path string true "ID публикации"
// @Success 200 {object} models.Post
// @Failure 404 {object} helpers.MessageResponse
// @Router /api/posts/{id} [get]
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	post, err := h.svc.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondMapped(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, post)
}

// Like godoc
// @Summary Поставить лайк
// @Tags posts
// @Produce json
// @Param id path string true "ID публикации"
// @Success 200 {object} models.Post
// @Failure 404 {object} helpers.MessageResponse
// @Router /api/posts/{id}/like [post]
func (h *PostHandler) Like(w http.ResponseWriter, r *http.Request) {
	post, err := h.svc.Like(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondMapped(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, post)
}

// Submit godoc
// @Summary Отправить работу на модерацию
// @Description Публикация создаётся неодобренной; редактору уходит уведомление.
// @Tags posts
// @Accept json
// @Produce json
// @Param input body models.NewSubmission true "Работа"
// @Success 201 {object} models.Post
// @Failure 400 {object} helpers.MessageResponse
// @Router /api/submissions [post]
func (h *PostHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var in models.NewSubmission
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		logger.WithCtx(r.Context()).Warn("Ошибка декодирования JSON в Submit", zap.Error(err))
		helpers.Error(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	post, err := h.svc.Submit(r.Context(), in)
	if err != nil {
		respondMapped(w, r, err)
		return
	}

	helpers.JSON(w, http.StatusCreated, post)
}
