package services

import (
	"context"
	"html"
	"net/url"
	"strings"

	"wallmag/internal/logger"
	"wallmag/internal/models"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

const (
	DefaultPageLimit   = 6
	MaxPageLimit       = 50
	DefaultLatestLimit = 3
)

type PostService struct {
	store    PostStore
	notifier SubmissionNotifier
	plain    *bluemonday.Policy
}

func NewPostService(store PostStore, notifier SubmissionNotifier) *PostService {
	return &PostService{
		store:    store,
		notifier: notifier,
		plain:    bluemonday.StrictPolicy(),
	}
}

// plainText вырезает разметку и возвращает обычный текст: посты хранятся как текст,
// экранирование делает тот, кто выводит (фронтенд, шаблон письма).
func (s *PostService) plainText(in string) string {
	return strings.TrimSpace(html.UnescapeString(s.plain.Sanitize(in)))
}

func parseCategory(raw string) (models.Category, error) {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return "", nil
	}
	c := models.Category(raw)
	if !c.Valid() {
		return "", ErrInvalidCategory
	}
	return c, nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > MaxPageLimit {
		limit = DefaultPageLimit
	}
	return page, limit
}

// List: одобренные посты с фильтром, поиском и пагинацией.
func (s *PostService) List(ctx context.Context, category, q string, page, limit int) (models.PostPage, error) {
	cat, err := parseCategory(category)
	if err != nil {
		return models.PostPage{}, err
	}
	page, limit = normalizePage(page, limit)

	result := s.store.Query(models.PostQuery{
		Category: cat,
		Q:        strings.TrimSpace(q),
		Page:     page,
		Limit:    limit,
	})
	logger.WithCtx(ctx).Debug("Список постов",
		zap.String("category", string(cat)), zap.Int("page", page), zap.Int("total", result.Total))
	return result, nil
}

func (s *PostService) Latest(_ context.Context, category string, limit int) ([]models.Post, error) {
	cat, err := parseCategory(category)
	if err != nil {
		return nil, err
	}
	if cat == "" {
		return nil, ErrInvalidCategory
	}
	if limit < 1 || limit > MaxPageLimit {
		limit = DefaultLatestLimit
	}
	return s.store.LatestByCategory(cat, limit), nil
}

func (s *PostService) Featured(_ context.Context) (*models.Post, error) {
	if p := s.store.Featured(); p != nil {
		return p, nil
	}
	return nil, ErrPostNotFound
}

func (s *PostService) Get(_ context.Context, id string) (*models.Post, error) {
	if p := s.store.GetByID(strings.TrimSpace(id)); p != nil {
		return p, nil
	}
	return nil, ErrPostNotFound
}

func (s *PostService) Like(ctx context.Context, id string) (*models.Post, error) {
	p := s.store.Like(strings.TrimSpace(id))
	if p == nil {
		return nil, ErrPostNotFound
	}
	logger.WithCtx(ctx).Debug("Лайк поста", zap.String("post_id", p.ID), zap.Int("likes", p.Likes))
	return p, nil
}

// Submit очищает поля от разметки и добавляет публикацию на модерацию.
func (s *PostService) Submit(ctx context.Context, in models.NewSubmission) (models.Post, error) {
	cat, err := parseCategory(string(in.Category))
	if err != nil || cat == "" {
		return models.Post{}, ErrInvalidCategory
	}

	sub := models.NewSubmission{
		Title:    s.plainText(in.Title),
		Author:   s.plainText(in.Author),
		Content:  s.plainText(in.Content),
		Category: cat,
		Image:    strings.TrimSpace(in.Image),
	}
	if sub.Title == "" || sub.Author == "" || sub.Content == "" {
		return models.Post{}, ErrInvalidRequest
	}
	if sub.Image != "" && !validImageRef(sub.Image) {
		return models.Post{}, ErrInvalidRequest
	}

	post := s.store.AddSubmission(sub)
	logger.WithCtx(ctx).Info("Новая публикация на модерации",
		zap.String("post_id", post.ID), zap.String("category", string(post.Category)))

	if s.notifier != nil {
		s.notifier.NotifySubmission(ctx, post)
	}
	return post, nil
}

func (s *PostService) Pending(_ context.Context) []models.Post {
	return s.store.Pending()
}

func (s *PostService) Approve(ctx context.Context, id string) (*models.Post, error) {
	p := s.store.Approve(strings.TrimSpace(id))
	if p == nil {
		return nil, ErrPostNotFound
	}
	logger.WithCtx(ctx).Info("Публикация одобрена", zap.String("post_id", p.ID))
	return p, nil
}

// validImageRef: путь от корня сайта или http(s) URL.
func validImageRef(ref string) bool {
	if strings.HasPrefix(ref, "/") && !strings.HasPrefix(ref, "//") {
		return true
	}
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
