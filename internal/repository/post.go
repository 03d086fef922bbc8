package repository

import (
	"sort"
	"strings"
	"sync"
	"time"

	"wallmag/internal/models"

	"github.com/google/uuid"
)

const excerptLen = 120

// PostStore: коллекция постов в памяти. Создаётся один раз на процесс и
// передаётся в сервис; все чтения и изменения идут под мьютексом.
type PostStore struct {
	mu    sync.RWMutex
	posts []models.Post
	now   func() time.Time
	newID func() string
}

func NewPostStore(seed []models.Post) *PostStore {
	posts := make([]models.Post, len(seed))
	copy(posts, seed)
	return &PostStore{
		posts: posts,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// WithClock подменяет часы (для тестов).
func (s *PostStore) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *PostStore) Query(q models.PostQuery) models.PostPage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	filtered := s.filterApproved(func(p *models.Post) bool {
		if q.Category != "" && p.Category != q.Category {
			return false
		}
		if q.Q == "" {
			return true
		}
		needle := strings.ToLower(q.Q)
		return strings.Contains(strings.ToLower(p.Title), needle) ||
			strings.Contains(strings.ToLower(p.Author), needle) ||
			strings.Contains(strings.ToLower(p.Excerpt), needle)
	})
	sortByDateDesc(filtered)

	items := []models.Post{}
	start := (q.Page - 1) * q.Limit
	if start >= 0 && start < len(filtered) {
		end := start + q.Limit
		if end > len(filtered) {
			end = len(filtered)
		}
		items = filtered[start:end]
	}

	return models.PostPage{
		Items:    items,
		Total:    len(filtered),
		Page:     q.Page,
		PageSize: q.Limit,
	}
}

func (s *PostStore) LatestByCategory(category models.Category, limit int) []models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	filtered := s.filterApproved(func(p *models.Post) bool { return p.Category == category })
	sortByDateDesc(filtered)
	if limit >= 0 && len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered
}

// Featured: первый одобренный арт или пост с картинкой, иначе первый одобренный.
func (s *PostStore) Featured() *models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var fallback *models.Post
	for i := range s.posts {
		p := s.posts[i]
		if !p.Approved {
			continue
		}
		if p.Category == models.CategoryArt || p.Image != "" {
			return &p
		}
		if fallback == nil {
			fallback = &p
		}
	}
	return fallback
}

func (s *PostStore) GetByID(id string) *models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.posts {
		if s.posts[i].ID == id && s.posts[i].Approved {
			p := s.posts[i]
			return &p
		}
	}
	return nil
}

// Like увеличивает счётчик ровно на 1, без идемпотентности.
func (s *PostStore) Like(id string) *models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.posts {
		if s.posts[i].ID == id {
			s.posts[i].Likes++
			p := s.posts[i]
			return &p
		}
	}
	return nil
}

func (s *PostStore) AddSubmission(sub models.NewSubmission) models.Post {
	post := models.Post{
		ID:       s.newID(),
		Title:    sub.Title,
		Author:   sub.Author,
		Content:  sub.Content,
		Category: sub.Category,
		Image:    sub.Image,
		Excerpt:  Excerpt(sub.Content),
		Likes:    0,
		Date:     s.now().UTC(),
		Approved: false,
	}

	s.mu.Lock()
	s.posts = append([]models.Post{post}, s.posts...)
	s.mu.Unlock()

	return post
}

// Pending: неодобренные посты в порядке коллекции (новые первыми).
func (s *PostStore) Pending() []models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Post{}
	for _, p := range s.posts {
		if !p.Approved {
			out = append(out, p)
		}
	}
	return out
}

func (s *PostStore) Approve(id string) *models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.posts {
		if s.posts[i].ID == id {
			s.posts[i].Approved = true
			p := s.posts[i]
			return &p
		}
	}
	return nil
}

// Excerpt: первые 120 символов контента, с "..." если обрезали.
func Excerpt(content string) string {
	runes := []rune(content)
	if len(runes) <= excerptLen {
		return content
	}
	return string(runes[:excerptLen]) + "..."
}

func (s *PostStore) filterApproved(match func(p *models.Post) bool) []models.Post {
	out := make([]models.Post, 0, len(s.posts))
	for i := range s.posts {
		if s.posts[i].Approved && match(&s.posts[i]) {
			out = append(out, s.posts[i])
		}
	}
	return out
}

func sortByDateDesc(posts []models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Date.After(posts[j].Date)
	})
}
