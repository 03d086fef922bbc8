package models

import "time"

type Category string

const (
	CategoryArticle Category = "article"
	CategoryPoem    Category = "poem"
	CategoryNews    Category = "news"
	CategoryArt     Category = "art"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryArticle, CategoryPoem, CategoryNews, CategoryArt:
		return true
	}
	return false
}

type Post struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Author   string    `json:"author"`
	Date     time.Time `json:"date"`
	Category Category  `json:"category"`
	Excerpt  string    `json:"excerpt"`
	Content  string    `json:"content"`
	Image    string    `json:"image,omitempty"`
	Likes    int       `json:"likes"`
	Approved bool      `json:"approved"`
}

type PostQuery struct {
	Category Category
	Q        string
	Page     int
	Limit    int
}

type PostPage struct {
	Items    []Post `json:"items"`
	Total    int    `json:"total"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
}

// swagger:model NewSubmission
type NewSubmission struct {
	Title    string   `json:"title"    example:"Chalk Mural: The River"`
	Author   string   `json:"author"   example:"Rohit Mehta"`
	Content  string   `json:"content"  example:"A study in motion and calm inspired by the monsoon."`
	Category Category `json:"category" example:"art"`
	Image    string   `json:"image,omitempty"`
}
