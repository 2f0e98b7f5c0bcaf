package notes

import "time"

const (
	MaxTitleLength = 100
	MaxSlugLength  = 100
)

type Note struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	Slug      string    `json:"slug"`
	AuthorID  int       `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}
