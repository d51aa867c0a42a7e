package domain

import "time"

type ArticleCategory string

const (
	ArticleCategoryWellBeing    ArticleCategory = "bien_etre"
	ArticleCategoryStress       ArticleCategory = "gestion_stress"
	ArticleCategoryBreathing    ArticleCategory = "respiration"
	ArticleCategoryMentalHealth ArticleCategory = "sante_mentale"
)

func (c ArticleCategory) Valid() bool {
	switch c {
	case ArticleCategoryWellBeing, ArticleCategoryStress, ArticleCategoryBreathing, ArticleCategoryMentalHealth:
		return true
	}
	return false
}

type Article struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Summary   string          `json:"summary,omitempty"`
	Content   string          `json:"content"`
	Category  ArticleCategory `json:"category"`
	Published bool            `json:"published"`
	AuthorID  string          `json:"author_id,omitempty"`
	LikeCount int             `json:"like_count"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type Comment struct {
	ID        string    `json:"id"`
	ArticleID string    `json:"article_id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
