package news

import "time"

// News represents a single news entry published to the partner portal
type News struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  *string   `json:"category,omitempty"`
	ImageURL  *string   `json:"image_url,omitempty"`
	Urgent    bool      `json:"is_urgent"`
	Active    bool      `json:"is_active"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
