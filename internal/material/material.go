package material

import "time"

// Material represents a downloadable material offered to partners
type Material struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	FileURL     *string   `json:"file_url,omitempty"`
	FileType    *string   `json:"file_type,omitempty"`
	Category    *string   `json:"category,omitempty"`
	Active      bool      `json:"is_active"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
