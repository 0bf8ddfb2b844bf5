package group

import "time"

// Group represents a partner group.
// Every profile may belong to at most one group, and a group may reference at
// most one coordinating profile.
type Group struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	CoordinatorID *string   `json:"coordinator_id,omitempty"`
	PowerBILink   *string   `json:"powerbi_link,omitempty"`
	FormLink      *string   `json:"form_link,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
