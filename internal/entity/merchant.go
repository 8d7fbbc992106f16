package entity

import (
	"time"

	"github.com/google/uuid"
)

// Merchant represents a retailer for data transfer between layers.
// Domain, when set, is stored normalized (lowercase, no www./shop./store.
// prefix) and is unique across merchants.
type Merchant struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Domain          *string   `json:"domain,omitempty"`
	Aliases         []string  `json:"aliases,omitempty"`
	SupportEmail    *string   `json:"support_email,omitempty"`
	SupportURL      *string   `json:"support_url,omitempty"`
	ReturnPortalURL *string   `json:"return_portal_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
