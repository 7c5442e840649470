package domain

import (
	"time"

	"github.com/google/uuid"
)

// Rider is the fine-relevant slice of a user account.
// OutstandingFine only grows from completed overstay journeys; clearing it
// belongs to the account service.
type Rider struct {
	ID              uuid.UUID `json:"id"`
	OutstandingFine int64     `json:"outstanding_fine"`
	UpdatedAt       time.Time `json:"updated_at"`
}
