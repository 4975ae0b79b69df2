package models

import (
	"time"

	"github.com/google/uuid"
)

// Note is the persistent entity. ID and CreatedAt are immutable after
// creation; IsDeleted only ever flips false -> true (soft delete). Wire
// names follow the original API so existing clients keep working.
type Note struct {
	ID        uuid.UUID `json:"_id"`
	OwnerID   uuid.UUID `json:"-"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	IsDeleted bool      `json:"is_deleted"`
}
