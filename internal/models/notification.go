package models

import (
	"time"

	"gorm.io/datatypes"
)

type NotificationKind string

const (
	KindNewFavoriteCategoryEvent NotificationKind = "NewFavoriteCategoryEvent"
	KindEventSucceeded           NotificationKind = "EventSucceeded"
	KindEventFailed              NotificationKind = "EventFailed"
	KindEventWithdrawn           NotificationKind = "EventWithdrawn"
)

// Notification is a stored notification-intent. Delivery to the user is
// somebody else's job; the record only says what should be sent.
type Notification struct {
	ID          string            `gorm:"primaryKey;type:varchar(36)" json:"id"`
	EventID     string            `gorm:"type:varchar(36);not null;index" json:"event_id"`
	RecipientID string            `gorm:"type:varchar(36);not null;index" json:"recipient_id"`
	Kind        NotificationKind  `gorm:"type:varchar(40);not null" json:"kind"`
	Context     datatypes.JSONMap `gorm:"type:jsonb" json:"context,omitempty"`
	Read        bool              `gorm:"not null;default:false" json:"read"`
	CreatedAt   time.Time         `json:"created_at"`
}
