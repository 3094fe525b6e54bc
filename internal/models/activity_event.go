package models

import (
	"time"

	"gorm.io/gorm"
)

// ActivityKind classifies an activity event
type ActivityKind string

const (
	ActivityKindSignin       ActivityKind = "signin"
	ActivityKindSigninFailed ActivityKind = "signin_failed"
	ActivityKindSignout      ActivityKind = "signout"
	ActivityKindChat         ActivityKind = "chat"
)

// ActivityEvent is one entry of the activity feed
type ActivityEvent struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Kind    ActivityKind `gorm:"type:varchar(30);index" json:"kind"`
	Subject string       `gorm:"type:varchar(255)" json:"subject"` // OIDC subject, empty when anonymous
	Message string       `gorm:"type:text" json:"message"`
}

// Label is the human-readable name of the event kind
func (e ActivityEvent) Label() string {
	switch e.Kind {
	case ActivityKindSignin:
		return "Signed in"
	case ActivityKindSigninFailed:
		return "Sign-in failed"
	case ActivityKindSignout:
		return "Signed out"
	case ActivityKindChat:
		return "Asked the assistant"
	default:
		return string(e.Kind)
	}
}
