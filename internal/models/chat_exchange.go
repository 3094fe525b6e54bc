package models

import (
	"time"

	"gorm.io/gorm"
)

// ChatExchange records one question sent to the assistant and its answer
type ChatExchange struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Subject string `gorm:"type:varchar(255)" json:"subject"`
	Message string `gorm:"type:text" json:"message"`
	Reply   string `gorm:"type:text" json:"reply"`
	Failed  bool   `gorm:"default:false" json:"failed"`
}
