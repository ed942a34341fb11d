package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Approver is a person authorized to approve or reject purchase orders via
// the token flow. The PIN is the second factor binding the approver identity
// to the decision; only its bcrypt hash is ever stored.
type Approver struct {
	ID                uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name              string         `gorm:"type:varchar(255);not null" json:"name"`
	Title             string         `gorm:"type:varchar(255)" json:"title"`
	Email             string         `gorm:"type:varchar(255)" json:"email"`
	PINHash           string         `gorm:"type:varchar(255)" json:"-"`
	IsApprover        bool           `gorm:"default:true" json:"is_approver"`
	UnlimitedApproval bool           `gorm:"default:false" json:"unlimited_approval"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}
