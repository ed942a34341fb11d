package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreateOrder     = "CREATE_ORDER"
	ActionUpdateOrder     = "UPDATE_ORDER"
	ActionDeleteOrder     = "DELETE_ORDER"
	ActionCompleteOrder   = "COMPLETE_ORDER"
	ActionIssueToken      = "ISSUE_APPROVAL_TOKEN"
	ActionInvalidateToken = "INVALIDATE_APPROVAL_TOKEN"
	ActionApproveOrder    = "APPROVE_ORDER"
	ActionRejectOrder     = "REJECT_ORDER"
)

// AuditLog tracks who did what to which order, including actions performed by
// external approvers through the token flow (no user row, only a name and IP).
type AuditLog struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // nil for external token-authenticated actors
	User      *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ActorName string     `gorm:"type:varchar(255)" json:"actor_name"`
	ActorIP   string     `gorm:"type:varchar(45)" json:"actor_ip"`
	Action    string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID  string     `gorm:"type:varchar(50);index" json:"entity_id"`
	Details   string     `gorm:"type:jsonb" json:"details"`
	CreatedAt time.Time  `gorm:"index" json:"created_at"`
}
