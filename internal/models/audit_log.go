package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type AuditAction string

const (
	AuditUserRegister       AuditAction = "USER_REGISTER"
	AuditUserLogin          AuditAction = "USER_LOGIN"
	AuditUserLogout         AuditAction = "USER_LOGOUT"
	AuditUserUpdate         AuditAction = "USER_UPDATE"
	AuditTicketCreate       AuditAction = "TICKET_CREATE"
	AuditTicketUpdate       AuditAction = "TICKET_UPDATE"
	AuditTicketDelete       AuditAction = "TICKET_DELETE"
	AuditAttachmentUpload   AuditAction = "ATTACHMENT_UPLOAD"
	AuditAnnouncementCreate AuditAction = "ANNOUNCEMENT_CREATE"
	AuditAnnouncementDelete AuditAction = "ANNOUNCEMENT_DELETE"
	AuditRatingSave         AuditAction = "RATING_SAVE"
)

type AuditLog struct {
	ID        uint64         `gorm:"primarykey" json:"id"`
	Action    AuditAction    `gorm:"type:varchar(40);not null;index" json:"action"`
	ActorID   *uint64        `json:"actorId"`
	Meta      datatypes.JSON `json:"meta"`
	CreatedAt time.Time      `gorm:"not null;index" json:"createdAt"`
}

// NewAuditLog builds an audit row; meta may be nil.
func NewAuditLog(action AuditAction, actorID *uint64, meta map[string]any, at time.Time) *AuditLog {
	entry := &AuditLog{
		Action:    action,
		ActorID:   actorID,
		CreatedAt: at,
	}
	if meta != nil {
		if raw, err := json.Marshal(meta); err == nil {
			entry.Meta = datatypes.JSON(raw)
		}
	}
	return entry
}
