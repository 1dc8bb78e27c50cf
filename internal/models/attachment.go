package models

import "time"

type Attachment struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	TicketID     uint64    `gorm:"not null;index" json:"ticketId"`
	UploadedBy   uint64    `gorm:"not null" json:"uploadedBy"`
	OriginalName string    `gorm:"type:varchar(255);not null" json:"originalName"`
	FileName     string    `gorm:"type:varchar(255);not null" json:"fileName"`
	Mime         string    `gorm:"type:varchar(127);not null" json:"mime"`
	Size         int64     `gorm:"not null" json:"size"`
	CreatedAt    time.Time `gorm:"not null" json:"createdAt"`
}
