package models

import "time"

type Rating struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	TicketID  uint64    `gorm:"not null;uniqueIndex:idx_ratings_ticket_user" json:"ticketId"`
	UserID    uint64    `gorm:"not null;uniqueIndex:idx_ratings_ticket_user" json:"userId"`
	Stars     int       `gorm:"not null" json:"stars"`
	Note      string    `gorm:"type:text" json:"note"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
