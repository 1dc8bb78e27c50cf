package models

import "time"

type EventType string

const (
	EventTypeStatus  EventType = "STATUS"
	EventTypeAssign  EventType = "ASSIGN"
	EventTypeComment EventType = "COMMENT"
)

// TicketEvent is an append-only timeline row. It carries no relation
// to Ticket and survives a hard-deleted ticket.
type TicketEvent struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	TicketID  uint64    `gorm:"not null;index" json:"ticketId"`
	ActorID   *uint64   `json:"actorId"`
	Type      EventType `gorm:"type:varchar(20);not null" json:"type"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
}
