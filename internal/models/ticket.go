package models

import (
	"strings"
	"time"
)

type TicketStatus string

const (
	TicketStatusOpen      TicketStatus = "OPEN"
	TicketStatusInReview  TicketStatus = "IN_REVIEW"
	TicketStatusAssigned  TicketStatus = "ASSIGNED"
	TicketStatusResolved  TicketStatus = "RESOLVED"
	TicketStatusClosed    TicketStatus = "CLOSED"
	TicketStatusCancelled TicketStatus = "CANCELLED"
)

// ParseTicketStatus accepts any casing; ok is false for unknown values.
func ParseTicketStatus(s string) (TicketStatus, bool) {
	st := TicketStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case TicketStatusOpen, TicketStatusInReview, TicketStatusAssigned,
		TicketStatusResolved, TicketStatusClosed, TicketStatusCancelled:
		return st, true
	}
	return "", false
}

// IsResolved is true for the statuses that stamp resolved_at and allow rating.
func (s TicketStatus) IsResolved() bool {
	return s == TicketStatusResolved || s == TicketStatusClosed
}

type TicketPriority string

const (
	PriorityLow    TicketPriority = "LOW"
	PriorityNormal TicketPriority = "NORMAL"
	PriorityHigh   TicketPriority = "HIGH"
	PriorityUrgent TicketPriority = "URGENT"
)

func ParseTicketPriority(s string) (TicketPriority, bool) {
	p := TicketPriority(strings.ToUpper(strings.TrimSpace(s)))
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return p, true
	}
	return "", false
}

type Ticket struct {
	ID           uint64         `gorm:"primarykey" json:"id"`
	TicketNo     *string        `gorm:"type:varchar(40);uniqueIndex" json:"ticketNo"`
	CreatedBy    uint64         `gorm:"not null;index" json:"createdBy"`
	Category     string         `gorm:"type:varchar(100);not null" json:"category"`
	Title        string         `gorm:"type:varchar(255);not null" json:"title"`
	Description  string         `gorm:"type:text;not null" json:"description"`
	Priority     TicketPriority `gorm:"type:varchar(20);not null" json:"priority"`
	Status       TicketStatus   `gorm:"type:varchar(20);not null;default:'OPEN';index" json:"status"`
	AssignedTo   *uint64        `gorm:"index" json:"assignedTo"`
	CreatedAt    time.Time      `gorm:"index" json:"createdAt"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime:false" json:"updatedAt"`
	ResolvedAt   *time.Time     `json:"resolvedAt"`
	ResolvedNote string         `gorm:"type:text" json:"resolvedNote"`
}
