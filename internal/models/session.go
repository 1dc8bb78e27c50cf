package models

import "time"

type Session struct {
	ID        uint64    `gorm:"primarykey"`
	Token     string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	UserID    uint64    `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null;index"`

	User User `gorm:"foreignKey:UserID"`
}

// Expired reports whether the absolute expiry has passed at now.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt.Before(now)
}
