package models

import "time"

type Announcement struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	Title     string    `gorm:"type:varchar(255);not null" json:"title"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	CreatedBy uint64    `gorm:"not null" json:"createdBy"`
	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expiresAt"`
	Published bool      `gorm:"not null;default:true" json:"is_published"`
	ImagePath *string   `gorm:"type:varchar(255)" json:"imagePath"`
}

// VisibleAt reports whether non-admins may see the announcement at now.
func (a *Announcement) VisibleAt(now time.Time) bool {
	return a.Published && a.ExpiresAt.After(now)
}
