package constants

import "time"

// Session and context keys
const (
	SessionCookieName = "ssy_session"
	SessionKeyToken   = "sid"

	ContextKeyUserID = "user_id"
	ContextKeyUser   = "user"
	ContextKeyTicket = "ticket"
)

// Validation limits
const (
	MinPasswordLength = 6
	MinStars          = 1
	MaxStars          = 5
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// Ticket lifecycle
const (
	// SLAThreshold is the resolution target used by reports.
	SLAThreshold = 48 * time.Hour

	DefaultTicketNumberPrefix = "SSY"
)

// Announcements
const (
	DefaultAnnouncementExpiryHours = 48
	MinAnnouncementExpiryHours     = 1
)

// Uploads
const (
	DefaultMaxUploadBytes = 5 * 1024 * 1024
	UploadsURLPath        = "/uploads"
)
