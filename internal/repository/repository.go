package repository

import (
	"context"
	"time"

	"github.com/yukikurage/site-services-api/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByEmail finds a user by lower-cased email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// List returns every user, newest first
	List(ctx context.Context) ([]models.User, error)

	// SetActive toggles the active flag
	SetActive(ctx context.Context, id uint64, active bool) error
}

// SessionRepository defines the interface for session token storage
type SessionRepository interface {
	// Create stores a new session
	Create(ctx context.Context, session *models.Session) error

	// FindByToken finds a session and its user by token
	FindByToken(ctx context.Context, token string) (*models.Session, error)

	// DeleteByToken removes a session; unknown tokens are not an error
	DeleteByToken(ctx context.Context, token string) error

	// DeleteExpired removes sessions that expired before now
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// TicketRepository defines the interface for ticket data access
type TicketRepository interface {
	// Create inserts a ticket row
	Create(ctx context.Context, ticket *models.Ticket) error

	// SetTicketNo writes the ticket number once the id is known
	SetTicketNo(ctx context.Context, id uint64, ticketNo string) error

	// FindByID finds a ticket by ID
	FindByID(ctx context.Context, id uint64) (*models.Ticket, error)

	// List retrieves tickets matching the filter, newest first
	List(ctx context.Context, filter TicketFilter) ([]models.Ticket, error)

	// SaveState writes the mutable lifecycle columns of a ticket
	SaveState(ctx context.Context, ticket *models.Ticket) error

	// Delete hard-deletes a ticket row
	Delete(ctx context.Context, id uint64) error
}

// TicketFilter holds filtering options for listing tickets
type TicketFilter struct {
	CreatedBy  *uint64
	AssignedTo *uint64
	Status     *models.TicketStatus
	// Query matches ticket_no, title, description or category by substring
	Query string
}

// EventRepository defines the interface for the ticket timeline
type EventRepository interface {
	// Append inserts timeline events in order
	Append(ctx context.Context, events []models.TicketEvent) error

	// ListByTicket returns events ordered by created_at then id
	ListByTicket(ctx context.Context, ticketID uint64) ([]models.TicketEvent, error)
}

// AttachmentRepository defines the interface for attachment metadata
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *models.Attachment) error
	ListByTicket(ctx context.Context, ticketID uint64) ([]models.Attachment, error)
}

// AnnouncementRepository defines the interface for announcements
type AnnouncementRepository interface {
	Create(ctx context.Context, announcement *models.Announcement) error
	FindByID(ctx context.Context, id uint64) (*models.Announcement, error)

	// List returns announcements newest first; publishedOnly drops unpublished rows
	List(ctx context.Context, publishedOnly bool) ([]models.Announcement, error)

	Delete(ctx context.Context, id uint64) error
}

// RatingRepository defines the interface for resident ratings
type RatingRepository interface {
	// Upsert inserts or replaces the rating for (ticket, user)
	Upsert(ctx context.Context, rating *models.Rating) error

	FindByTicketAndUser(ctx context.Context, ticketID, userID uint64) (*models.Rating, error)
	ListByUser(ctx context.Context, userID uint64) ([]models.Rating, error)
}

// AuditRepository defines the interface for the audit log
type AuditRepository interface {
	Record(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, offset, limit int) ([]models.AuditLog, error)
}

// ReportRepository defines the aggregate queries behind the admin dashboard
type ReportRepository interface {
	// TicketTimes returns the lifecycle columns of every ticket
	TicketTimes(ctx context.Context) ([]TicketTimes, error)

	// TopStaff ranks STAFF users by the ratings on tickets assigned to them
	TopStaff(ctx context.Context, limit int) ([]StaffRating, error)
}

// TicketTimes is the projection used by the summary report
type TicketTimes struct {
	Status     models.TicketStatus
	CreatedAt  time.Time
	ResolvedAt *time.Time
}

// StaffRating is one row of the top-staff report
type StaffRating struct {
	ID           uint64  `json:"id"`
	FullName     string  `json:"full_name"`
	Email        string  `json:"email"`
	RatingsCount int64   `json:"ratings_count"`
	AvgStars     float64 `json:"avg_stars"`
}
