package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yukikurage/site-services-api/internal/database"
	"github.com/yukikurage/site-services-api/internal/metrics"
	"github.com/yukikurage/site-services-api/internal/models"
	"github.com/yukikurage/site-services-api/internal/repository"
	"github.com/yukikurage/site-services-api/internal/storage"
)

const testPassword = "secret123"

type published struct {
	name    string
	payload any
}

type recordingPublisher struct {
	mu       sync.Mutex
	messages []published
}

func (p *recordingPublisher) Publish(name string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, published{name: name, payload: payload})
}

func (p *recordingPublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.messages))
	for _, m := range p.messages {
		out = append(out, m.name)
	}
	return out
}

func (p *recordingPublisher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = nil
}

type serviceEnv struct {
	db  *gorm.DB
	pub *recordingPublisher

	auth          *AuthService
	users         *UserService
	tickets       *TicketService
	attachments   *AttachmentService
	announcements *AnnouncementService
	ratings       *RatingService
	reports       *ReportService
	audit         *AuditService
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.MigrateDB(db))
	return db
}

func newServiceEnv(t *testing.T) *serviceEnv {
	t.Helper()

	db := newTestDB(t)
	blobs, err := storage.NewBlobStore(t.TempDir(), 1024)
	require.NoError(t, err)

	txm := database.NewTransactionManager(db)
	pub := &recordingPublisher{}

	userRepo := repository.NewUserRepository(db)
	ticketRepo := repository.NewTicketRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	return &serviceEnv{
		db:  db,
		pub: pub,
		auth: NewAuthService(txm, userRepo, repository.NewSessionRepository(db), auditRepo,
			bcrypt.MinCost, 24*time.Hour),
		users: NewUserService(txm, userRepo, auditRepo, pub),
		tickets: NewTicketService(txm, ticketRepo, repository.NewEventRepository(db), userRepo, auditRepo,
			pub, metrics.Nop{}, "SSY"),
		attachments: NewAttachmentService(txm, repository.NewAttachmentRepository(db), auditRepo, blobs, pub),
		announcements: NewAnnouncementService(txm, repository.NewAnnouncementRepository(db), auditRepo, blobs,
			NewMarkdownRenderer(), pub, 48),
		ratings: NewRatingService(txm, repository.NewRatingRepository(db), ticketRepo, auditRepo),
		reports: NewReportService(repository.NewReportRepository(db)),
		audit:   NewAuditService(auditRepo),
	}
}

func (e *serviceEnv) createUser(t *testing.T, fullName, email string, role models.Role) *models.User {
	t.Helper()
	user, err := e.auth.CreateUser(context.Background(), RegisterInput{
		FullName: fullName,
		Email:    email,
		Password: testPassword,
		Role:     string(role),
	})
	require.NoError(t, err)
	return user
}

func (e *serviceEnv) fileTicket(t *testing.T, resident *models.User, title string) *models.Ticket {
	t.Helper()
	ticket, err := e.tickets.Create(context.Background(), resident, CreateTicketInput{
		Category:    "Plumbing",
		Title:       title,
		Description: "Water is leaking under the sink",
		Priority:    "HIGH",
	})
	require.NoError(t, err)
	return ticket
}

func (e *serviceEnv) countAudit(t *testing.T, action models.AuditAction) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&models.AuditLog{}).Where("action = ?", action).Count(&n).Error)
	return n
}
