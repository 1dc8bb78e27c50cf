package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yukikurage/site-services-api/internal/constants"
	"github.com/yukikurage/site-services-api/internal/database"
	"github.com/yukikurage/site-services-api/internal/models"
	"github.com/yukikurage/site-services-api/internal/repository"
	"github.com/yukikurage/site-services-api/internal/utils"
)

var (
	ErrEmailExists          = errors.New("email already exists")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrWeakPassword         = errors.New("password too short")
	ErrInvalidRole          = errors.New("invalid role")
	ErrUnauthenticated      = errors.New("no valid session")
	ErrAccountDisabled      = errors.New("account disabled")
	ErrUserNotFound         = errors.New("user not found")
	ErrFailedToHashPassword = errors.New("failed to hash password")
)

// AuthService handles registration, login and session resolution.
type AuthService struct {
	txm         *database.TransactionManager
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	auditRepo   repository.AuditRepository
	bcryptCost  int
	sessionTTL  time.Duration
	now         func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	txm *database.TransactionManager,
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	auditRepo repository.AuditRepository,
	bcryptCost int,
	sessionTTL time.Duration,
) *AuthService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		txm:         txm,
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		auditRepo:   auditRepo,
		bcryptCost:  bcryptCost,
		sessionTTL:  sessionTTL,
		now:         time.Now,
	}
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	FullName string
	Email    string
	Password string
	Role     string
}

// Register creates a user and signs them in. Role defaults to RESIDENT.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, *models.Session, error) {
	user, err := s.buildUser(input)
	if err != nil {
		return nil, nil, err
	}

	var session *models.Session
	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.insertUser(ctx, user); err != nil {
			return err
		}
		issued, err := s.issueSession(ctx, user.ID, user.CreatedAt)
		session = issued
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	return user, session, nil
}

// CreateUser provisions an account without signing it in. Used by the CLI.
func (s *AuthService) CreateUser(ctx context.Context, input RegisterInput) (*models.User, error) {
	user, err := s.buildUser(input)
	if err != nil {
		return nil, err
	}
	if err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.insertUser(ctx, user)
	}); err != nil {
		return nil, err
	}
	return user, nil
}

// PruneSessions deletes every expired session row.
func (s *AuthService) PruneSessions(ctx context.Context) (int64, error) {
	n, err := s.sessionRepo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to prune sessions: %w", err)
	}
	return n, nil
}

func (s *AuthService) buildUser(input RegisterInput) (*models.User, error) {
	fullName := strings.TrimSpace(input.FullName)
	email := normalizeEmail(input.Email)
	if fullName == "" || email == "" || input.Password == "" {
		return nil, ErrMissingFields
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrWeakPassword
	}

	role := models.RoleResident
	if strings.TrimSpace(input.Role) != "" {
		parsed, ok := models.ParseRole(input.Role)
		if !ok {
			return nil, ErrInvalidRole
		}
		role = parsed
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	now := s.now()
	return &models.User{
		FullName:     fullName,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// insertUser enforces case-insensitive email uniqueness and records USER_REGISTER.
func (s *AuthService) insertUser(ctx context.Context, user *models.User) error {
	if _, err := s.userRepo.FindByEmail(ctx, user.Email); err == nil {
		return ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check email: %w", err)
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	userID := user.ID
	return s.auditRepo.Record(ctx, models.NewAuditLog(models.AuditUserRegister, &userID,
		map[string]any{"email": user.Email, "role": user.Role}, user.CreatedAt))
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and issues a fresh session.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*models.User, *models.Session, error) {
	email := normalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return nil, nil, ErrMissingFields
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}
	if !user.Active {
		return nil, nil, ErrAccountDisabled
	}

	now := s.now()
	var session *models.Session
	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		issued, err := s.issueSession(ctx, user.ID, now)
		if err != nil {
			return err
		}
		session = issued
		userID := user.ID
		return s.auditRepo.Record(ctx, models.NewAuditLog(models.AuditUserLogin, &userID,
			map[string]any{"email": user.Email}, now))
	})
	if err != nil {
		return nil, nil, err
	}

	return user, session, nil
}

// Logout deletes the session behind token. An unknown or empty token is not an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	return s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		session, err := s.sessionRepo.FindByToken(ctx, token)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return fmt.Errorf("failed to find session: %w", err)
		}

		if err := s.sessionRepo.DeleteByToken(ctx, token); err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}

		userID := session.UserID
		return s.auditRepo.Record(ctx, models.NewAuditLog(models.AuditUserLogout, &userID,
			map[string]any{"email": session.User.Email}, s.now()))
	})
}

// ResolveSession maps a token to its user. Expired sessions are deleted on sight.
func (s *AuthService) ResolveSession(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	session, err := s.sessionRepo.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	if session.Expired(s.now()) {
		if err := s.sessionRepo.DeleteByToken(ctx, token); err != nil {
			return nil, fmt.Errorf("failed to delete expired session: %w", err)
		}
		return nil, ErrUnauthenticated
	}

	if session.User.ID == 0 {
		return nil, ErrUnauthenticated
	}
	if !session.User.Active {
		return nil, ErrAccountDisabled
	}

	user := session.User
	return &user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// SessionTTL is the absolute lifetime of issued sessions.
func (s *AuthService) SessionTTL() time.Duration {
	return s.sessionTTL
}

func (s *AuthService) issueSession(ctx context.Context, userID uint64, now time.Time) (*models.Session, error) {
	token, err := utils.GenerateSessionToken()
	if err != nil {
		return nil, err
	}

	session := &models.Session{
		Token:     token,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
