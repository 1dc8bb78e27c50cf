// Package app assembles repositories, services and the HTTP router.
package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"

	"github.com/yukikurage/site-services-api/internal/config"
	"github.com/yukikurage/site-services-api/internal/constants"
	"github.com/yukikurage/site-services-api/internal/database"
	"github.com/yukikurage/site-services-api/internal/handlers"
	"github.com/yukikurage/site-services-api/internal/metrics"
	"github.com/yukikurage/site-services-api/internal/middleware"
	"github.com/yukikurage/site-services-api/internal/notify"
	"github.com/yukikurage/site-services-api/internal/permission"
	"github.com/yukikurage/site-services-api/internal/repository"
	"github.com/yukikurage/site-services-api/internal/services"
	"github.com/yukikurage/site-services-api/internal/storage"
)

// Options configures New. Zero values fall back to config-driven defaults.
type Options struct {
	Config *config.Config
	DB     *gorm.DB
	Logger *slog.Logger

	// Registry receives the service metrics. A fresh registry is used when nil.
	Registry *prometheus.Registry
	// SessionStore overrides the store selected by session.store.
	SessionStore sessions.Store
}

// App holds the wired service graph.
type App struct {
	Engine *gin.Engine
	Hub    *notify.Hub

	Auth    *services.AuthService
	Tickets *services.TicketService

	limiter *middleware.RateLimiter
}

// New builds the service graph and the gin engine on top of db.
func New(opts Options) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if opts.DB == nil {
		return nil, fmt.Errorf("database is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	registry := opts.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	collector := metrics.NewCollector(registry)

	enforcer, err := permission.NewEnforcer(permission.DefaultPolicies())
	if err != nil {
		return nil, fmt.Errorf("failed to build permission table: %w", err)
	}

	blobs, err := storage.NewBlobStore(cfg.Upload.Dir, cfg.Upload.MaxBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to open upload directory: %w", err)
	}

	store := opts.SessionStore
	if store == nil {
		store, err = NewSessionStore(cfg.Session)
		if err != nil {
			return nil, err
		}
	}
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.Session.TTL().Seconds()),
		HttpOnly: true,
		Secure:   cfg.Server.Mode == gin.ReleaseMode,
		SameSite: http.SameSiteLaxMode,
	})

	db := opts.DB
	txm := database.NewTransactionManager(db)
	hub := notify.NewHub(notify.DefaultBufferSize, logger, collector)

	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	ticketRepo := repository.NewTicketRepository(db)
	eventRepo := repository.NewEventRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)
	announcementRepo := repository.NewAnnouncementRepository(db)
	ratingRepo := repository.NewRatingRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	reportRepo := repository.NewReportRepository(db)

	authService := services.NewAuthService(txm, userRepo, sessionRepo, auditRepo, cfg.Auth.BcryptCost, cfg.Session.TTL())
	userService := services.NewUserService(txm, userRepo, auditRepo, hub)
	ticketService := services.NewTicketService(txm, ticketRepo, eventRepo, userRepo, auditRepo, hub, collector, cfg.Ticket.NumberPrefix)
	attachmentService := services.NewAttachmentService(txm, attachmentRepo, auditRepo, blobs, hub)
	announcementService := services.NewAnnouncementService(txm, announcementRepo, auditRepo, blobs,
		services.NewMarkdownRenderer(), hub, cfg.Announcement.DefaultExpiryHours)
	ratingService := services.NewRatingService(txm, ratingRepo, ticketRepo, auditRepo)
	reportService := services.NewReportService(reportRepo)
	auditService := services.NewAuditService(auditRepo)

	limiter := middleware.NewRateLimiter(middleware.PerMinute(cfg.Auth.LoginRatePerMinute, cfg.Auth.LoginBurst))

	a := &App{
		Hub:     hub,
		Auth:    authService,
		Tickets: ticketService,
		limiter: limiter,
	}

	r := gin.New()
	r.Use(
		middleware.Recovery(logger),
		middleware.RequestLogger(logger, collector),
		sessions.Sessions(cfg.Session.CookieName, store),
	)

	health := handlers.NewHealthHandler(db)
	r.GET("/health", health.Health)
	r.GET("/metrics", gin.WrapH(metrics.Handler(registry)))
	r.Static(constants.UploadsURLPath, blobs.Dir())

	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	ticketHandler := handlers.NewTicketHandler(ticketService)
	attachmentHandler := handlers.NewAttachmentHandler(attachmentService, cfg.Upload.MaxBytes)
	announcementHandler := handlers.NewAnnouncementHandler(announcementService, cfg.Upload.MaxBytes)
	ratingHandler := handlers.NewRatingHandler(ratingService)
	reportHandler := handlers.NewReportHandler(reportService, auditService)
	streamHandler := handlers.NewStreamHandler(hub, logger, handlers.StreamKeepaliveInterval)

	requireAuth := middleware.RequireAuth(authService)
	can := func(action string) gin.HandlerFunc {
		return middleware.RequirePermission(enforcer, action)
	}
	ticketAccess := middleware.RequireTicketAccess(ticketService)

	api := r.Group("/api")

	// The stream outlives the request timeout.
	api.GET("/stream", requireAuth, can(permission.ActionStreamListen), streamHandler.Stream)

	timed := api.Group("", middleware.RequestTimeout(cfg.Server.RequestTimeout))
	{
		timed.GET("/health", health.Health)
		timed.GET("/public/announcements", announcementHandler.ListPublicAnnouncements)

		auth := timed.Group("/auth")
		{
			auth.POST("/register", limiter.Middleware(), authHandler.Register)
			auth.POST("/login", limiter.Middleware(), authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
		}

		protected := timed.Group("", requireAuth)
		{
			protected.GET("/me", authHandler.Me)

			users := protected.Group("/users", can(permission.ActionUserManage))
			{
				users.GET("", userHandler.ListUsers)
				users.PATCH("/:id", userHandler.UpdateUser)
			}

			tickets := protected.Group("/tickets")
			{
				tickets.GET("", can(permission.ActionTicketRead), ticketHandler.ListTickets)
				tickets.POST("", can(permission.ActionTicketCreate), ticketHandler.CreateTicket)
				tickets.GET("/:id", can(permission.ActionTicketRead), ticketAccess, ticketHandler.GetTicket)
				tickets.PATCH("/:id", can(permission.ActionTicketUpdate), ticketAccess, ticketHandler.UpdateTicket)
				tickets.DELETE("/:id", can(permission.ActionTicketDelete), ticketAccess, ticketHandler.DeleteTicket)
				tickets.GET("/:id/events", can(permission.ActionTicketRead), ticketAccess, ticketHandler.ListEvents)
				tickets.GET("/:id/attachments", can(permission.ActionTicketRead), ticketAccess, attachmentHandler.ListAttachments)
				tickets.POST("/:id/attachments", can(permission.ActionTicketAttach), ticketAccess, attachmentHandler.UploadAttachment)
			}
			protected.GET("/events", can(permission.ActionTicketRead), ticketHandler.ListEventsByQuery)
			protected.GET("/search/tickets", can(permission.ActionTicketRead), ticketHandler.SearchTickets)

			announcements := protected.Group("/announcements")
			{
				announcements.GET("", can(permission.ActionAnnouncementRead), announcementHandler.ListAnnouncements)
				announcements.POST("", can(permission.ActionAnnouncementManage), announcementHandler.CreateAnnouncement)
				announcements.DELETE("/:id", can(permission.ActionAnnouncementManage), announcementHandler.DeleteAnnouncement)
			}

			protected.GET("/ratings", can(permission.ActionRatingRead), ratingHandler.ListRatings)
			protected.POST("/ratings", can(permission.ActionRatingWrite), ratingHandler.SaveRating)

			reports := protected.Group("/reports", can(permission.ActionReportRead))
			{
				reports.GET("/summary", reportHandler.Summary)
				reports.GET("/top-staff", reportHandler.TopStaff)
			}
			protected.GET("/audit", can(permission.ActionAuditRead), reportHandler.Audit)
		}
	}

	a.Engine = r
	return a, nil
}

// Close stops background work and disconnects stream listeners.
func (a *App) Close() {
	a.limiter.Stop()
	a.Hub.Shutdown()
}

// NewSessionStore returns the cookie store, or the Redis store when session.store is "redis".
func NewSessionStore(cfg config.SessionConfig) (sessions.Store, error) {
	switch cfg.Store {
	case "redis":
		store, err := redisStore.NewStore(
			10,
			"tcp",
			cfg.RedisHost+":"+cfg.RedisPort,
			"",
			"",
			[]byte(cfg.Secret),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis store: %w", err)
		}
		return store, nil
	case "cookie", "":
		return cookie.NewStore([]byte(cfg.Secret)), nil
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.Store)
	}
}
