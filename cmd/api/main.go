package main

import (
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"paintmarket/internal/database"
	"paintmarket/internal/mailer"
	"paintmarket/internal/middleware"
	"paintmarket/internal/modules/auth"
	"paintmarket/internal/modules/bid"
	"paintmarket/internal/modules/chat"
	"paintmarket/internal/modules/lead"
	"paintmarket/internal/modules/notification"
	"paintmarket/internal/modules/payment"
	"paintmarket/internal/modules/settings"
	"paintmarket/internal/pkg/jwt"
	"paintmarket/internal/repository"

	"paintmarket/internal/domain"
)

func main() {
	_ = godotenv.Load()

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	loggerf := func(format string, args ...interface{}) {
		logger.Log().Msgf(format, args...)
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		logger.Fatal().Msg("JWT_SECRET is empty")
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "paintmarket.db"
	}

	db, err := database.Connect(dsn)
	if err != nil {
		logger.Fatal().Err(err).Msg("database connection failed")
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("migration failed")
	}

	userRepo := repository.NewUserRepository(db)
	leadRepo := repository.NewLeadRepository(db)
	claimRepo := repository.NewLeadClaimRepository(db)
	bidRepo := repository.NewBidRepository(db)
	methodRepo := repository.NewPaymentMethodRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	ttl := 24 * time.Hour
	if hours, err := strconv.Atoi(os.Getenv("JWT_TTL_HOURS")); err == nil && hours > 0 {
		ttl = time.Duration(hours) * time.Hour
	}
	jwts := jwt.New(secret, ttl)

	settingsService := settings.NewService(settingRepo)
	settingsHandler := settings.NewHandler(settingsService)

	dispatcher := notification.NewDispatcher(notifRepo, userRepo, buildMailer(), os.Getenv("ADMIN_NOTIFICATION_EMAIL"), loggerf)
	notifHandler := notification.NewHandler(dispatcher)

	providerClient := payment.NewClient(os.Getenv("PAYMENT_API_BASE_URL"), os.Getenv("PAYMENT_SECRET_KEY"))
	paymentService := payment.NewService(providerClient, claimRepo, leadRepo, methodRepo, dispatcher, loggerf)
	paymentHandler := payment.NewHandler(paymentService, settingsService, loggerf)

	leadService := lead.NewService(leadRepo, claimRepo, userRepo, paymentService, dispatcher, loggerf)
	leadHandler := lead.NewHandler(leadService, settingsService, loggerf)

	bidService := bid.NewService(bidRepo, leadRepo, leadService, claimRepo, dispatcher, loggerf)
	bidHandler := bid.NewHandler(bidService, settingsService, loggerf)

	authService := auth.NewService(userRepo, jwts, loggerf)
	authHandler := auth.NewHandler(authService, loggerf)

	hub := chat.NewHub()
	chatService := chat.NewService(messageRepo, leadRepo, claimRepo, claimRepo, dispatcher, hub, loggerf)
	chatHandler := chat.NewHandler(chatService, hub, jwts, loggerf)

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS())

	customerOnly := middleware.RequireRole(domain.RoleCustomer)
	painterOnly := middleware.RequireRole(domain.RolePainter)

	v1 := r.Group("/api/v1")
	{
		authHandler.RegisterPublicRoutes(v1)
		paymentHandler.RegisterPublicRoutes(v1)

		protected := v1.Group("/")
		protected.Use(middleware.Auth(jwts))
		{
			authHandler.RegisterProtectedRoutes(protected)
			notifHandler.RegisterRoutes(protected)
			paymentHandler.RegisterProtectedRoutes(protected)
			leadHandler.RegisterRoutes(protected, customerOnly, painterOnly)
			bidHandler.RegisterRoutes(protected, customerOnly, painterOnly)
			chatHandler.RegisterRoutes(protected)

			admin := protected.Group("/admin")
			admin.Use(middleware.AdminOnly())
			{
				authHandler.RegisterAdminRoutes(admin)
				settingsHandler.RegisterAdminRoutes(admin)
			}
		}
	}
	chatHandler.RegisterWS(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	logger.Info().Str("port", port).Msg("starting api server")
	if err := r.Run(":" + port); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

func buildMailer() mailer.Mailer {
	if os.Getenv("MAILER_DRIVER") == "smtp" {
		return mailer.NewSMTPMailer(
			os.Getenv("SMTP_HOST"),
			os.Getenv("SMTP_PORT"),
			os.Getenv("SMTP_USER"),
			os.Getenv("SMTP_PASS"),
			os.Getenv("SMTP_FROM"),
		)
	}
	return mailer.NewDevConsoleMailer(os.Getenv("MAILER_LOG") != "off")
}
