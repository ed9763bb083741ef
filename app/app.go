package app

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"

	"rental-quotes/app/controller"
	"rental-quotes/app/router"
	"rental-quotes/auth"
	"rental-quotes/config"
	"rental-quotes/db"
	"rental-quotes/pricing"
	"rental-quotes/repository"
	"rental-quotes/service"
)

// App is the wired HTTP application
type App struct {
	Handler http.Handler
	DB      *sql.DB
}

// Close releases the database connection
func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

// Initialize initializes the application
func Initialize(ctx context.Context, cfg *config.Config) (*App, error) {
	dsn, err := cfg.Database.DSN()
	if err != nil {
		return nil, err
	}

	// Initialize database connection
	conn, err := db.Open(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if cfg.Server.RunMigrations {
		if err := db.Migrate(conn); err != nil {
			conn.Close()
			return nil, err
		}
	}

	engine, err := pricing.NewEngineFromFile(cfg.Pricing.ConfigPath)
	if err != nil {
		conn.Close()
		return nil, err
	}

	// Initialize repositories
	equipmentRepo := repository.NewEquipmentRepository(conn)
	auditRepo := repository.NewAuditLogRepository(conn)
	quoteRepo := repository.NewQuoteRequestRepository(conn, auditRepo)
	cartStorage := repository.NewCartStorage(conn)

	// External services are optional outside production
	documents, err := service.NewQuoteDocumentService(engine, service.NewChromePDFRenderer(cfg.Google.ChromePath))
	if err != nil {
		conn.Close()
		return nil, err
	}
	mailer, store := externalServices(ctx, cfg)

	adminService := service.NewQuoteAdminService(
		quoteRepo, auditRepo, equipmentRepo, engine, documents, mailer,
		service.MailSettings{
			InternalRecipient:     cfg.Mail.InternalRecipient,
			AuthorizationFormPath: cfg.Mail.AuthorizationFormPath,
		},
	)
	imageService := service.NewEquipmentImageService(store, equipmentRepo)

	// Create controllers
	controllers := &router.Controllers{
		Equipment:  controller.NewEquipmentController(equipmentRepo, imageService),
		Cart:       controller.NewCartController(cartStorage, equipmentRepo, engine),
		Quote:      controller.NewQuoteController(cartStorage, quoteRepo, engine),
		AdminQuote: controller.NewAdminQuoteController(adminService),
	}

	handler := router.SetupRoutes(controllers, auth.NewVerifier(cfg.Server.JWTSecret))
	return &App{Handler: handler, DB: conn}, nil
}

// externalServices connects the Gmail mailer and Drive object store when credentials are configured.
// A nil result makes the dependent endpoints answer 502.
func externalServices(ctx context.Context, cfg *config.Config) (service.Mailer, service.ObjectStore) {
	if cfg.Google.CredentialsFile == "" {
		log.Printf("⚠️ GOOGLE_APPLICATION_CREDENTIALS is not set: quote email and image upload are disabled")
		return nil, nil
	}

	var mailer service.Mailer
	if cfg.Mail.Sender == "" {
		log.Printf("⚠️ MAIL_SENDER is not set: quote email is disabled")
	} else if gmail, err := service.NewGmailMailer(ctx, cfg.Google.CredentialsFile, cfg.Mail.Sender); err != nil {
		log.Printf("❌ Gmail mailer unavailable: %v", err)
	} else {
		mailer = gmail
	}

	var store service.ObjectStore
	if cfg.Google.DriveFolderID == "" {
		log.Printf("⚠️ DRIVE_FOLDER_ID is not set: image upload is disabled")
	} else if drive, err := service.NewDriveObjectStore(ctx, cfg.Google.CredentialsFile, cfg.Google.DriveFolderID); err != nil {
		log.Printf("❌ Drive object store unavailable: %v", err)
	} else {
		store = drive
	}
	return mailer, store
}
