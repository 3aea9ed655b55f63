package app

import (
	"database/sql"
	"fmt"

	"clipstream_backend/database"
	"clipstream_backend/internal/auth"
	"clipstream_backend/internal/config"
	"clipstream_backend/internal/email"
	"clipstream_backend/internal/handlers"
	"clipstream_backend/internal/logger"
	"clipstream_backend/internal/middleware"
	"clipstream_backend/internal/repositories"
	"clipstream_backend/internal/routes"
	"clipstream_backend/internal/services"
	"clipstream_backend/internal/storage"
	"clipstream_backend/internal/validator"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig

	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	logger.Info("Connecting to database...", "driver", cfg.Database.Driver)
	gormDB, err := openDatabase(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to GORM", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := database.Migrate(gormDB); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	ginRouter := SetupRouter(cfg, gormDB, sqlDB)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info(fmt.Sprintf("Server starting on %s", address))
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

// openDatabase открывает GORM-подключение по настроенному драйверу.
// TranslateError нужен, чтобы нарушение уникального индекса приходило
// как gorm.ErrDuplicatedKey независимо от драйвера.
func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{TranslateError: true}

	switch cfg.Database.Driver {
	case "mysql":
		return gorm.Open(mysql.Open(cfg.Database.DSN), gormCfg)
	case "postgres", "":
		return gorm.Open(postgres.Open(cfg.Database.DSN), gormCfg)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}
}

func SetupRouter(cfg *config.Config, gormDB *gorm.DB, sqlDB *sql.DB) *gin.Engine {
	storageInstance, err := storage.NewStorage(storage.Config{
		Type:       cfg.Storage.Type,
		BasePath:   cfg.Storage.BasePath,
		BaseURL:    cfg.Storage.BaseURL,
		Bucket:     cfg.Storage.Bucket,
		Region:     cfg.Storage.Region,
		AccessKey:  cfg.Storage.AccessKey,
		SecretKey:  cfg.Storage.SecretKey,
		Endpoint:   cfg.Storage.Endpoint,
		UseSSL:     cfg.Storage.UseSSL,
		PublicRead: cfg.Storage.PublicRead,
	})
	if err != nil {
		logger.Fatal("Failed to initialize storage", "error", err)
	}
	logger.Info("Storage initialized", "type", cfg.Storage.Type)

	tokens := auth.NewTokenManager(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.AccessTokenTTL(),
		cfg.RefreshTokenTTL(),
	)

	userRepo := repositories.NewUserRepository()

	serviceContainer := initializeServices(cfg, tokens, userRepo, storageInstance)
	appHandlers := initializeHandlers(cfg, serviceContainer, storageInstance)

	ginRouter := initializeGinRouter(cfg, gormDB)

	guard := middleware.AccessGuard(tokens, userRepo)
	optionalGuard := middleware.OptionalAccessGuard(tokens, userRepo)
	routes.RegisterRoutes(ginRouter, appHandlers, guard, optionalGuard)

	return ginRouter
}

func initializeServices(
	cfg *config.Config,
	tokens *auth.TokenManager,
	userRepo repositories.UserRepository,
	storageInstance storage.Storage,
) *services.ServiceContainer {
	var emailService email.Provider
	if cfg.Email.SMTPHost != "" {
		emailService = email.NewSMTPProvider(&email.SMTPConfig{
			Host:      cfg.Email.SMTPHost,
			Port:      cfg.Email.SMTPPort,
			Username:  cfg.Email.SMTPUsername,
			Password:  cfg.Email.SMTPPassword,
			FromEmail: cfg.Email.FromEmail,
			FromName:  cfg.Email.FromName,
		})
	} else {
		logger.Warn("SMTP is not configured, outgoing email is disabled")
		emailService = &MockEmailProvider{}
	}

	channelRepo := repositories.NewChannelRepository()

	uploadService := services.NewUploadService(storageInstance, services.UploadConfig{
		MaxSize:      cfg.Upload.MaxSize,
		AllowedTypes: cfg.Upload.AllowedTypes,
	})
	authService := services.NewAuthService(userRepo, tokens, emailService, cfg.Auth.BcryptCost)
	userService := services.NewUserService(userRepo, channelRepo, uploadService)

	return &services.ServiceContainer{
		AuthService:   authService,
		UserService:   userService,
		UploadService: uploadService,
		EmailService:  emailService,
	}
}

func initializeHandlers(
	cfg *config.Config,
	container *services.ServiceContainer,
	storageInstance storage.Storage,
) *handlers.AppHandlers {
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)

	return &handlers.AppHandlers{
		Auth: handlers.NewAuthHandler(baseHandler, container.AuthService, container.UploadService, cfg),
		User: handlers.NewUserHandler(baseHandler, container.UserService),
		File: handlers.NewFileHandler(baseHandler, storageInstance),
	}
}

func initializeGinRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.Server.CORSOrigin))
	router.Use(middleware.DBMiddleware(db))
	return router
}
