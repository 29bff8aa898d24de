package main

import (
	"database/sql"
	"log"

	"marketBack/internal/config"
	"marketBack/internal/handlers"
	"marketBack/internal/notify"
	"marketBack/internal/repositories"
	"marketBack/internal/services"
	"marketBack/internal/storage"
	"marketBack/internal/tasks"
	"marketBack/utils"
)

type application struct {
	errorLog *log.Logger
	infoLog  *log.Logger

	tokens      *utils.Manager
	userService *services.UserService

	hub          *NotificationHub
	dispatcher   *tasks.Dispatcher
	offerService *services.OfferService

	userHandler         *handlers.UserHandler
	listingHandler      *handlers.ListingHandler
	offerHandler        *handlers.OfferHandler
	wishlistHandler     *handlers.WishlistHandler
	settingsHandler     *handlers.SettingsHandler
	notificationHandler *handlers.NotificationHandler
}

type appDeps struct {
	cfg      config.Config
	db       *sql.DB
	caps     repositories.Capabilities
	queue    tasks.Queue
	proofs   storage.ProofStore
	mailer   notify.Mailer
	pusher   notify.Pusher
	infoLog  *log.Logger
	errorLog *log.Logger
}

func initializeApp(d appDeps) (*application, error) {
	logger := &appLogger{info: d.infoLog, err: d.errorLog}

	// Repositories
	userRepo := &repositories.UserRepository{DB: d.db}
	listingRepo := &repositories.ListingRepository{DB: d.db, Caps: d.caps}
	offerRepo := &repositories.OfferRepository{DB: d.db}
	wishlistRepo := &repositories.WishlistRepository{DB: d.db}
	settingsRepo := &repositories.SystemSettingsRepository{DB: d.db}
	notificationRepo := &repositories.NotificationRepository{DB: d.db}
	activityRepo := &repositories.ActivityLogRepository{DB: d.db}
	deadLetterRepo := &repositories.DeadLetterRepository{DB: d.db}

	tokens, err := utils.NewManager(d.cfg.Auth.SigningKey, d.cfg.Auth.AccessTokenTTL)
	if err != nil {
		return nil, err
	}

	dispatcher := tasks.NewDispatcher(d.queue, deadLetterRepo, logger, tasks.Config{
		Workers:     d.cfg.Tasks.Workers,
		MaxAttempts: d.cfg.Tasks.MaxAttempts,
		BaseBackoff: d.cfg.Tasks.BaseBackoff,
	})
	hub := NewNotificationHub(d.infoLog)

	// Services
	userService := &services.UserService{
		UserRepo:        userRepo,
		TokenManager:    tokens,
		RefreshTokenTTL: d.cfg.Auth.RefreshTokenTTL,
	}
	settingsService := &services.SystemSettingsService{Repo: settingsRepo}
	listingService := &services.ListingService{
		Listings: listingRepo,
		Proofs:   d.proofs,
		Tasks:    dispatcher,
		Logger:   logger,
	}
	offerService := &services.OfferService{
		Listings: listingRepo,
		Offers:   offerRepo,
		Settings: settingsService,
		Tasks:    dispatcher,
		Logger:   logger,
	}
	wishlistService := &services.WishlistService{Listings: listingRepo, Wishlist: wishlistRepo}
	notificationService := &services.NotificationService{
		Repo:   notificationRepo,
		Users:  userRepo,
		Live:   hub,
		Pusher: d.pusher,
		Logger: logger,
	}

	taskHandlers := &services.TaskHandlers{
		Users:         userRepo,
		Offers:        offerRepo,
		Listings:      listingRepo,
		ActivityLog:   activityRepo,
		Notifications: notificationService,
		Mailer:        d.mailer,
		Proofs:        d.proofs,
		SiteURL:       d.cfg.Mail.SiteURL,
	}
	taskHandlers.Register(dispatcher)

	return &application{
		errorLog:     d.errorLog,
		infoLog:      d.infoLog,
		tokens:       tokens,
		userService:  userService,
		hub:          hub,
		dispatcher:   dispatcher,
		offerService: offerService,

		userHandler:         &handlers.UserHandler{Service: userService, ErrorLog: d.errorLog},
		listingHandler:      &handlers.ListingHandler{Service: listingService, Wishlist: wishlistService, ErrorLog: d.errorLog},
		offerHandler:        &handlers.OfferHandler{Service: offerService, ErrorLog: d.errorLog},
		wishlistHandler:     &handlers.WishlistHandler{Service: wishlistService, ErrorLog: d.errorLog},
		settingsHandler:     &handlers.SettingsHandler{Service: settingsService, ErrorLog: d.errorLog},
		notificationHandler: &handlers.NotificationHandler{Service: notificationService, ErrorLog: d.errorLog},
	}, nil
}

// appLogger adapts the info and error loggers to services.Logger.
type appLogger struct {
	info *log.Logger
	err  *log.Logger
}

func (l *appLogger) Infof(format string, args ...interface{}) {
	l.info.Printf(format, args...)
}

func (l *appLogger) Errorf(format string, args ...interface{}) {
	l.err.Printf(format, args...)
}
