package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	"marketBack/internal/config"
	"marketBack/internal/notify"
	"marketBack/internal/repositories"
	"marketBack/internal/repositories/migrations"
	"marketBack/internal/storage"
	"marketBack/internal/tasks"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to the YAML config file")
	flag.Parse()

	infoLog := log.New(os.Stdout, "INFO\t", log.Ldate|log.Ltime)
	errorLog := log.New(os.Stderr, "ERROR\t", log.Ldate|log.Ltime|log.Lshortfile)

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		errorLog.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDB(cfg.Database)
	if err != nil {
		errorLog.Fatal(err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := repositories.ApplyMigrations(ctx, db, migrations.FS); err != nil {
			errorLog.Fatal(err)
		}
	}
	caps, err := repositories.ProbeCapabilities(ctx, db)
	if err != nil {
		errorLog.Fatal(err)
	}
	if missing := caps.Missing(); len(missing) > 0 {
		infoLog.Printf("listing features disabled, missing tables: %v", missing)
	}

	proofs, err := storage.New(cfg.Storage)
	if err != nil {
		errorLog.Fatal(err)
	}

	queue, closeQueue, err := openQueue(ctx, cfg, infoLog)
	if err != nil {
		errorLog.Fatal(err)
	}
	defer closeQueue()

	mailer, err := newMailer(cfg.Mail, infoLog)
	if err != nil {
		errorLog.Fatal(err)
	}
	pusher := newPusher(ctx, cfg.Firebase, infoLog, errorLog)

	app, err := initializeApp(appDeps{
		cfg:      cfg,
		db:       db,
		caps:     caps,
		queue:    queue,
		proofs:   proofs,
		mailer:   mailer,
		pusher:   pusher,
		infoLog:  infoLog,
		errorLog: errorLog,
	})
	if err != nil {
		errorLog.Fatal(err)
	}

	go app.hub.Run(ctx)
	workersDone := make(chan struct{})
	go func() {
		app.dispatcher.Run(ctx)
		close(workersDone)
	}()
	startOfferExpiry(ctx, app.offerService, cfg.Offers, infoLog, errorLog)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowCredentials: true,
		AllowedHeaders:   []string{"Content-Type", "Authorization", "Refresh-Token"},
		ExposedHeaders:   []string{"Authorization"},
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		ErrorLog:     errorLog,
		Handler:      c.Handler(app.routes()),
		IdleTimeout:  time.Minute,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		infoLog.Printf("Starting server on %s", cfg.Server.Address)
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			errorLog.Print(err)
		}
		stop()
	case <-ctx.Done():
	}

	infoLog.Print("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		errorLog.Printf("server shutdown: %v", err)
	}
	select {
	case <-workersDone:
	case <-shutdownCtx.Done():
		errorLog.Print("task workers did not stop in time")
	}
}

func openDB(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open(cfg.Driver, cfg.URL)
	if err != nil {
		return nil, err
	}
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// openQueue uses Redis when an address is configured and an in-process
// channel otherwise.
func openQueue(ctx context.Context, cfg config.Config, infoLog *log.Logger) (tasks.Queue, func(), error) {
	if cfg.Redis.Addr == "" {
		infoLog.Print("task queue: in-memory")
		return tasks.NewMemoryQueue(cfg.Tasks.QueueSize), func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	infoLog.Printf("task queue: redis %s key=%s", cfg.Redis.Addr, cfg.Redis.QueueKey)
	return tasks.NewRedisQueue(rdb, cfg.Redis.QueueKey), func() { rdb.Close() }, nil
}

func newMailer(cfg config.MailConfig, infoLog *log.Logger) (notify.Mailer, error) {
	if cfg.Driver == "ses" {
		mailer, err := notify.NewSESMailer(cfg.Region, cfg.From)
		if err != nil {
			return nil, err
		}
		return mailer, nil
	}
	return &notify.LogMailer{Log: infoLog}, nil
}

// newPusher returns an FCM pusher when credentials are configured. Push is
// optional, so a failed setup only disables it.
func newPusher(ctx context.Context, cfg config.FirebaseConfig, infoLog, errorLog *log.Logger) notify.Pusher {
	if cfg.CredentialsFile == "" {
		infoLog.Print("push notifications disabled")
		return notify.NopPusher{}
	}
	pusher, err := notify.NewFCMPusher(ctx, cfg.CredentialsFile)
	if err != nil {
		errorLog.Printf("push notifications disabled: %v", err)
		return notify.NopPusher{}
	}
	return pusher
}
