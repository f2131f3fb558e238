package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trello-project/microservices/task-manager/config"
	"trello-project/microservices/task-manager/handlers"
	"trello-project/microservices/task-manager/logging"
	"trello-project/microservices/task-manager/repositories"
	"trello-project/microservices/task-manager/services"
	"trello-project/microservices/task-manager/utils"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Logger.Fatalf("Event ID: CONFIG_ERROR, Description: %v", err)
	}

	logging.InitLogger(logging.Options{Level: cfg.Log.Level, File: cfg.Log.File, Stdout: cfg.Log.Stdout})
	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting Task Manager Service...")
	if !cfg.EnvFileFound {
		logging.Logger.Warn("Event ID: ENV_FILE_MISSING, Description: No .env file found, using process environment")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		logging.Logger.Fatalf("Event ID: DB_CONNECTION_FAILED, Description: Database connection for MongoDB failed: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		logging.Logger.Fatalf("Event ID: DB_PING_FAILED, Description: MongoDB connection ping error: %v", err)
	}
	logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Successfully connected to MongoDB database %s", cfg.Mongo.DBName)

	db := client.Database(cfg.Mongo.DBName)
	if err := repositories.EnsureIndexes(ctx, db); err != nil {
		logging.Logger.Fatalf("Event ID: DB_INDEX_FAILED, Description: %v", err)
	}

	taskRepo := repositories.NewTaskRepo(db)
	teamRepo := repositories.NewTeamRepo(db)
	userRepo := repositories.NewUserRepo(db)

	// In-app notifications are optional (Cassandra)
	var notificationStore services.NotificationStore
	var notificationRepo *repositories.NotificationRepo
	if cfg.CassandraDB != "" {
		notificationRepo, err = repositories.NewNotificationRepo(cfg.CassandraDB)
		if err != nil {
			logging.Logger.Errorf("Event ID: CASSANDRA_UNAVAILABLE, Description: Notifications disabled: %v", err)
		} else if err := notificationRepo.CreateTable(); err != nil {
			logging.Logger.Errorf("Event ID: CASSANDRA_TABLE_FAILED, Description: Notifications disabled: %v", err)
			notificationRepo.CloseSession()
			notificationRepo = nil
		} else {
			notificationStore = notificationRepo
		}
	}
	notificationService := services.NewNotificationService(notificationStore)
	var notifier services.Notifier
	if notificationService.Enabled() {
		notifier = notificationService
	}

	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	mailer := utils.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From, cfg.SMTP.Password)

	activityService := services.NewActivityService(repositories.NewActivityRepo(db))
	taskService := services.NewTaskService(taskRepo, teamRepo, userRepo, activityService, notifier)
	teamService := services.NewTeamService(teamRepo, userRepo)
	chatService := services.NewChatService(repositories.NewMessageRepo(db), teamRepo)
	userService := services.NewUserService(userRepo, tokens)
	performanceService := services.NewPerformanceService(taskRepo, teamRepo, userRepo)
	scanner := services.NewReminderScanner(taskRepo, teamRepo, userRepo, repositories.NewReminderRepo(db),
		mailer, notifier, cfg.Reminders.Window, cfg.Reminders.Interval)

	if err := userService.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		logging.Logger.Errorf("Event ID: ADMIN_SEED_FAILED, Description: %v", err)
	}

	router := newRouter(routeHandlers{
		users:         handlers.NewUserHandler(userService),
		tasks:         handlers.NewTaskHandler(taskService, cfg.MaxUploadMB<<20),
		teams:         handlers.NewTeamHandler(teamService, chatService),
		performance:   handlers.NewPerformanceHandler(performanceService),
		activities:    handlers.NewActivityHandler(activityService),
		reminders:     handlers.NewReminderHandler(scanner),
		notifications: handlers.NewNotificationHandler(notificationService),
	}, tokens, cfg.CORSOrigin)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Reminders.Enabled {
		scanner.Start(runCtx)
	} else {
		logging.Logger.Info("Event ID: REMINDERS_DISABLED, Description: Reminder scanner disabled by configuration")
	}

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.Logger.Infof("Event ID: SERVER_LISTENING, Description: Task Manager Service listening on port %s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Logger.Fatalf("Event ID: SERVER_ERROR, Description: HTTP server failed: %v", err)
		}
	}()

	<-runCtx.Done()
	logging.Logger.Info("Event ID: SERVICE_SHUTDOWN, Description: Shutting down Task Manager Service...")

	scanner.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Logger.Errorf("Event ID: SERVER_SHUTDOWN_FAILED, Description: %v", err)
	}
	if err := client.Disconnect(shutdownCtx); err != nil {
		logging.Logger.Errorf("Event ID: DB_DISCONNECT_FAILED, Description: %v", err)
	}
	if notificationRepo != nil {
		notificationRepo.CloseSession()
	}
	logging.Logger.Info("Event ID: SERVICE_STOPPED, Description: Task Manager Service stopped")
}
