package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eproba/server/internal"
	"github.com/eproba/server/internal/auth"
	authPostgres "github.com/eproba/server/internal/auth/postgres"
	"github.com/eproba/server/internal/core/events"
	"github.com/eproba/server/internal/notification"
	"github.com/eproba/server/internal/team"
	teamPostgres "github.com/eproba/server/internal/team/postgres"
	"github.com/eproba/server/internal/transport/rest"
	"github.com/eproba/server/internal/transport/swagger"
	"github.com/eproba/server/internal/user"
	userPostgres "github.com/eproba/server/internal/user/postgres"
	"github.com/eproba/server/internal/worksheet"
	worksheetPostgres "github.com/eproba/server/internal/worksheet/postgres"
	"github.com/eproba/server/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	gormSqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config     *internal.Config
	DB         *sqlx.DB
	GormDB     *gorm.DB
	Router     *chi.Mux
	Logger     *slog.Logger
	PushClient *notification.PushClient

	AuthHandler      *auth.Handler
	UserHandler      *user.Handler
	TeamHandler      *team.Handler
	WorksheetHandler *worksheet.Handler
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(
		deps.Router,
		deps.DB.DB,
		deps.AuthHandler,
		deps.UserHandler,
		deps.TeamHandler,
		deps.WorksheetHandler,
		deps.Config.Server.AllowedOrigins,
		deps.Logger,
	)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := internal.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if deps.PushClient != nil {
			deps.PushClient.Shutdown()
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"), config.Observability.Logging.Level, config.Observability.Logging.Format)
	log := logger.L()

	if err := swagger.ValidateSpec("./api/openapi.yml"); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI document: %w", err)
	}

	db, gormDB, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	eventBus := events.NewEventBus(log)

	authRepo := authPostgres.NewRepository(gormDB)
	userRepo := userPostgres.NewUserRepository(gormDB)
	teamRepo := teamPostgres.NewTeamRepository(gormDB)
	worksheetRepo := worksheetPostgres.NewWorksheetRepository(gormDB)

	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)

	policy := worksheet.NewPolicy(config.Workflow.PatrolLeaderFunction, config.Workflow.LeaderFunction)

	authService := auth.NewService(authRepo, tokenGen, config.Security.BCryptCost, log)
	userService := user.NewService(userRepo, config.Workflow.PatrolLeaderFunction, config.Workflow.LeaderFunction, log)
	teamService := team.NewService(teamRepo, config.Workflow.LeaderFunction, log)
	worksheetService := worksheet.NewService(worksheetRepo, userRepo, eventBus, policy, log)

	var pushClient *notification.PushClient
	var pushSender notification.Sender
	if config.Notification.Push.Enabled {
		pushClient = notification.NewPushClient(notification.PushConfig{
			APIURL:       config.Notification.Push.APIURL,
			APIKey:       config.Notification.Push.APIKey,
			SendTimeout:  config.Notification.Push.SendTimeout,
			MaxWorkers:   config.Notification.Push.MaxWorkers,
			JobQueueSize: config.Notification.Push.JobQueueSize,
		}, log)
		pushSender = pushClient
	}

	var mailer notification.Mail
	if config.Notification.SMTP.Enabled {
		mailer = notification.NewMailer(notification.MailerConfig{
			Host:     config.Notification.SMTP.Host,
			Port:     config.Notification.SMTP.Port,
			Username: config.Notification.SMTP.Username,
			Password: config.Notification.SMTP.Password,
			From:     config.Notification.SMTP.From,
		}, log)
	}

	if pushSender != nil || mailer != nil {
		dispatcher := notification.NewDispatcher(userRepo, pushSender, mailer, config.Server.BaseURL, log)
		dispatcher.Register(eventBus)
	}

	authHandler := auth.NewHandler(authService)
	actor := func(r *http.Request) (*user.User, bool) {
		return auth.UserFromContext(r.Context())
	}

	return &Dependencies{
		Config:           config,
		DB:               db,
		GormDB:           gormDB,
		Router:           chi.NewRouter(),
		Logger:           log,
		PushClient:       pushClient,
		AuthHandler:      authHandler,
		UserHandler:      user.NewHandler(userService, actor),
		TeamHandler:      team.NewHandler(teamService, actor),
		WorksheetHandler: worksheet.NewHandler(worksheetService, actor),
	}, nil
}

// initDB opens the database once and hands the same connection to both the
// sqlx health probe and gorm.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, *gorm.DB, error) {
	if cfg.Driver == "sqlite" {
		gormDB, err := gorm.Open(gormSqlite.Open(cfg.GetDSN()), &gorm.Config{})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		sqlDB, err := gormDB.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to unwrap sqlite connection: %w", err)
		}
		return sqlx.NewDb(sqlDB, "sqlite3"), gormDB, nil
	}

	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.GetDSN())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: dbConn.DB}), &gorm.Config{})
	if err != nil {
		_ = dbConn.Close()
		return nil, nil, fmt.Errorf("failed to attach orm to connection: %w", err)
	}

	return dbConn, gormDB, nil
}
