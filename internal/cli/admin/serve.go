package admin

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clausewise/counselai/internal/api/handlers"
	"github.com/clausewise/counselai/internal/config"
	"github.com/clausewise/counselai/internal/database"
	"github.com/clausewise/counselai/internal/jobs"
	"github.com/clausewise/counselai/internal/llm"
	"github.com/clausewise/counselai/internal/repository"
	"github.com/clausewise/counselai/internal/runner"
	"github.com/clausewise/counselai/internal/server"
	"github.com/clausewise/counselai/internal/service"
	"github.com/clausewise/counselai/internal/storage"
	"github.com/clausewise/counselai/internal/telemetry"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the counsel API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize Sentry with tracing if SENTRY_DSN is set
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()
	log.Println("connected to database")

	// Run migrations unless --no-migrate flag is set
	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	agentRepo := repository.NewAgentRepository(pool)
	knowledgeRepo := repository.NewKnowledgeRepository(pool)
	documentRepo := repository.NewDocumentRepository(pool)
	conversationRepo := repository.NewConversationRepository(pool)
	alertRepo := repository.NewAlertRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	var storageClient service.StorageClientInterface
	if cfg.HasS3() {
		s3Config := storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		}
		s3Client, err := storage.NewS3Client(ctx, s3Config)
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Printf("S3 bucket '%s' ready", cfg.S3Bucket)
		storageClient = s3Client
	}

	runnerClient := runner.NewClient(cfg.RunnerCommand, cfg.RunnerTimeout())

	provider, err := llm.NewProvider(cfg)
	if err != nil {
		return fmt.Errorf("failed to create model provider: %w", err)
	}

	agentSvc := service.NewAgentService(agentRepo)
	ingestSvc := service.NewIngestService(knowledgeRepo, documentRepo, storageClient, cfg.MaxDocumentChars)
	responderSvc := service.NewResponderService(agentRepo, knowledgeRepo, documentRepo, conversationRepo, runnerClient, provider, txRunner)
	sweepSvc := service.NewSweepService(agentRepo, knowledgeRepo, documentRepo, runnerClient, provider, txRunner)
	alertSvc := service.NewAlertService(alertRepo)

	routerCfg := server.RouterConfig{
		AgentHandler:  handlers.NewAgentHandler(agentSvc),
		IngestHandler: handlers.NewIngestHandler(ingestSvc),
		AskHandler:    handlers.NewAskHandler(responderSvc),
		AlertHandler:  handlers.NewAlertHandler(alertSvc, sweepSvc),
	}

	router := server.NewRouter(routerCfg)

	var sweepWorker *jobs.Worker
	if cfg.SweepsEnabled() {
		sweepProcessor := jobs.NewSweepWorker(agentRepo, sweepSvc)
		sweepWorker = jobs.NewWorker(sweepProcessor, cfg.SweepInterval())
		go sweepWorker.Start(ctx)
		log.Printf("sweep worker started (interval: %s)", cfg.SweepInterval())
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	if sweepWorker != nil {
		sweepWorker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

func runMigrations(databaseURL string) error {
	// Create a sql.DB connection for golang-migrate
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	upErr := m.Up()
	if upErr != nil && upErr != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", upErr)
	}

	version, dirty, versionErr := m.Version()
	if versionErr != nil && versionErr != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", versionErr)
	}

	msg, err := migrationOutcome(upErr, versionErr, version, dirty)
	if err != nil {
		return err
	}
	log.Println(msg)

	return nil
}

// migrationOutcome turns the results of m.Up and m.Version into a log line.
// upErr is nil or ErrNoChange, versionErr is nil or ErrNilVersion; other
// errors are handled by the caller before reaching here.
func migrationOutcome(upErr, versionErr error, version uint, dirty bool) (string, error) {
	if versionErr == migrate.ErrNilVersion {
		return "migrations: database is up to date (no migrations applied)", nil
	}
	if dirty {
		return "", fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	}
	if upErr == migrate.ErrNoChange {
		return fmt.Sprintf("migrations: database is up to date (version %d)", version), nil
	}
	return fmt.Sprintf("migrations: applied successfully (version %d)", version), nil
}
