package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/schemapilot/schemapilot/internal/ai"
	"github.com/schemapilot/schemapilot/internal/ambiguity"
	"github.com/schemapilot/schemapilot/internal/chunker"
	"github.com/schemapilot/schemapilot/internal/config"
	"github.com/schemapilot/schemapilot/internal/filestore"
	"github.com/schemapilot/schemapilot/internal/handler"
	"github.com/schemapilot/schemapilot/internal/job"
	"github.com/schemapilot/schemapilot/internal/middleware"
	"github.com/schemapilot/schemapilot/internal/repo"
	"github.com/schemapilot/schemapilot/internal/retriever"
	"github.com/schemapilot/schemapilot/internal/schedule"
	"github.com/schemapilot/schemapilot/internal/service"
	"github.com/schemapilot/schemapilot/internal/vecstore"
)

func main() {
	var configPath string
	var migrationsDir string

	rootCmd := &cobra.Command{
		Use:   "schemapilot",
		Short: "schemapilot backend server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run schemapilot server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			db, err := repo.Open(cfg.DBDsn)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := repo.ApplyMigrations(db, migrationsDir); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, db)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	runCmd.Flags().StringVar(&migrationsDir, "migrations", "./migrations", "path to migration files")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, db *sqlx.DB) error {
	ctx := context.Background()
	logutil.GetLogger(ctx).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("file_store", cfg.FileStore.Type),
		zap.String("completion_provider", cfg.AI.Completion.Provider),
		zap.String("embedding_provider", cfg.AI.Embedding.Provider),
	)

	index := vecstore.New(db, cfg.AI.Embedding.Dimension)
	if err := index.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("init vector store: %w", err)
	}

	embedProvider, err := ai.NewEmbedProvider(cfg.AI.Embedding.Provider, cfg.AI.Embedding.Data)
	if err != nil {
		return fmt.Errorf("init embedding provider: %w", err)
	}
	embedder := ai.NewEmbedder(embedProvider, cfg.AI.Embedding.Model)

	completionProvider, err := ai.NewCompletionProvider(cfg.AI.Completion.Provider, cfg.AI.Completion.Data)
	if err != nil {
		return fmt.Errorf("init completion provider: %w", err)
	}
	policy := ai.RetryPolicy{
		MaxRetries:     cfg.RAG.MaxRetries,
		InitialDelay:   time.Duration(cfg.RAG.InitialBackoffMs) * time.Millisecond,
		MaxDelay:       time.Duration(cfg.RAG.MaxBackoffMs) * time.Millisecond,
		AttemptTimeout: time.Duration(cfg.RAG.AttemptTimeoutSeconds) * time.Second,
	}
	completionClient := ai.NewClient(completionProvider, cfg.AI.Completion.Model, policy)

	store, err := filestore.New(cfg.FileStore.Type, cfg.FileStore.Data)
	if err != nil {
		return fmt.Errorf("init file store: %w", err)
	}

	fileRepo := repo.NewSchemaFileRepo(db)
	ck := chunker.New(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	indexingService := service.NewIndexingService(ck, embedder, index, fileRepo, store)
	contextRetriever := retriever.New(embedder, index, cfg.RAG.TopK)
	detector := ambiguity.NewDetector(completionClient)
	generationService := service.NewGenerationService(contextRetriever, completionClient, detector)
	authService := service.NewAuthService(
		cfg.AdminUser,
		cfg.AdminPassHash,
		[]byte(cfg.JWTSecret),
		time.Hour*time.Duration(cfg.JWTTTLHours),
	)

	deps := handler.RouterDeps{
		Auth:      handler.NewAuthHandler(authService),
		Generate:  handler.NewGenerateHandler(generationService),
		Files:     handler.NewFileHandler(indexingService),
		Health:    handler.NewHealthHandler(index),
		JWTSecret: []byte(cfg.JWTSecret),
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(cfg.CORSOrigins),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	logutil.GetLogger(ctx).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.New()
	if err := scheduler.AddJob(job.NewIndexRetryJob(indexingService), cfg.Jobs.IndexRetrySpec); err != nil {
		return fmt.Errorf("schedule index retry job: %w", err)
	}
	scheduler.Start(runCtx)
	defer scheduler.Stop()

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(ctx).Error("server error", zap.Error(err))
		}
	}()

	<-runCtx.Done()
	logutil.GetLogger(ctx).Info("server stopping...")
	return nil
}
