package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"aula-rag/internal/api"
	"aula-rag/internal/api/handlers"
	"aula-rag/internal/repository"
	"aula-rag/internal/service"
	"aula-rag/internal/storage"
	"aula-rag/pkg/auth"
	"aula-rag/pkg/config"
	"aula-rag/pkg/logger"
	"aula-rag/pkg/postgres"
	"aula-rag/pkg/webhook"

	"go.uber.org/zap"
)

// @title Aula RAG API
// @version 1.0
// @description Educational RAG platform: study material indexing, topic chat and exam generation

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting Aula RAG service")

	// Initialize database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db, appLogger)
	subjectRepo := repository.NewSubjectRepository(db, appLogger)
	topicRepo := repository.NewTopicRepository(db, appLogger)
	enrollmentRepo := repository.NewEnrollmentRepository(db, appLogger)
	fileRepo := repository.NewFileRepository(db, appLogger)
	examRepo := repository.NewExamRepository(db, appLogger)

	var vectorStore service.VectorStore
	if cfg.RAG.VectorBackend == "memory" {
		appLogger.Warn("Using in-memory vector store, embeddings will not survive restarts")
		vectorStore = repository.NewMemoryVectorStore()
	} else {
		vectorStore = repository.NewVectorRepository(db, appLogger)
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration, cfg.JWT.RefreshExp)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtManager, appLogger)

	llmService, err := service.NewLLMService(&cfg.GigaChat, cfg.RAG.EmbeddingDimension, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize LLM service", zap.Error(err))
	}
	defer llmService.Close()

	blobStore := storage.NewLocalStore(cfg.Storage.UploadDir, appLogger)
	extractor := service.NewExtractorService(appLogger)
	ragService := service.NewRAGService(vectorStore, llmService, &cfg.RAG, appLogger)
	indexingService := service.NewIndexingService(fileRepo, blobStore, extractor, ragService, appLogger)
	fileService := service.NewFileService(fileRepo, blobStore, indexingService, appLogger)
	chatService := service.NewChatService(ragService, llmService, &cfg.RAG, appLogger)
	examService := service.NewExamService(examRepo, ragService, llmService, &cfg.RAG, appLogger)
	historyService := service.NewHistoryService(examRepo, subjectRepo, topicRepo, userRepo, appLogger)
	subjectService := service.NewSubjectService(subjectRepo, topicRepo, enrollmentRepo, fileService, appLogger)

	verifier, err := webhook.NewVerifier(cfg.Webhook.ClerkSecret)
	if err != nil {
		appLogger.Fatal("Failed to initialize webhook verifier", zap.Error(err))
	}

	// Initialize handlers
	h := api.Handlers{
		Auth:    handlers.NewAuthHandler(authService, appLogger),
		Subject: handlers.NewSubjectHandler(subjectService, appLogger),
		File:    handlers.NewFileHandler(fileService, subjectService, appLogger),
		Chat:    handlers.NewChatHandler(chatService, appLogger),
		Exam:    handlers.NewExamHandler(examService, historyService, subjectService, appLogger),
		Webhook: handlers.NewWebhookHandler(verifier, authService, appLogger),
	}

	// Setup router
	app := api.SetupRouter(h, jwtManager, cfg.Storage.UploadDir, appLogger)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
