// @title Self Analysis API
// @version 1.0
// @description Adaptive self-assessment questionnaire with LLM-backed answer validation and trait scoring.
// @termsOfService http://swagger.io/terms/
// @contact.name API Support
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8090
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to authorize.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"self-analysis/internal/adapter"
	"self-analysis/internal/adapter/assessment"
	"self-analysis/internal/adapter/embedding"
	"self-analysis/internal/cache"
	"self-analysis/internal/config"
	"self-analysis/internal/database"
	"self-analysis/internal/domain"
	"self-analysis/internal/handler"
	"self-analysis/internal/logger"
	"self-analysis/internal/middleware"
	"self-analysis/internal/repository"
	"self-analysis/internal/service"

	_ "self-analysis/cmd/api/docs"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

// requestLogger is a middleware that logs HTTP requests
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()

		// Process request
		err := c.Next()

		// Log request details
		duration := time.Since(start)
		status := c.Response().StatusCode()

		logger.Get().Info("HTTP Request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.String("ip", c.IP()),
			zap.String("user_agent", c.Get("User-Agent")),
		)

		return err
	}
}

// newCapabilityClients builds the LLM clients for the two assessment
// capabilities. OpenAI runs separate models for validation and analysis;
// Ollama serves both from one local model.
func newCapabilityClients(cfg *config.Config) (validationLLM, analysisLLM llms.Model, err error) {
	switch cfg.LLM.Provider {
	case "openai":
		validationLLM, err = openai.New(
			openai.WithToken(cfg.LLM.OpenAIAPIKey),
			openai.WithModel(cfg.LLM.ValidationModel),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create validation LLM client: %w", err)
		}
		analysisLLM, err = openai.New(
			openai.WithToken(cfg.LLM.OpenAIAPIKey),
			openai.WithModel(cfg.LLM.AnalysisModel),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create analysis LLM client: %w", err)
		}
		return validationLLM, analysisLLM, nil
	case "ollama":
		// Local models can be slow to load; the per-call deadlines in the
		// adapters stay authoritative.
		ollamaHTTPClient := &http.Client{Timeout: cfg.LLM.AnalysisTimeout + 15*time.Second}
		client, err := ollama.New(
			ollama.WithServerURL(cfg.LLM.OllamaServerURL),
			ollama.WithModel(cfg.LLM.OllamaModel),
			ollama.WithHTTPClient(ollamaHTTPClient),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create ollama LLM client: %w", err)
		}
		return client, client, nil
	default:
		return nil, nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLM.Provider)
	}
}

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	// Connect to database
	db, err := database.NewSQLXOracleDB(cfg.GetDSN())
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Initialize Redis client and cache adapter
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	appLogger.Info("Successfully connected to Redis")
	cacheAdapter := adapter.NewRedisCacheAdapter(redisClient)

	// Initialize Embedding Service
	var embeddingService domain.EmbeddingService
	switch cfg.Embedding.Source {
	case "ollama":
		appLogger.Info("Initializing Ollama Embedding Service",
			zap.String("server_url", cfg.Embedding.Ollama.ServerURL),
			zap.String("model", cfg.Embedding.Ollama.Model))
		embeddingService, err = embedding.NewOllamaEmbeddingService(cfg.Embedding.Ollama.ServerURL, cfg.Embedding.Ollama.Model)
		if err != nil {
			appLogger.Fatal("Failed to create Ollama Embedding Service", zap.Error(err))
		}
	case "openai":
		appLogger.Info("Initializing OpenAI Embedding Service", zap.String("model", cfg.Embedding.OpenAI.Model))
		embeddingService, err = embedding.NewOpenAIEmbeddingService(cfg.Embedding.OpenAI.APIKey, cfg.Embedding.OpenAI.Model, cacheAdapter, cfg)
		if err != nil {
			appLogger.Fatal("Failed to create OpenAI Embedding Service", zap.Error(err))
		}
	default:
		appLogger.Fatal(fmt.Sprintf("Unsupported embedding source: %s. Please check EMBEDDING_SOURCE in config.", cfg.Embedding.Source))
	}

	// Initialize the assessment capability clients and adapters
	validationLLM, analysisLLM, err := newCapabilityClients(cfg)
	if err != nil {
		appLogger.Fatal("Failed to create LLM clients", zap.Error(err))
	}
	completenessValidator := assessment.NewLLMCompletenessValidator(validationLLM, cfg.LLM.ValidationTimeout)
	traitScorer := assessment.NewLLMTraitScorer(analysisLLM, cfg.LLM.AnalysisTimeout)
	appLogger.Info("Assessment capabilities initialized",
		zap.String("provider", cfg.LLM.Provider),
		zap.Bool("fail_open", cfg.LLM.FailOpen))

	// Initialize repositories
	questionRepository := repository.NewSQLXQuestionRepository(db)
	answerRepository := repository.NewSQLXAnswerRepository(db)
	traitRepository := repository.NewSQLXTraitRepository(db)
	analysisRepository := repository.NewSQLXSelfAnalysisRepository(db)
	userRepository := repository.NewSQLXUserRepository(db)
	txManager := repository.NewTransactionManagerAdapter(db)

	// Initialize services
	assessmentCacheService := service.NewAssessmentCacheService(cacheAdapter, cfg)
	aggregator := service.NewAggregator(answerRepository, analysisRepository)
	questionService := service.NewQuestionService(questionRepository, answerRepository, cacheAdapter, cfg)
	traitService := service.NewTraitService(traitRepository)
	answerService := service.NewAnswerService(
		questionRepository,
		answerRepository,
		txManager,
		completenessValidator,
		traitScorer,
		traitService,
		questionService,
		embeddingService,
		assessmentCacheService,
		aggregator,
		cfg,
	)
	analysisService := service.NewAnalysisService(analysisRepository, txManager, questionService, aggregator)

	authService, err := service.NewAuthService(userRepository, cfg)
	if err != nil {
		appLogger.Fatal("Failed to create AuthService", zap.Error(err))
	}
	userService := service.NewUserService(userRepository)
	appLogger.Info("Services initialized")

	// Initialize handlers
	questionHandler := handler.NewQuestionHandler(questionService)
	traitHandler := handler.NewTraitHandler(traitService)
	answerHandler := handler.NewAnswerHandler(answerService, questionService)
	analysisHandler := handler.NewAnalysisHandler(analysisService)
	authHandler := handler.NewAuthHandler(authService, cfg)
	userHandler := handler.NewUserHandler(userService, answerService)
	validationMiddleware := middleware.NewValidationMiddleware()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  20 * time.Second,
		BodyLimit:    10 * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(requestLogger())
	app.Use(cors.New(cors.Config{AllowOrigins: "*", AllowMethods: "GET,POST,PUT,DELETE,OPTIONS", AllowHeaders: "Origin,Content-Type,Accept,Authorization", MaxAge: 300}))
	app.Use(recover.New())

	// Swagger handler
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API group
	apiGroup := app.Group("/api")

	// Auth routes
	authGroup := apiGroup.Group("/auth")
	authGroup.Get("/google/login", authHandler.GoogleLogin)
	authGroup.Get("/google/callback", authHandler.GoogleCallback)
	authGroup.Post("/refresh", authHandler.RefreshToken)
	authGroup.Post("/logout", middleware.Protected(authService), authHandler.Logout)

	// Catalog routes. Anonymous callers see the active catalog; a valid token
	// unlocks include_inactive.
	questionGroup := apiGroup.Group("/questions", middleware.OptionalAuth(authService))
	questionGroup.Get("/", questionHandler.List)
	questionGroup.Get("/:id", questionHandler.Get)
	apiGroup.Get("/traits", traitHandler.List)

	// Answer routes (all protected)
	answerGroup := apiGroup.Group("/answers", middleware.Protected(authService))
	answerGroup.Get("/", validationMiddleware.ValidatePaginationQuery(), answerHandler.ListMine)
	answerGroup.Post("/answer-and-next", answerHandler.SubmitAndNext)
	answerGroup.Get("/next", answerHandler.Next)
	answerGroup.Get("/progress", answerHandler.Progress)
	answerGroup.Delete("/:id", validationMiddleware.ValidateAnswerIDParam(), answerHandler.Delete)

	// Self-analysis routes (all protected)
	analysisGroup := apiGroup.Group("/self-analysis", middleware.Protected(authService))
	analysisGroup.Get("/me", analysisHandler.Me)
	analysisGroup.Post("/recalc", analysisHandler.Recalculate)
	analysisGroup.Get("/overview", analysisHandler.Overview)

	// User routes (all protected)
	userGroup := apiGroup.Group("/users", middleware.Protected(authService))
	userGroup.Get("/me", userHandler.GetMyProfile)
	userGroup.Get("/me/answers", userHandler.GetMyAnswers)

	// Start server
	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", os.Getenv("ENV")))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
