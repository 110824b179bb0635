package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"self-analysis/cmd/seed_questions/internal/seedmodels"
	"self-analysis/internal/adapter"
	"self-analysis/internal/cache"
	"self-analysis/internal/config"
	"self-analysis/internal/database"
	"self-analysis/internal/domain"
	"self-analysis/internal/dto"
	"self-analysis/internal/logger"
	"self-analysis/internal/repository"
	"self-analysis/internal/service"

	"go.uber.org/zap"
)

const (
	seedFilePath = "configs/seed_data/initial_questions.json"
)

func firstN(s string, n int) string {
	if len(s) < n {
		return s
	}
	return s[:n]
}

func main() {
	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		// If logger is not initialized yet, use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Get()

	log.Info("Starting catalog seeding process...")
	db, err := database.NewSQLXOracleDB(cfg.GetDSN())
	if err != nil {
		log.Fatal("Failed to connect to Oracle database", zap.Error(err))
	}
	defer db.Close()

	log.Info("Loading seed data from file", zap.String("path", seedFilePath))
	byteValue, err := os.ReadFile(seedFilePath)
	if err != nil {
		log.Fatal("Failed to read seed file", zap.String("path", seedFilePath), zap.Error(err))
	}

	var seed seedmodels.SeedFile
	if err := json.Unmarshal(byteValue, &seed); err != nil {
		log.Fatal("Failed to unmarshal seed data", zap.Error(err))
	}
	log.Info("Successfully unmarshalled seed data",
		zap.Int("traits_loaded", len(seed.Traits)),
		zap.Int("root_questions_loaded", len(seed.Questions)))

	txManager := repository.NewTransactionManagerAdapter(db)
	traitRepo := repository.NewSQLXTraitRepository(db)
	questionRepo := repository.NewSQLXQuestionRepository(db)

	if err := txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return seedTraits(txCtx, log, traitRepo, seed.Traits)
	}); err != nil {
		log.Fatal("Failed to seed traits", zap.Error(err))
	}

	// Existing questions keyed by text make reruns no-ops while still
	// letting new follow-ups attach to previously seeded parents.
	existing, err := existingQuestionsByText(ctx, questionRepo)
	if err != nil {
		log.Fatal("Failed to load existing questions", zap.Error(err))
	}

	for _, sq := range seed.Questions {
		rootText := firstN(sq.Text, 40)
		if err := txManager.WithTransaction(ctx, func(txCtx context.Context) error {
			return seedQuestionTree(txCtx, log, questionRepo, existing, sq, nil)
		}); err != nil {
			log.Error("Error seeding question tree, transaction rolled back",
				zap.String("root_question", rootText), zap.Error(err))
		}
	}

	invalidateCatalogCache(ctx, log, cfg, questionRepo, repository.NewSQLXAnswerRepository(db))
	log.Info("Catalog seeding process completed.")
}

func seedTraits(ctx context.Context, log *zap.Logger, traitRepo domain.TraitRepository, seedTraits []seedmodels.SeedTrait) error {
	current, err := traitRepo.ListTraits(ctx, dto.TraitFilters{IncludeInactive: true})
	if err != nil {
		return fmt.Errorf("failed to list current traits: %w", err)
	}
	byName := make(map[string]bool, len(current))
	for _, t := range current {
		byName[t.Name] = true
	}

	for _, st := range seedTraits {
		if byName[st.Name] {
			log.Info("Trait exists, skipping.", zap.String("name", st.Name))
			continue
		}

		trait := domain.NewTrait(st.Name, domain.Polarity(strings.ToLower(st.Polarity)), st.Description)
		if st.MinValue != nil {
			trait.MinValue = float64(*st.MinValue)
		}
		if st.MaxValue != nil {
			trait.MaxValue = float64(*st.MaxValue)
		}
		if err := trait.Validate(); err != nil {
			return fmt.Errorf("invalid seed trait %s: %w", st.Name, err)
		}
		if err := traitRepo.SaveTrait(ctx, trait); err != nil {
			return fmt.Errorf("failed to save trait %s: %w", st.Name, err)
		}
		byName[st.Name] = true
		log.Info("Created trait.", zap.String("id", trait.ID), zap.String("name", trait.Name))
	}
	return nil
}

func existingQuestionsByText(ctx context.Context, questionRepo domain.QuestionRepository) (map[string]string, error) {
	questions, err := questionRepo.ListQuestions(ctx, dto.QuestionFilters{IncludeInactive: true})
	if err != nil {
		return nil, err
	}
	byText := make(map[string]string, len(questions))
	for _, q := range questions {
		byText[q.Text] = q.ID
	}
	return byText, nil
}

func seedQuestionTree(
	ctx context.Context,
	log *zap.Logger,
	questionRepo domain.QuestionRepository,
	existing map[string]string,
	sq seedmodels.SeedQuestion,
	parentID *string,
) error {
	id, ok := existing[sq.Text]
	if ok {
		log.Info("Question exists, skipping.",
			zap.String("id", id), zap.String("text_preview", firstN(sq.Text, 40)))
	} else {
		question := domain.NewQuestion(sq.Text, domain.QuestionType(sq.Type), sq.DisplayOrder)
		question.Required = sq.Required
		question.ParentID = parentID
		if sq.Category != "" {
			category := sq.Category
			question.Category = &category
		}
		for i, opt := range sq.Options {
			value := opt.Value
			if value == "" {
				value = opt.Label
			}
			question.Options = append(question.Options, *domain.NewOption("", opt.Label, value, i+1))
		}
		if err := question.Validate(); err != nil {
			return fmt.Errorf("invalid seed question '%s': %w", firstN(sq.Text, 50), err)
		}

		if err := questionRepo.SaveQuestion(ctx, question); err != nil {
			return fmt.Errorf("failed to save question '%s': %w", firstN(sq.Text, 50), err)
		}
		for i := range question.Options {
			question.Options[i].QuestionID = question.ID
			if err := questionRepo.SaveOption(ctx, &question.Options[i]); err != nil {
				return fmt.Errorf("failed to save option '%s': %w", question.Options[i].Label, err)
			}
		}

		existing[sq.Text] = question.ID
		id = question.ID
		log.Info("Created question.",
			zap.String("id", question.ID),
			zap.String("type", string(question.Type)),
			zap.Int("options", len(question.Options)),
			zap.String("text_preview", firstN(sq.Text, 40)))
	}

	for _, child := range sq.FollowUps {
		childParentID := id
		if err := seedQuestionTree(ctx, log, questionRepo, existing, child, &childParentID); err != nil {
			return err
		}
	}
	return nil
}

// invalidateCatalogCache drops the cached active-question list so API
// instances pick up the new catalog immediately. Seeding still succeeds
// when Redis is unreachable; the cache TTL bounds the staleness.
func invalidateCatalogCache(
	ctx context.Context,
	log *zap.Logger,
	cfg *config.Config,
	questionRepo domain.QuestionRepository,
	answerRepo domain.AnswerRepository,
) {
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		log.Warn("Skipping catalog cache invalidation, Redis unavailable", zap.Error(err))
		return
	}
	defer redisClient.Close()

	cacheAdapter := adapter.NewRedisCacheAdapter(redisClient)
	questionService := service.NewQuestionService(questionRepo, answerRepo, cacheAdapter, cfg)
	if err := questionService.InvalidateCatalog(ctx); err != nil {
		log.Warn("Failed to invalidate catalog cache", zap.Error(err))
		return
	}
	log.Info("Catalog cache invalidated.")
}
