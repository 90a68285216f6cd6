package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/quizdeck/quizdeck-backend/internal/config"
	"github.com/quizdeck/quizdeck-backend/internal/database"
	"github.com/quizdeck/quizdeck-backend/internal/logger"
	"github.com/quizdeck/quizdeck-backend/internal/model"
	"github.com/quizdeck/quizdeck-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	userRepo := repository.NewUserRepository(pool)
	quizRepo := repository.NewQuizRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)

	fmt.Println("=== Seeding Demo Data ===")

	// ─── Demo account ──────────────────────────────────────────────────
	demoEmail := "demo@quizdeck.local"
	owner, err := userRepo.GetByEmail(ctx, demoEmail)
	if err != nil {
		if err != pgx.ErrNoRows {
			log.Fatal().Err(err).Msg("Failed to check demo user")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte("demo-password"), cfg.BcryptCost)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to hash password")
		}
		owner = &model.User{
			Email:        demoEmail,
			DisplayName:  "Demo Host",
			PasswordHash: string(hash),
		}
		if err := userRepo.Create(ctx, owner); err != nil {
			log.Fatal().Err(err).Msg("Failed to create demo user")
		}
		fmt.Printf("Created demo user %s (password: demo-password)\n", demoEmail)
	} else {
		fmt.Printf("Found existing demo user %s\n", demoEmail)
	}

	// ─── Demo quizzes, one per reveal mode ─────────────────────────────
	quizzes := []struct {
		quiz      model.Quiz
		questions []model.Question
	}{
		{
			quiz: model.Quiz{
				Name:        "World Capitals",
				Description: "Quick-fire geography with instant feedback.",
				OwnerID:     owner.ID,
				Settings: model.QuizSettings{
					ShowAnswersAfter:      model.ShowAnswersImmediately,
					TimeLimitPerQuestion:  15,
					AllowMultipleAttempts: true,
				},
			},
			questions: []model.Question{
				{
					Type:          model.QuestionTypeMultipleChoice,
					Text:          "What is the capital of France?",
					Options:       []string{"Lyon", "Paris", "Marseille", "Nice"},
					CorrectAnswer: intPtr(1),
				},
				{
					Type:          model.QuestionTypeTrueFalse,
					Text:          "Canberra is the capital of Australia.",
					CorrectAnswer: intPtr(model.AnswerTrue),
				},
				{
					Type:        model.QuestionTypeFillInTheBlank,
					Text:        "The capital of Japan is ____.",
					BlankAnswer: strPtr("Tokyo"),
				},
			},
		},
		{
			quiz: model.Quiz{
				Name:        "Timed Science Challenge",
				Description: "Results revealed at the end. One attempt only.",
				OwnerID:     owner.ID,
				Settings: model.QuizSettings{
					ShowAnswersAfter:     model.ShowAnswersAtEnd,
					TimeLimitPerQuestion: 20,
				},
			},
			questions: []model.Question{
				{
					Type:          model.QuestionTypeMultipleChoice,
					Text:          "Which planet is known as the Red Planet?",
					Options:       []string{"Venus", "Jupiter", "Mars"},
					CorrectAnswer: intPtr(2),
				},
				{
					Type:          model.QuestionTypeTrueFalse,
					Text:          "Sound travels faster in water than in air.",
					CorrectAnswer: intPtr(model.AnswerTrue),
				},
				{
					Type:        model.QuestionTypeFillInTheBlank,
					Text:        "Water is made of hydrogen and ____.",
					BlankAnswer: strPtr("oxygen"),
				},
			},
		},
		{
			quiz: model.Quiz{
				Name:        "Go Study Deck",
				Description: "Practice until every answer sticks. Untimed.",
				OwnerID:     owner.ID,
				Settings: model.QuizSettings{
					ShowAnswersAfter:      model.ShowAnswersUntilCorrect,
					AllowMultipleAttempts: true,
				},
			},
			questions: []model.Question{
				{
					Type:          model.QuestionTypeMultipleChoice,
					Text:          "Which keyword declares a constant in Go?",
					Options:       []string{"let", "const", "var", "def"},
					CorrectAnswer: intPtr(1),
				},
				{
					Type:          model.QuestionTypeTrueFalse,
					Text:          "A nil map can be written to without panicking.",
					CorrectAnswer: intPtr(model.AnswerFalse),
				},
				{
					Type:        model.QuestionTypeFillInTheBlank,
					Text:        "The builtin that returns a slice's length is ____.",
					BlankAnswer: strPtr("len"),
				},
			},
		},
	}

	for i := range quizzes {
		entry := &quizzes[i]
		if err := quizRepo.Create(ctx, &entry.quiz); err != nil {
			log.Fatal().Err(err).Str("quiz", entry.quiz.Name).Msg("Failed to create quiz")
		}
		for pos := range entry.questions {
			entry.questions[pos].QuizID = entry.quiz.ID
			entry.questions[pos].Position = pos
		}
		if err := questionRepo.CreateBatch(ctx, entry.questions); err != nil {
			log.Fatal().Err(err).Str("quiz", entry.quiz.Name).Msg("Failed to create questions")
		}
		fmt.Printf("Created quiz %q with %d questions (%s)\n",
			entry.quiz.Name, len(entry.questions), entry.quiz.Settings.ShowAnswersAfter)
	}

	fmt.Println("Seeding complete")
}
