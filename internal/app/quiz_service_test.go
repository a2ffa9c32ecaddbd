package app_test

import (
	"context"
	"errors"
	"testing"

	"quizcast/internal/app"
	"quizcast/internal/domain"
	"quizcast/internal/infra/memory"
)

func TestCreateQuizAssignsIDsAndOrder(t *testing.T) {
	ctx := context.Background()
	store := memory.NewQuizStore(nil)
	service := app.NewQuizService(&staticGenerator{}, store)

	quiz, err := service.Create(ctx, app.CreateQuizInput{
		Title:      "Capitals",
		Topic:      "geography",
		Difficulty: domain.DifficultyEasy,
		Questions: []app.QuestionInput{
			{Prompt: "Capital of France?", Options: []string{"Paris", "Lyon", "Nice", "Lille"}, CorrectIndex: 0},
			{Prompt: "Capital of Peru?", Options: []string{"Cusco", "Lima", "Arequipa", "Trujillo"}, CorrectIndex: 1},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if quiz.ID == "" || len(quiz.Questions) != 2 {
		t.Fatalf("unexpected quiz: %+v", quiz)
	}
	for i, q := range quiz.Questions {
		if q.ID == "" || q.Order != i || len(q.Options) != 4 {
			t.Fatalf("question %d malformed: %+v", i, q)
		}
		for _, o := range q.Options {
			if o.ID == "" {
				t.Fatalf("option without id in question %d", i)
			}
		}
	}
	if quiz.Questions[1].CorrectIndex != 1 {
		t.Fatalf("correct index not preserved: %+v", quiz.Questions[1])
	}

	stored, err := store.GetQuiz(ctx, quiz.ID)
	if err != nil || stored.Title != "Capitals" {
		t.Fatalf("quiz not persisted: %+v err=%v", stored, err)
	}
}

func TestGenerateStoresProviderResult(t *testing.T) {
	ctx := context.Background()
	store := memory.NewQuizStore(nil)
	generated := domain.Quiz{ID: "gen-1", Title: "Go trivia", Topic: "go"}
	service := app.NewQuizService(&staticGenerator{quiz: generated}, store)

	quiz, err := service.Generate(ctx, domain.GenerateQuizInput{Topic: "go", NumQuestions: 3})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if quiz.ID != "gen-1" {
		t.Fatalf("expected provider quiz, got %+v", quiz)
	}
	if _, err := store.GetQuiz(ctx, "gen-1"); err != nil {
		t.Fatalf("generated quiz not stored: %v", err)
	}
}

func TestGenerateFailurePropagates(t *testing.T) {
	ctx := context.Background()
	service := app.NewQuizService(&staticGenerator{err: errors.New("provider down")}, memory.NewQuizStore(nil))

	if _, err := service.Generate(ctx, domain.GenerateQuizInput{Topic: "go", NumQuestions: 3}); err == nil {
		t.Fatalf("expected provider error")
	}
}

func TestDeleteQuiz(t *testing.T) {
	ctx := context.Background()
	store := memory.NewQuizStore(map[string]domain.Quiz{"quiz-1": {ID: "quiz-1"}})
	service := app.NewQuizService(&staticGenerator{}, store)

	if err := service.Delete(ctx, "quiz-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.GetQuiz(ctx, "quiz-1"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected quiz gone, got %v", err)
	}
}

type staticGenerator struct {
	quiz domain.Quiz
	err  error
}

func (g *staticGenerator) GenerateQuiz(_ context.Context, _ domain.GenerateQuizInput) (domain.Quiz, error) {
	return g.quiz, g.err
}
