package app

import (
	"context"

	"github.com/google/uuid"

	"quizcast/internal/domain"
)

// QuizStore is the durable home of authored quiz content.
type QuizStore interface {
	SaveQuiz(ctx context.Context, quiz domain.Quiz) error
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	ListQuizzes(ctx context.Context) ([]domain.Quiz, error)
	DeleteQuiz(ctx context.Context, quizID string) error
}

// QuizGenerator is an opaque provider that writes a quiz for a topic. The
// service only relies on it returning the usual question shape.
type QuizGenerator interface {
	GenerateQuiz(ctx context.Context, input domain.GenerateQuizInput) (domain.Quiz, error)
}

// QuestionInput is one hand-authored question: four option texts plus the
// index of the correct one.
type QuestionInput struct {
	Prompt       string   `json:"prompt"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
}

// CreateQuizInput is the manual authoring request.
type CreateQuizInput struct {
	Title      string            `json:"title"`
	Topic      string            `json:"topic"`
	Difficulty domain.Difficulty `json:"difficulty"`
	Questions  []QuestionInput   `json:"questions"`
}

// QuizService covers quiz authoring: AI generation, manual creation, listing
// and deletion. Live-session reads go through QuizRepository instead so they
// can be served from cache.
type QuizService struct {
	generator QuizGenerator
	store     QuizStore
}

func NewQuizService(generator QuizGenerator, store QuizStore) *QuizService {
	return &QuizService{generator: generator, store: store}
}

// Generate asks the provider for a quiz and stores the result.
func (s *QuizService) Generate(ctx context.Context, input domain.GenerateQuizInput) (domain.Quiz, error) {
	quiz, err := s.generator.GenerateQuiz(ctx, input)
	if err != nil {
		return domain.Quiz{}, err
	}
	if err := s.store.SaveQuiz(ctx, quiz); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

// Create assembles a quiz from hand-authored questions, assigning IDs and
// question order, and stores it.
func (s *QuizService) Create(ctx context.Context, input CreateQuizInput) (domain.Quiz, error) {
	quiz := domain.Quiz{
		ID:         uuid.NewString(),
		Title:      input.Title,
		Topic:      input.Topic,
		Difficulty: input.Difficulty,
		Questions:  make([]domain.Question, 0, len(input.Questions)),
	}
	for i, q := range input.Questions {
		question := domain.Question{
			ID:           uuid.NewString(),
			Prompt:       q.Prompt,
			Order:        i,
			CorrectIndex: q.CorrectIndex,
			Options:      make([]domain.Option, 0, len(q.Options)),
		}
		for _, text := range q.Options {
			question.Options = append(question.Options, domain.Option{
				ID:   uuid.NewString(),
				Text: text,
			})
		}
		quiz.Questions = append(quiz.Questions, question)
	}

	if err := s.store.SaveQuiz(ctx, quiz); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

// Get returns a quiz by ID.
func (s *QuizService) Get(ctx context.Context, quizID string) (domain.Quiz, error) {
	return s.store.GetQuiz(ctx, quizID)
}

// List returns all stored quizzes.
func (s *QuizService) List(ctx context.Context) ([]domain.Quiz, error) {
	return s.store.ListQuizzes(ctx)
}

// Delete removes a quiz.
func (s *QuizService) Delete(ctx context.Context, quizID string) error {
	return s.store.DeleteQuiz(ctx, quizID)
}
