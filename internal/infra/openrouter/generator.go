// Package openrouter adapts the OpenRouter chat-completions API into the
// quiz generator port. Without an API key it falls back to a deterministic
// mock quiz so the rest of the stack keeps working in dev.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"quizcast/internal/domain"
)

const (
	defaultBaseURL = "https://openrouter.ai/api/v1/chat/completions"
	defaultModel   = "google/gemini-2.0-flash-001"
	optionsPerQ    = 4
)

type Generator struct {
	apiKey  string
	model   string
	baseURL string
	referer string
	client  *http.Client
}

type GeneratorOption func(*Generator)

// WithBaseURL points the adapter at a different endpoint (tests).
func WithBaseURL(url string) GeneratorOption {
	return func(g *Generator) { g.baseURL = url }
}

// WithModel overrides the default model.
func WithModel(model string) GeneratorOption {
	return func(g *Generator) {
		if model != "" {
			g.model = model
		}
	}
}

func NewGenerator(apiKey, referer string, opts ...GeneratorOption) *Generator {
	g := &Generator{
		apiKey:  apiKey,
		model:   defaultModel,
		baseURL: defaultBaseURL,
		referer: referer,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// generatedQuiz is the JSON shape the model is asked to produce.
type generatedQuiz struct {
	Title     string `json:"title"`
	Questions []struct {
		Prompt       string   `json:"prompt"`
		Options      []string `json:"options"`
		CorrectIndex int      `json:"correctIndex"`
	} `json:"questions"`
}

func (g *Generator) GenerateQuiz(ctx context.Context, input domain.GenerateQuizInput) (domain.Quiz, error) {
	if g.apiKey == "" {
		return g.mockQuiz(input), nil
	}

	userPrompt := strings.Join([]string{
		"Topic: " + input.Topic,
		"Difficulty: " + string(input.Difficulty),
		fmt.Sprintf("Number of questions: %d", input.NumQuestions),
		"Respond with pure JSON matching { title, questions:[{ prompt, options: string[4], correctIndex:number }]}",
	}, "\n")

	body, err := json.Marshal(chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are an assistant that writes multiple choice quizzes in JSON. Always respond with pure JSON only, no markdown code blocks."},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.7,
	})
	if err != nil {
		return domain.Quiz{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL, bytes.NewReader(body))
	if err != nil {
		return domain.Quiz{}, err
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if g.referer != "" {
		req.Header.Set("HTTP-Referer", g.referer)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("openrouter request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return domain.Quiz{}, fmt.Errorf("openrouter api error: %d - %s", resp.StatusCode, detail)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return domain.Quiz{}, fmt.Errorf("decode openrouter response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return domain.Quiz{}, fmt.Errorf("openrouter returned no choices")
	}

	text := stripCodeFences(parsed.Choices[0].Message.Content)
	var generated generatedQuiz
	if err := json.Unmarshal([]byte(text), &generated); err != nil {
		return domain.Quiz{}, fmt.Errorf("unmarshal generated quiz: %w", err)
	}

	return g.assemble(input, generated), nil
}

func (g *Generator) assemble(input domain.GenerateQuizInput, generated generatedQuiz) domain.Quiz {
	title := generated.Title
	if title == "" {
		title = input.Topic + " quiz"
	}
	quiz := domain.Quiz{
		ID:         uuid.NewString(),
		Title:      title,
		Topic:      input.Topic,
		Difficulty: input.Difficulty,
		Questions:  make([]domain.Question, 0, len(generated.Questions)),
	}
	for i, q := range generated.Questions {
		question := domain.Question{
			ID:           uuid.NewString(),
			Prompt:       q.Prompt,
			Order:        i,
			CorrectIndex: q.CorrectIndex,
			Options:      make([]domain.Option, 0, len(q.Options)),
		}
		for _, text := range q.Options {
			question.Options = append(question.Options, domain.Option{ID: uuid.NewString(), Text: text})
		}
		quiz.Questions = append(quiz.Questions, question)
	}
	return quiz
}

func (g *Generator) mockQuiz(input domain.GenerateQuizInput) domain.Quiz {
	quiz := domain.Quiz{
		ID:         uuid.NewString(),
		Title:      input.Topic + " quiz",
		Topic:      input.Topic,
		Difficulty: input.Difficulty,
		Questions:  make([]domain.Question, 0, input.NumQuestions),
	}
	for i := 0; i < input.NumQuestions; i++ {
		question := domain.Question{
			ID:           uuid.NewString(),
			Prompt:       fmt.Sprintf("Sample question %d about %s?", i+1, input.Topic),
			Order:        i,
			CorrectIndex: 0,
			Options:      make([]domain.Option, 0, optionsPerQ),
		}
		for j := 0; j < optionsPerQ; j++ {
			question.Options = append(question.Options, domain.Option{
				ID:   uuid.NewString(),
				Text: fmt.Sprintf("Option %d", j+1),
			})
		}
		quiz.Questions = append(quiz.Questions, question)
	}
	return quiz
}

// stripCodeFences removes markdown fences some models wrap around JSON.
func stripCodeFences(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}
