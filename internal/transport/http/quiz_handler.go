package http

import (
	"encoding/json"
	"net/http"

	"quizcast/internal/app"
	"quizcast/internal/domain"
)

// QuizHandler exposes quiz authoring over REST.
type QuizHandler struct {
	quizzes *app.QuizService
}

func NewQuizHandler(quizzes *app.QuizService) *QuizHandler {
	return &QuizHandler{quizzes: quizzes}
}

func (h *QuizHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var input domain.GenerateQuizInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid generate payload")
		return
	}
	if input.Topic == "" || input.NumQuestions < 1 || input.NumQuestions > 20 {
		writeError(w, http.StatusBadRequest, "topic and 1-20 questions are required")
		return
	}
	if input.Difficulty == "" {
		input.Difficulty = domain.DifficultyMedium
	}
	quiz, err := h.quizzes.Generate(r.Context(), input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, quiz)
}

func (h *QuizHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input app.CreateQuizInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid quiz payload")
		return
	}
	if input.Title == "" || len(input.Questions) == 0 {
		writeError(w, http.StatusBadRequest, "title and at least one question are required")
		return
	}
	for _, q := range input.Questions {
		if len(q.Options) != 4 || q.CorrectIndex < 0 || q.CorrectIndex > 3 {
			writeError(w, http.StatusBadRequest, "each question needs 4 options and a correctIndex in 0..3")
			return
		}
	}
	if input.Difficulty == "" {
		input.Difficulty = domain.DifficultyMedium
	}
	quiz, err := h.quizzes.Create(r.Context(), input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, quiz)
}

func (h *QuizHandler) List(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.quizzes.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if quizzes == nil {
		quizzes = []domain.Quiz{}
	}
	writeJSON(w, http.StatusOK, quizzes)
}

func (h *QuizHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.quizzes.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
