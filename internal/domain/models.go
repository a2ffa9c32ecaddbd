package domain

import "time"

// Difficulty grades quiz content for generation and authoring.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Option is one of the choices of a question. Correctness lives on the
// question (CorrectIndex), so an Option can be broadcast as-is.
type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Question models an MCQ question with exactly one correct option, identified
// by its position in Options.
type Question struct {
	ID           string   `json:"id"`
	Prompt       string   `json:"prompt"`
	Options      []Option `json:"options"`
	Order        int      `json:"order"`
	CorrectIndex int      `json:"correctIndex"`
}

// Quiz is an ordered, immutable collection of questions.
type Quiz struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Topic      string     `json:"topic"`
	Difficulty Difficulty `json:"difficulty"`
	Questions  []Question `json:"questions"`
}

// QuestionAt returns the question at a zero-based index.
func (q Quiz) QuestionAt(index int) (Question, bool) {
	if index < 0 || index >= len(q.Questions) {
		return Question{}, false
	}
	return q.Questions[index], true
}

// QuestionByID resolves a question against the quiz content.
func (q Quiz) QuestionByID(id string) (Question, bool) {
	for i := range q.Questions {
		if q.Questions[i].ID == id {
			return q.Questions[i], true
		}
	}
	return Question{}, false
}

// OptionIndex returns the position of an option within the question, or -1.
func (q Question) OptionIndex(optionID string) int {
	for i := range q.Options {
		if q.Options[i].ID == optionID {
			return i
		}
	}
	return -1
}

// QuestionView is the participant-facing projection of a Question. It drops
// CorrectIndex so the answer key never rides along on a question broadcast.
type QuestionView struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []Option `json:"options"`
	Order   int      `json:"order"`
}

// View strips the correct index for broadcasting.
func (q Question) View() QuestionView {
	return QuestionView{ID: q.ID, Prompt: q.Prompt, Options: q.Options, Order: q.Order}
}

// GenerateQuizInput is the request shape for the opaque quiz generator.
type GenerateQuizInput struct {
	Topic        string     `json:"topic"`
	Difficulty   Difficulty `json:"difficulty"`
	NumQuestions int        `json:"numQuestions"`
}

// Session is one live run of a quiz. Lifecycle: created inactive with no
// question pointer, active with pointer 0 on start, ended is terminal.
type Session struct {
	ID              string     `json:"id"`
	Code            string     `json:"code"`
	QuizID          string     `json:"quizId"`
	IsActive        bool       `json:"isActive"`
	CurrentQuestion *int       `json:"currentQuestion,omitempty"`
	EndedAt         *time.Time `json:"endedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// Ended reports whether the session reached its terminal state.
func (s Session) Ended() bool {
	return s.EndedAt != nil
}

// Participant is one contestant within a session. Names are free text and not
// required to be unique; the leaderboard fold merges same-named rows.
type Participant struct {
	ID        string `json:"id"`
	SessionID string `json:"sessionId"`
	Name      string `json:"name"`
	Score     int    `json:"score"`
}

// Answer records one participant's choice for one question. The triple
// (SessionID, ParticipantID, QuestionID) is unique; a later submission for the
// same triple overwrites the earlier one.
type Answer struct {
	ID            string `json:"id"`
	SessionID     string `json:"sessionId"`
	ParticipantID string `json:"participantId"`
	QuestionID    string `json:"questionId"`
	OptionID      string `json:"optionId"`
	IsCorrect     bool   `json:"isCorrect"`
}

// LeaderboardEntry is one ranked row of the deduplicated scoreboard.
type LeaderboardEntry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// SessionSummary is the payload of the session-complete broadcast.
type SessionSummary struct {
	Leaderboard       []LeaderboardEntry `json:"leaderboard"`
	Winner            *LeaderboardEntry  `json:"winner"`
	TotalQuestions    int                `json:"totalQuestions"`
	TotalParticipants int                `json:"totalParticipants"`
}
