package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"quizcast/internal/domain"
)

// AnswerAward is the flat score for a correct answer. Not time-weighted.
const AnswerAward = 10

// codeAttempts bounds session code regeneration on collision. Running out of
// fresh 4-char codes means the deployment is holding far too many live
// sessions for this code space; treat it as an environment fault.
const codeAttempts = 8

// SessionStore is the durable record of sessions, participants and answers.
// Implementations must make SaveAnswer an atomic upsert on the
// (sessionID, participantID, questionID) key and IncrementScore an atomic
// delta, because the service deliberately holds no session-wide lock.
type SessionStore interface {
	CreateSession(ctx context.Context, session domain.Session) error
	Session(ctx context.Context, id string) (domain.Session, error)
	SessionByCode(ctx context.Context, code string) (domain.Session, error)
	CodeInUse(ctx context.Context, code string) (bool, error)
	StartSession(ctx context.Context, id string) (domain.Session, error)
	EndSession(ctx context.Context, id string, endedAt time.Time) (domain.Session, error)
	AddParticipant(ctx context.Context, participant domain.Participant) error
	Participants(ctx context.Context, sessionID string) ([]domain.Participant, error)
	SaveAnswer(ctx context.Context, answer domain.Answer) error
	IncrementScore(ctx context.Context, participantID string, delta int) (domain.Participant, error)
}

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// Broadcaster fans events out to every connection in a session's room.
// Delivery is best-effort; the service never waits on it.
type Broadcaster interface {
	BroadcastQuestion(sessionID string, question domain.QuestionView)
	BroadcastReveal(sessionID string, correctIndex int)
	BroadcastLeaderboard(sessionID string, entries []domain.LeaderboardEntry)
	BroadcastSessionComplete(sessionID string, summary domain.SessionSummary)
	BroadcastSessionEnd(sessionID string)
}

// AnswerSubmission models the scoring signal from clients.
type AnswerSubmission struct {
	SessionID     string
	ParticipantID string
	QuestionID    string
	OptionID      string
}

// SessionService drives the session lifecycle, answer scoring and event
// fan-out for live quiz runs.
type SessionService struct {
	store     SessionStore
	quizzes   QuizRepository
	broadcast Broadcaster
	now       func() time.Time
}

func NewSessionService(store SessionStore, quizzes QuizRepository, broadcast Broadcaster) *SessionService {
	return &SessionService{store: store, quizzes: quizzes, broadcast: broadcast, now: time.Now}
}

// CreateSession allocates an inactive session with a fresh shareable code.
// The code is regenerated while it collides with a session that has not
// ended yet.
func (s *SessionService) CreateSession(ctx context.Context, quizID string) (domain.Session, error) {
	if _, err := s.quizzes.GetQuiz(ctx, quizID); err != nil {
		return domain.Session{}, err
	}

	code, err := s.allocateCode(ctx)
	if err != nil {
		return domain.Session{}, err
	}

	session := domain.Session{
		ID:        uuid.NewString(),
		Code:      code,
		QuizID:    quizID,
		CreatedAt: s.now(),
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

func (s *SessionService) allocateCode(ctx context.Context) (string, error) {
	for i := 0; i < codeAttempts; i++ {
		code := generateCode()
		inUse, err := s.store.CodeInUse(ctx, code)
		if err != nil {
			return "", err
		}
		if !inUse {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not allocate a unique session code after %d attempts", codeAttempts)
}

// generateCode yields a short shareable token, e.g. "A3F0".
func generateCode() string {
	buf := make([]byte, 2)
	_, _ = rand.Read(buf)
	return strings.ToUpper(hex.EncodeToString(buf))
}

// StartSession flips the session to active with the question pointer at 0 and
// broadcasts the first question. Starting an already-active session re-emits
// question 0; callers get no idempotence guarantee.
func (s *SessionService) StartSession(ctx context.Context, sessionID string) (domain.Session, error) {
	session, err := s.store.StartSession(ctx, sessionID)
	if err != nil {
		return domain.Session{}, err
	}
	quiz, err := s.quizzes.GetQuiz(ctx, session.QuizID)
	if err != nil {
		return domain.Session{}, err
	}
	if first, ok := quiz.QuestionAt(0); ok {
		s.broadcast.BroadcastQuestion(session.ID, first.View())
	}
	return session, nil
}

// AdvanceQuestion broadcasts the question at the given index. The index is
// taken as-is from the host: replays and backtracking are allowed, only
// out-of-range indices are rejected.
func (s *SessionService) AdvanceQuestion(ctx context.Context, sessionID string, questionIndex int) error {
	question, err := s.resolveQuestion(ctx, sessionID, questionIndex)
	if err != nil {
		return err
	}
	s.broadcast.BroadcastQuestion(sessionID, question.View())
	return nil
}

// RevealQuestion broadcasts the correct option's index for the question at
// the given index, nothing else. Reveal does not close the question; answers
// submitted afterwards still score.
func (s *SessionService) RevealQuestion(ctx context.Context, sessionID string, questionIndex int) error {
	question, err := s.resolveQuestion(ctx, sessionID, questionIndex)
	if err != nil {
		return err
	}
	s.broadcast.BroadcastReveal(sessionID, question.CorrectIndex)
	return nil
}

func (s *SessionService) resolveQuestion(ctx context.Context, sessionID string, questionIndex int) (domain.Question, error) {
	session, err := s.store.Session(ctx, sessionID)
	if err != nil {
		return domain.Question{}, err
	}
	quiz, err := s.quizzes.GetQuiz(ctx, session.QuizID)
	if err != nil {
		return domain.Question{}, err
	}
	question, ok := quiz.QuestionAt(questionIndex)
	if !ok {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return question, nil
}

// EndSession computes the final summary, marks the session ended and emits
// session-complete followed by the bare session-end signal. The leaderboard
// is read before the activity flag flips so an answer committing concurrently
// still makes the summary. A missing quiz degrades totalQuestions to 0 rather
// than failing the whole end.
func (s *SessionService) EndSession(ctx context.Context, sessionID string) (domain.Session, error) {
	rows, err := s.store.Participants(ctx, sessionID)
	if err != nil {
		return domain.Session{}, err
	}
	leaderboard := domain.Rank(rows)

	session, err := s.store.Session(ctx, sessionID)
	if err != nil {
		return domain.Session{}, err
	}
	totalQuestions := 0
	if quiz, err := s.quizzes.GetQuiz(ctx, session.QuizID); err == nil {
		totalQuestions = len(quiz.Questions)
	}

	ended, err := s.store.EndSession(ctx, sessionID, s.now())
	if err != nil {
		return domain.Session{}, err
	}

	s.broadcast.BroadcastSessionComplete(sessionID, domain.SessionSummary{
		Leaderboard:       leaderboard,
		Winner:            domain.Winner(leaderboard),
		TotalQuestions:    totalQuestions,
		TotalParticipants: len(leaderboard),
	})
	s.broadcast.BroadcastSessionEnd(sessionID)
	return ended, nil
}

// Join admits a contestant by session code. Only active sessions accept
// joins; a created-but-not-started session rejects with ErrSessionInactive,
// not ErrInvalidSessionCode.
func (s *SessionService) Join(ctx context.Context, sessionCode, name string) (domain.Participant, error) {
	session, err := s.store.SessionByCode(ctx, sessionCode)
	if err != nil {
		return domain.Participant{}, err
	}
	if !session.IsActive {
		return domain.Participant{}, domain.ErrSessionInactive
	}

	participant := domain.Participant{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		Name:      name,
	}
	if err := s.store.AddParticipant(ctx, participant); err != nil {
		return domain.Participant{}, err
	}
	return participant, nil
}

// SubmitAnswer validates and scores one submission. The answer is upserted on
// its (session, participant, question) key, so resubmitting a question
// overwrites the earlier choice: last write wins. A correct answer awards a
// flat 10 points and triggers exactly one leaderboard broadcast; an incorrect
// one is persisted silently and returns no participant.
func (s *SessionService) SubmitAnswer(ctx context.Context, submission AnswerSubmission) (*domain.Participant, bool, error) {
	session, err := s.store.Session(ctx, submission.SessionID)
	if err != nil || !session.IsActive {
		return nil, false, domain.ErrSessionInactive
	}

	quiz, err := s.quizzes.GetQuiz(ctx, session.QuizID)
	if err != nil {
		return nil, false, err
	}
	question, ok := quiz.QuestionByID(submission.QuestionID)
	if !ok {
		return nil, false, domain.ErrQuestionNotFound
	}
	optionIndex := question.OptionIndex(submission.OptionID)
	if optionIndex < 0 {
		return nil, false, domain.ErrOptionNotFound
	}

	isCorrect := optionIndex == question.CorrectIndex
	answer := domain.Answer{
		ID:            uuid.NewString(),
		SessionID:     submission.SessionID,
		ParticipantID: submission.ParticipantID,
		QuestionID:    submission.QuestionID,
		OptionID:      submission.OptionID,
		IsCorrect:     isCorrect,
	}
	if err := s.store.SaveAnswer(ctx, answer); err != nil {
		return nil, false, err
	}

	if !isCorrect {
		return nil, false, nil
	}

	participant, err := s.store.IncrementScore(ctx, submission.ParticipantID, AnswerAward)
	if err != nil {
		return nil, false, err
	}
	rows, err := s.store.Participants(ctx, submission.SessionID)
	if err != nil {
		return nil, false, err
	}
	s.broadcast.BroadcastLeaderboard(submission.SessionID, domain.Rank(rows))
	return &participant, true, nil
}
