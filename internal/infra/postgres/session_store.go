package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"quizcast/internal/domain"
)

type sessionRow struct {
	bun.BaseModel `bun:"table:sessions"`

	ID              string     `bun:"id,pk"`
	Code            string     `bun:"code,notnull"`
	QuizID          string     `bun:"quiz_id,notnull"`
	IsActive        bool       `bun:"is_active,notnull"`
	CurrentQuestion *int       `bun:"current_question"`
	EndedAt         *time.Time `bun:"ended_at"`
	CreatedAt       time.Time  `bun:"created_at,notnull"`
}

type participantRow struct {
	bun.BaseModel `bun:"table:participants"`

	ID        string    `bun:"id,pk"`
	SessionID string    `bun:"session_id,notnull"`
	Name      string    `bun:"name,notnull"`
	Score     int       `bun:"score,notnull"`
	JoinedAt  time.Time `bun:"joined_at,notnull,default:now()"`
}

type answerRow struct {
	bun.BaseModel `bun:"table:answers"`

	ID            string `bun:"id,pk"`
	SessionID     string `bun:"session_id,notnull"`
	ParticipantID string `bun:"participant_id,notnull"`
	QuestionID    string `bun:"question_id,notnull"`
	OptionID      string `bun:"option_id,notnull"`
	IsCorrect     bool   `bun:"is_correct,notnull"`
}

// SessionStore persists sessions, participants and answers in Postgres via
// bun. The answers table carries a unique constraint on
// (session_id, participant_id, question_id); SaveAnswer leans on it with
// ON CONFLICT DO UPDATE so concurrent submissions for the same triple resolve
// to a single row deterministically.
type SessionStore struct {
	db *bun.DB
}

func NewSessionStore(db *bun.DB) *SessionStore {
	return &SessionStore{db: db}
}

func (s *SessionStore) CreateSession(ctx context.Context, session domain.Session) error {
	row := sessionRow{
		ID:        session.ID,
		Code:      session.Code,
		QuizID:    session.QuizID,
		IsActive:  session.IsActive,
		CreatedAt: session.CreatedAt,
	}
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (s *SessionStore) Session(ctx context.Context, id string) (domain.Session, error) {
	var row sessionRow
	err := s.db.NewSelect().Model(&row).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("load session: %w", err)
	}
	return toSession(row), nil
}

// SessionByCode resolves a join code. Codes are only held by sessions that
// have not ended, so the lookup ignores terminal rows.
func (s *SessionStore) SessionByCode(ctx context.Context, code string) (domain.Session, error) {
	var row sessionRow
	err := s.db.NewSelect().Model(&row).
		Where("code = ?", code).
		Where("ended_at IS NULL").
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, domain.ErrInvalidSessionCode
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("load session by code: %w", err)
	}
	return toSession(row), nil
}

func (s *SessionStore) CodeInUse(ctx context.Context, code string) (bool, error) {
	count, err := s.db.NewSelect().Model((*sessionRow)(nil)).
		Where("code = ?", code).
		Where("ended_at IS NULL").
		Count(ctx)
	if err != nil {
		return false, fmt.Errorf("check code: %w", err)
	}
	return count > 0, nil
}

func (s *SessionStore) StartSession(ctx context.Context, id string) (domain.Session, error) {
	var row sessionRow
	err := s.db.NewUpdate().Model(&row).
		Set("is_active = TRUE").
		Set("current_question = 0").
		Where("id = ?", id).
		Returning("*").
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("start session: %w", err)
	}
	return toSession(row), nil
}

func (s *SessionStore) EndSession(ctx context.Context, id string, endedAt time.Time) (domain.Session, error) {
	var row sessionRow
	err := s.db.NewUpdate().Model(&row).
		Set("is_active = FALSE").
		Set("ended_at = ?", endedAt).
		Where("id = ?", id).
		Returning("*").
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("end session: %w", err)
	}
	return toSession(row), nil
}

func (s *SessionStore) AddParticipant(ctx context.Context, participant domain.Participant) error {
	row := participantRow{
		ID:        participant.ID,
		SessionID: participant.SessionID,
		Name:      participant.Name,
		Score:     participant.Score,
		JoinedAt:  time.Now(),
	}
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return fmt.Errorf("add participant: %w", err)
	}
	return nil
}

// Participants returns contestants in join order so the leaderboard fold
// breaks ties by who joined first.
func (s *SessionStore) Participants(ctx context.Context, sessionID string) ([]domain.Participant, error) {
	var rows []participantRow
	err := s.db.NewSelect().Model(&rows).
		Where("session_id = ?", sessionID).
		Order("joined_at ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	participants := make([]domain.Participant, 0, len(rows))
	for _, row := range rows {
		participants = append(participants, domain.Participant{
			ID:        row.ID,
			SessionID: row.SessionID,
			Name:      row.Name,
			Score:     row.Score,
		})
	}
	return participants, nil
}

func (s *SessionStore) SaveAnswer(ctx context.Context, answer domain.Answer) error {
	row := answerRow{
		ID:            answer.ID,
		SessionID:     answer.SessionID,
		ParticipantID: answer.ParticipantID,
		QuestionID:    answer.QuestionID,
		OptionID:      answer.OptionID,
		IsCorrect:     answer.IsCorrect,
	}
	_, err := s.db.NewInsert().Model(&row).
		On("CONFLICT (session_id, participant_id, question_id) DO UPDATE").
		Set("option_id = EXCLUDED.option_id").
		Set("is_correct = EXCLUDED.is_correct").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("save answer: %w", err)
	}
	return nil
}

func (s *SessionStore) IncrementScore(ctx context.Context, participantID string, delta int) (domain.Participant, error) {
	var row participantRow
	err := s.db.NewUpdate().Model(&row).
		Set("score = score + ?", delta).
		Where("id = ?", participantID).
		Returning("*").
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Participant{}, domain.ErrParticipantNotFound
	}
	if err != nil {
		return domain.Participant{}, fmt.Errorf("increment score: %w", err)
	}
	return domain.Participant{
		ID:        row.ID,
		SessionID: row.SessionID,
		Name:      row.Name,
		Score:     row.Score,
	}, nil
}

func toSession(row sessionRow) domain.Session {
	return domain.Session{
		ID:              row.ID,
		Code:            row.Code,
		QuizID:          row.QuizID,
		IsActive:        row.IsActive,
		CurrentQuestion: row.CurrentQuestion,
		EndedAt:         row.EndedAt,
		CreatedAt:       row.CreatedAt,
	}
}
