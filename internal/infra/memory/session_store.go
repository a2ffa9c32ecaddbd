package memory

import (
	"context"
	"sync"
	"time"

	"quizcast/internal/domain"
)

type answerKey struct {
	sessionID     string
	participantID string
	questionID    string
}

// SessionStore is the in-memory implementation of app.SessionStore. One
// mutex guards all maps, which also serializes answer upserts on their
// composite key the way the Postgres store's unique constraint does.
type SessionStore struct {
	mu           sync.RWMutex
	sessions     map[string]*domain.Session
	byCode       map[string]string // code -> session id, only while the session has not ended
	participants map[string]*domain.Participant
	bySession    map[string][]string // session id -> participant ids in join order
	answers      map[answerKey]domain.Answer
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions:     make(map[string]*domain.Session),
		byCode:       make(map[string]string),
		participants: make(map[string]*domain.Participant),
		bySession:    make(map[string][]string),
		answers:      make(map[answerKey]domain.Answer),
	}
}

func (s *SessionStore) CreateSession(_ context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := session
	s.sessions[session.ID] = &stored
	s.byCode[session.Code] = session.ID
	return nil
}

func (s *SessionStore) Session(_ context.Context, id string) (domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	return *session, nil
}

func (s *SessionStore) SessionByCode(_ context.Context, code string) (domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byCode[code]
	if !ok {
		return domain.Session{}, domain.ErrInvalidSessionCode
	}
	return *s.sessions[id], nil
}

func (s *SessionStore) CodeInUse(_ context.Context, code string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byCode[code]
	return ok, nil
}

func (s *SessionStore) StartSession(_ context.Context, id string) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	first := 0
	session.IsActive = true
	session.CurrentQuestion = &first
	return *session, nil
}

func (s *SessionStore) EndSession(_ context.Context, id string, endedAt time.Time) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	session.IsActive = false
	session.EndedAt = &endedAt
	delete(s.byCode, session.Code)
	return *session, nil
}

func (s *SessionStore) AddParticipant(_ context.Context, participant domain.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[participant.SessionID]; !ok {
		return domain.ErrSessionNotFound
	}
	stored := participant
	s.participants[participant.ID] = &stored
	s.bySession[participant.SessionID] = append(s.bySession[participant.SessionID], participant.ID)
	return nil
}

// Participants returns the session's contestants in join order, which is the
// input order the leaderboard fold uses for tie-breaking.
func (s *SessionStore) Participants(_ context.Context, sessionID string) ([]domain.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return nil, domain.ErrSessionNotFound
	}
	ids := s.bySession[sessionID]
	rows := make([]domain.Participant, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, *s.participants[id])
	}
	return rows, nil
}

// SaveAnswer upserts on the (session, participant, question) key. A second
// submission keeps the original answer ID and overwrites choice and
// correctness.
func (s *SessionStore) SaveAnswer(_ context.Context, answer domain.Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := answerKey{
		sessionID:     answer.SessionID,
		participantID: answer.ParticipantID,
		questionID:    answer.QuestionID,
	}
	if existing, ok := s.answers[key]; ok {
		existing.OptionID = answer.OptionID
		existing.IsCorrect = answer.IsCorrect
		s.answers[key] = existing
		return nil
	}
	s.answers[key] = answer
	return nil
}

func (s *SessionStore) IncrementScore(_ context.Context, participantID string, delta int) (domain.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	participant, ok := s.participants[participantID]
	if !ok {
		return domain.Participant{}, domain.ErrParticipantNotFound
	}
	participant.Score += delta
	return *participant, nil
}

// Answer exposes the stored record for a triple; used by tests to assert
// upsert semantics.
func (s *SessionStore) Answer(sessionID, participantID, questionID string) (domain.Answer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	answer, ok := s.answers[answerKey{sessionID: sessionID, participantID: participantID, questionID: questionID}]
	return answer, ok
}
