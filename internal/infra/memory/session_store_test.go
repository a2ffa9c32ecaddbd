package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"quizcast/internal/domain"
)

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()

	session := domain.Session{ID: "s1", Code: "AB12", QuizID: "quiz-1", CreatedAt: time.Now()}
	if err := store.CreateSession(ctx, session); err != nil {
		t.Fatalf("create: %v", err)
	}

	if inUse, _ := store.CodeInUse(ctx, "AB12"); !inUse {
		t.Fatalf("expected code in use")
	}

	byCode, err := store.SessionByCode(ctx, "AB12")
	if err != nil || byCode.ID != "s1" {
		t.Fatalf("expected lookup by code, got %+v err=%v", byCode, err)
	}

	started, err := store.StartSession(ctx, "s1")
	if err != nil || !started.IsActive || *started.CurrentQuestion != 0 {
		t.Fatalf("unexpected started session: %+v err=%v", started, err)
	}

	endedAt := time.Now()
	ended, err := store.EndSession(ctx, "s1", endedAt)
	if err != nil || ended.IsActive || ended.EndedAt == nil {
		t.Fatalf("unexpected ended session: %+v err=%v", ended, err)
	}

	// Ending frees the code.
	if inUse, _ := store.CodeInUse(ctx, "AB12"); inUse {
		t.Fatalf("expected code released after end")
	}
	if _, err := store.SessionByCode(ctx, "AB12"); !errors.Is(err, domain.ErrInvalidSessionCode) {
		t.Fatalf("expected invalid code after end, got %v", err)
	}
}

func TestUnknownSessionErrors(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()

	if _, err := store.Session(ctx, "nope"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := store.StartSession(ctx, "nope"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := store.EndSession(ctx, "nope", time.Now()); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := store.Participants(ctx, "nope"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestParticipantsKeepJoinOrder(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()
	_ = store.CreateSession(ctx, domain.Session{ID: "s1", Code: "AB12"})

	for _, p := range []domain.Participant{
		{ID: "p1", SessionID: "s1", Name: "Ana"},
		{ID: "p2", SessionID: "s1", Name: "Ben"},
		{ID: "p3", SessionID: "s1", Name: "Cara"},
	} {
		if err := store.AddParticipant(ctx, p); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	rows, err := store.Participants(ctx, "s1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if rows[0].Name != "Ana" || rows[1].Name != "Ben" || rows[2].Name != "Cara" {
		t.Fatalf("join order not preserved: %+v", rows)
	}
}

func TestSaveAnswerUpserts(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()
	_ = store.CreateSession(ctx, domain.Session{ID: "s1", Code: "AB12"})

	first := domain.Answer{ID: "a1", SessionID: "s1", ParticipantID: "p1", QuestionID: "q1", OptionID: "o1", IsCorrect: false}
	if err := store.SaveAnswer(ctx, first); err != nil {
		t.Fatalf("save: %v", err)
	}
	second := domain.Answer{ID: "a2", SessionID: "s1", ParticipantID: "p1", QuestionID: "q1", OptionID: "o2", IsCorrect: true}
	if err := store.SaveAnswer(ctx, second); err != nil {
		t.Fatalf("save: %v", err)
	}

	answer, ok := store.Answer("s1", "p1", "q1")
	if !ok {
		t.Fatalf("expected one record for the triple")
	}
	if answer.ID != "a1" {
		t.Fatalf("expected original record id kept on upsert, got %s", answer.ID)
	}
	if answer.OptionID != "o2" || !answer.IsCorrect {
		t.Fatalf("expected second submission to win, got %+v", answer)
	}
}

func TestIncrementScoreIsAtomicUnderConcurrency(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()
	_ = store.CreateSession(ctx, domain.Session{ID: "s1", Code: "AB12"})
	_ = store.AddParticipant(ctx, domain.Participant{ID: "p1", SessionID: "s1", Name: "Ana"})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.IncrementScore(ctx, "p1", 10); err != nil {
				t.Errorf("increment: %v", err)
			}
		}()
	}
	wg.Wait()

	rows, _ := store.Participants(ctx, "s1")
	if rows[0].Score != 500 {
		t.Fatalf("expected 500 after 50 increments, got %d", rows[0].Score)
	}
}

func TestIncrementScoreUnknownParticipant(t *testing.T) {
	store := NewSessionStore()
	if _, err := store.IncrementScore(context.Background(), "nope", 10); !errors.Is(err, domain.ErrParticipantNotFound) {
		t.Fatalf("expected participant not found, got %v", err)
	}
}
