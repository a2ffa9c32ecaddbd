package realtime

import (
	"testing"
	"time"

	"quizcast/internal/domain"
)

func TestPublishReachesOnlyRoomMembers(t *testing.T) {
	hub := NewHub()
	inRoom := hub.Join("s1")
	defer inRoom.Close()
	other := hub.Join("s2")
	defer other.Close()

	hub.BroadcastReveal("s1", 2)

	select {
	case event := <-inRoom.C:
		if event.Type != EventReveal {
			t.Fatalf("expected reveal, got %s", event.Type)
		}
	case <-time.After(time.Second):
		t.Fatalf("room member did not receive event")
	}

	select {
	case event := <-other.C:
		t.Fatalf("other room received %v", event)
	default:
	}
}

func TestCloseLeavesRoom(t *testing.T) {
	hub := NewHub()
	sub := hub.Join("s1")
	if hub.RoomSize("s1") != 1 {
		t.Fatalf("expected room of 1, got %d", hub.RoomSize("s1"))
	}

	sub.Close()
	sub.Close() // safe to repeat
	if hub.RoomSize("s1") != 0 {
		t.Fatalf("expected empty room after close, got %d", hub.RoomSize("s1"))
	}

	// Publishing to a drained room is a no-op.
	hub.BroadcastSessionEnd("s1")
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	hub := NewHub()
	sub := hub.Join("s1")
	defer sub.Close()

	// Overflow the buffer; publish must not block and the newest events win.
	for i := 0; i < 64; i++ {
		hub.BroadcastReveal("s1", i)
	}

	done := make(chan struct{})
	go func() {
		hub.BroadcastSessionEnd("s1")
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("publish blocked on a slow subscriber")
	}
}

func TestBroadcastQuestionPayloadShape(t *testing.T) {
	hub := NewHub()
	sub := hub.Join("s1")
	defer sub.Close()

	hub.BroadcastQuestion("s1", domain.QuestionView{
		ID:     "q1",
		Prompt: "pick",
		Options: []domain.Option{
			{ID: "o1", Text: "a"},
		},
	})

	event := <-sub.C
	if event.Type != EventQuestion {
		t.Fatalf("expected %s, got %s", EventQuestion, event.Type)
	}
	payload, ok := event.Payload.(questionPayload)
	if !ok {
		t.Fatalf("unexpected payload type %T", event.Payload)
	}
	if payload.Question.ID != "q1" || len(payload.Question.Options) != 1 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestSessionEndHasNoPayload(t *testing.T) {
	hub := NewHub()
	sub := hub.Join("s1")
	defer sub.Close()

	hub.BroadcastSessionEnd("s1")
	event := <-sub.C
	if event.Type != EventSessionEnd || event.Payload != nil {
		t.Fatalf("expected bare end signal, got %+v", event)
	}
}
