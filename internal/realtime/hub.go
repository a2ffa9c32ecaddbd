// Package realtime fans session events out to every connection currently in
// a session's room. Rooms are process-local mutable state keyed by session
// id; membership lives and dies with the connection, never with the session,
// and nothing here is persisted or replayed. A connection that joins after an
// event was published simply never sees it.
package realtime

import (
	"sync"

	"quizcast/internal/domain"
)

// Event names mirror the websocket wire protocol.
const (
	EventQuestion        = "question:next"
	EventReveal          = "question:reveal"
	EventLeaderboard     = "leaderboard:update"
	EventSessionComplete = "session:complete"
	EventSessionEnd      = "session:end"
)

// Event is one broadcast frame. Payload is nil for bare signals.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type questionPayload struct {
	Question domain.QuestionView `json:"question"`
}

type revealPayload struct {
	CorrectIndex int `json:"correctIndex"`
}

// Hub owns the room registry.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[chan Event]struct{})}
}

// Subscription is one connection's membership in a room.
type Subscription struct {
	C         <-chan Event
	hub       *Hub
	sessionID string
	ch        chan Event
	once      sync.Once
}

// Join admits a connection to the session's room and returns its event
// channel. The caller must Close the subscription when the connection goes
// away, or the room leaks the channel.
func (h *Hub) Join(sessionID string) *Subscription {
	ch := make(chan Event, 16)

	h.mu.Lock()
	room, ok := h.rooms[sessionID]
	if !ok {
		room = make(map[chan Event]struct{})
		h.rooms[sessionID] = room
	}
	room[ch] = struct{}{}
	h.mu.Unlock()

	return &Subscription{C: ch, hub: h, sessionID: sessionID, ch: ch}
}

// Close removes the subscription from its room. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		if room, ok := s.hub.rooms[s.sessionID]; ok {
			delete(room, s.ch)
			if len(room) == 0 {
				delete(s.hub.rooms, s.sessionID)
			}
		}
		s.hub.mu.Unlock()
		close(s.ch)
	})
}

// RoomSize reports the current number of connections in a session's room.
func (h *Hub) RoomSize(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[sessionID])
}

// publish delivers an event to every member of the room. Sends never block:
// when a subscriber's buffer is full the oldest queued event is dropped to
// make space, so a slow reader lags instead of stalling the whole room.
func (h *Hub) publish(sessionID string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.rooms[sessionID] {
		select {
		case ch <- event:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- event:
			default:
			}
		}
	}
}

// BroadcastQuestion implements app.Broadcaster.
func (h *Hub) BroadcastQuestion(sessionID string, question domain.QuestionView) {
	h.publish(sessionID, Event{Type: EventQuestion, Payload: questionPayload{Question: question}})
}

// BroadcastReveal implements app.Broadcaster.
func (h *Hub) BroadcastReveal(sessionID string, correctIndex int) {
	h.publish(sessionID, Event{Type: EventReveal, Payload: revealPayload{CorrectIndex: correctIndex}})
}

// BroadcastLeaderboard implements app.Broadcaster.
func (h *Hub) BroadcastLeaderboard(sessionID string, entries []domain.LeaderboardEntry) {
	h.publish(sessionID, Event{Type: EventLeaderboard, Payload: entries})
}

// BroadcastSessionComplete implements app.Broadcaster.
func (h *Hub) BroadcastSessionComplete(sessionID string, summary domain.SessionSummary) {
	h.publish(sessionID, Event{Type: EventSessionComplete, Payload: summary})
}

// BroadcastSessionEnd implements app.Broadcaster.
func (h *Hub) BroadcastSessionEnd(sessionID string) {
	h.publish(sessionID, Event{Type: EventSessionEnd})
}
