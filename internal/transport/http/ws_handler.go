package http

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"quizcast/internal/app"
	"quizcast/internal/realtime"
)

// WSHandler wires websocket connections into the session use cases. Each
// connection speaks {type, payload} frames both ways; room events published
// by the hub are forwarded verbatim.
type WSHandler struct {
	sessions *app.SessionService
	hub      *realtime.Hub
	upgrader websocket.Upgrader
}

func NewWSHandler(sessions *app.SessionService, hub *realtime.Hub) *WSHandler {
	return &WSHandler{
		sessions: sessions,
		hub:      hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type hostJoinPayload struct {
	SessionID string `json:"sessionId"`
}

type participantJoinPayload struct {
	SessionCode string `json:"sessionCode"`
	Name        string `json:"name"`
}

type answerPayload struct {
	SessionID     string `json:"sessionId"`
	ParticipantID string `json:"participantId"`
	QuestionID    string `json:"questionId"`
	OptionID      string `json:"optionId"`
}

type questionIndexPayload struct {
	SessionID     string `json:"sessionId"`
	QuestionIndex int    `json:"questionIndex"`
}

type joinedPayload struct {
	ParticipantID string `json:"participantId,omitempty"`
	SessionID     string `json:"sessionId"`
}

type answerResultPayload struct {
	Correct    bool `json:"correct"`
	Awarded    int  `json:"awarded,omitempty"`
	TotalScore int  `json:"totalScore,omitempty"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// ServeWS upgrades the request and runs the connection's read loop. A
// connection belongs to at most one room at a time; a second join switches
// rooms.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage, 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	var forwarders sync.WaitGroup

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	var sub *realtime.Subscription

	joinRoom := func(sessionID string) {
		if sub != nil {
			sub.Close()
		}
		sub = h.hub.Join(sessionID)
		forwarders.Add(1)
		go func(sub *realtime.Subscription) {
			defer forwarders.Done()
			for {
				select {
				case event, ok := <-sub.C:
					if !ok {
						return
					}
					select {
					case send <- outboundMessage{Type: event.Type, Payload: event.Payload}:
					case <-closeSignals:
						return
					}
				case <-closeSignals:
					return
				}
			}
		}(sub)
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		h.dispatch(r, inbound, send, joinRoom)
	}

	close(closeSignals)
	if sub != nil {
		sub.Close()
	}
	forwarders.Wait()
	close(send)
	<-writerDone
}

func (h *WSHandler) dispatch(r *http.Request, inbound inboundMessage, send chan<- outboundMessage, joinRoom func(sessionID string)) {
	ctx := r.Context()
	switch inbound.Type {
	case "host:join":
		var payload hostJoinPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.SessionID == "" {
			send <- errorMessage("invalid host join payload")
			return
		}
		joinRoom(payload.SessionID)
		send <- outboundMessage{Type: "host:joined", Payload: joinedPayload{SessionID: payload.SessionID}}

	case "participant:join":
		var payload participantJoinPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.SessionCode == "" || payload.Name == "" {
			send <- errorMessage("invalid join payload")
			return
		}
		participant, err := h.sessions.Join(ctx, payload.SessionCode, payload.Name)
		if err != nil {
			send <- errorMessage(err.Error())
			return
		}
		joinRoom(participant.SessionID)
		send <- outboundMessage{Type: "joined", Payload: joinedPayload{
			ParticipantID: participant.ID,
			SessionID:     participant.SessionID,
		}}

	case "participant:answer":
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			send <- errorMessage("invalid answer payload")
			return
		}
		participant, correct, err := h.sessions.SubmitAnswer(ctx, app.AnswerSubmission{
			SessionID:     payload.SessionID,
			ParticipantID: payload.ParticipantID,
			QuestionID:    payload.QuestionID,
			OptionID:      payload.OptionID,
		})
		if err != nil {
			send <- errorMessage(err.Error())
			return
		}
		result := answerResultPayload{Correct: correct}
		if participant != nil {
			result.Awarded = app.AnswerAward
			result.TotalScore = participant.Score
		}
		send <- outboundMessage{Type: "answerResult", Payload: result}

	case "question:next":
		var payload questionIndexPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			send <- errorMessage("invalid question payload")
			return
		}
		if err := h.sessions.AdvanceQuestion(ctx, payload.SessionID, payload.QuestionIndex); err != nil {
			send <- errorMessage(err.Error())
		}

	case "question:reveal":
		var payload questionIndexPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			send <- errorMessage("invalid reveal payload")
			return
		}
		if err := h.sessions.RevealQuestion(ctx, payload.SessionID, payload.QuestionIndex); err != nil {
			send <- errorMessage(err.Error())
		}

	default:
		send <- errorMessage("unsupported message type")
	}
}

func errorMessage(message string) outboundMessage {
	return outboundMessage{Type: "error", Payload: errorPayload{Message: message}}
}
