package http

import (
	"net/http"

	"quizcast/internal/app"
	"quizcast/internal/realtime"
)

// NewMux mounts the REST surface and the websocket gateway.
func NewMux(sessions *app.SessionService, quizzes *app.QuizService, hub *realtime.Hub) *http.ServeMux {
	sessionHandler := NewSessionHandler(sessions)
	quizHandler := NewQuizHandler(quizzes)
	wsHandler := NewWSHandler(sessions, hub)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("POST /quiz/generate", quizHandler.Generate)
	mux.HandleFunc("POST /quiz/create", quizHandler.Create)
	mux.HandleFunc("GET /quiz", quizHandler.List)
	mux.HandleFunc("DELETE /quiz/{id}", quizHandler.Delete)

	mux.HandleFunc("POST /session/create", sessionHandler.Create)
	mux.HandleFunc("POST /session/{id}/start", sessionHandler.Start)
	mux.HandleFunc("POST /session/{id}/end", sessionHandler.End)

	mux.HandleFunc("/ws", wsHandler.ServeWS)
	return mux
}
