package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"quizcast/internal/domain"
)

func TestSessionEndpoints(t *testing.T) {
	env := newTestEnv(t)
	defer env.server.Close()

	// Unknown quiz is a 404.
	resp := postJSON(t, env.server, "/session/create", map[string]any{"quizId": "nope"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown quiz, got %d", resp.StatusCode)
	}

	resp = postJSON(t, env.server, "/session/create", map[string]any{"quizId": "quiz-1"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var session domain.Session
	decodeBody(t, resp, &session)
	if session.ID == "" || len(session.Code) != 4 || session.IsActive {
		t.Fatalf("unexpected created session: %+v", session)
	}

	resp = postJSON(t, env.server, "/session/"+session.ID+"/start", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on start, got %d", resp.StatusCode)
	}
	var started domain.Session
	decodeBody(t, resp, &started)
	if !started.IsActive || started.CurrentQuestion == nil || *started.CurrentQuestion != 0 {
		t.Fatalf("unexpected started session: %+v", started)
	}

	resp = postJSON(t, env.server, "/session/"+session.ID+"/end", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on end, got %d", resp.StatusCode)
	}
	var ended domain.Session
	decodeBody(t, resp, &ended)
	if ended.IsActive || ended.EndedAt == nil {
		t.Fatalf("unexpected ended session: %+v", ended)
	}

	// Ending an unknown session is a 404.
	resp = postJSON(t, env.server, "/session/missing/end", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestCreateSessionValidation(t *testing.T) {
	env := newTestEnv(t)
	defer env.server.Close()

	resp := postJSON(t, env.server, "/session/create", map[string]any{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing quizId, got %d", resp.StatusCode)
	}
}

func TestQuizEndpoints(t *testing.T) {
	env := newTestEnv(t)
	defer env.server.Close()

	resp := postJSON(t, env.server, "/quiz/create", map[string]any{
		"title":      "Capitals",
		"topic":      "geography",
		"difficulty": "easy",
		"questions": []map[string]any{
			{"prompt": "Capital of France?", "options": []string{"Paris", "Lyon", "Nice", "Lille"}, "correctIndex": 0},
		},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var quiz domain.Quiz
	decodeBody(t, resp, &quiz)
	if quiz.ID == "" || len(quiz.Questions) != 1 || len(quiz.Questions[0].Options) != 4 {
		t.Fatalf("unexpected quiz: %+v", quiz)
	}

	resp = getJSON(t, env.server, "/quiz")
	var quizzes []domain.Quiz
	decodeBody(t, resp, &quizzes)
	if len(quizzes) != 2 { // seeded quiz-1 plus the created one
		t.Fatalf("expected 2 quizzes, got %d", len(quizzes))
	}

	req, _ := http.NewRequest(http.MethodDelete, env.server.URL+"/quiz/"+quiz.ID, nil)
	deleteResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	defer deleteResp.Body.Close()
	if deleteResp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", deleteResp.StatusCode)
	}
}

func TestQuizCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	defer env.server.Close()

	// Wrong option count.
	resp := postJSON(t, env.server, "/quiz/create", map[string]any{
		"title": "Bad",
		"questions": []map[string]any{
			{"prompt": "?", "options": []string{"a", "b"}, "correctIndex": 0},
		},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for short options, got %d", resp.StatusCode)
	}
}

func TestQuizGenerateUsesMockWithoutKey(t *testing.T) {
	env := newTestEnv(t)
	defer env.server.Close()

	resp := postJSON(t, env.server, "/quiz/generate", map[string]any{
		"topic":        "space",
		"numQuestions": 3,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var quiz domain.Quiz
	decodeBody(t, resp, &quiz)
	if len(quiz.Questions) != 3 || quiz.Topic != "space" {
		t.Fatalf("unexpected generated quiz: %+v", quiz)
	}
}

func postJSON(t *testing.T, server *httptest.Server, path string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(server.URL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("post %s: %v", path, err)
	}
	return resp
}

func getJSON(t *testing.T, server *httptest.Server, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(server.URL + path)
	if err != nil {
		t.Fatalf("get %s: %v", path, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode body: %v", err)
	}
}
