package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz content could not be resolved.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrSessionNotFound is returned when a session id resolves to nothing.
	ErrSessionNotFound = errors.New("session not found")
	// ErrQuestionNotFound indicates a question index or ID is invalid for the quiz.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrOptionNotFound indicates a submitted option ID is not part of the question.
	ErrOptionNotFound = errors.New("option not found")
	// ErrSessionInactive is returned for commands that require an active session.
	ErrSessionInactive = errors.New("session inactive")
	// ErrInvalidSessionCode is returned when a join code resolves to no session.
	ErrInvalidSessionCode = errors.New("invalid session code")
	// ErrParticipantNotFound is returned when a score update targets an unknown participant.
	ErrParticipantNotFound = errors.New("participant not found")
)
