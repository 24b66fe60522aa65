package event

import (
	"encoding/json"
	"testing"
	"time"
)

func TestEncodeEnvelope(t *testing.T) {
	at := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	body, err := Encode(QuizTerminated, map[string]string{"quizId": "q1"}, "quiz-platform", at)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var decoded struct {
		Type      string            `json:"type"`
		Payload   map[string]string `json:"payload"`
		Timestamp time.Time         `json:"timestamp"`
		Service   string            `json:"service"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Type != QuizTerminated || decoded.Payload["quizId"] != "q1" || decoded.Service != "quiz-platform" {
		t.Errorf("Unexpected envelope %+v", decoded)
	}
	if !decoded.Timestamp.Equal(at) {
		t.Errorf("Expected timestamp %v, got %v", at, decoded.Timestamp)
	}
}

func TestEncodeRejectsUnmarshalablePayload(t *testing.T) {
	if _, err := Encode(QuizCreated, make(chan int), "svc", time.Now()); err == nil {
		t.Error("Expected encoding error for channel payload")
	}
}
