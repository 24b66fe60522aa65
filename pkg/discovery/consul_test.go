package discovery

import (
	"testing"

	"quiz-platform/internal/config"
)

func TestRegistration(t *testing.T) {
	server := config.ServerConfig{
		Port:           "5000",
		ServiceName:    "quiz-platform",
		ServiceAddress: "quiz.internal",
		ServiceID:      "quiz-platform-1",
	}
	reg, err := Registration(server)
	if err != nil {
		t.Fatalf("registration: %v", err)
	}
	if reg.ID != "quiz-platform-1-http" || reg.Port != 5000 || reg.Name != "quiz-platform" {
		t.Errorf("Unexpected registration %+v", reg)
	}
	if reg.Check == nil || reg.Check.HTTP != "http://quiz.internal:5000/health" {
		t.Errorf("Unexpected health check %+v", reg.Check)
	}
}

func TestRegistrationRejectsBadPort(t *testing.T) {
	if _, err := Registration(config.ServerConfig{Port: "http"}); err == nil {
		t.Error("Expected error for non-numeric port")
	}
}
