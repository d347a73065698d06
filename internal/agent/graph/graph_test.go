package graph

import (
	"errors"
	"net/http"
	"testing"

	errx "github.com/medusa-chatbot/server/internal/core/error"
)

func TestTurnErrorPassesThroughDomainErrors(t *testing.T) {
	wrapped := errx.WrapRedis(errors.New("connection refused"))

	got := turnError(wrapped)

	var e *errx.Error
	if !errors.As(got, &e) {
		t.Fatalf("turnError(%v) = %v, want a typed error", wrapped, got)
	}
	if e.Message != errx.RedisErrorMessage {
		t.Errorf("Message = %q, want %q (a store outage is not a model failure)", e.Message, errx.RedisErrorMessage)
	}
	if e.Status != http.StatusBadGateway {
		t.Errorf("Status = %d, want %d", e.Status, http.StatusBadGateway)
	}
}

func TestTurnErrorKeepsStateCorruptionStatus(t *testing.T) {
	got := turnError(errx.StateCorruption(errors.New("bad blob")))

	var e *errx.Error
	if !errors.As(got, &e) {
		t.Fatalf("turnError = %v, want a typed error", got)
	}
	if e.Status != http.StatusInternalServerError || e.Message != errx.StateCorruptionMessage {
		t.Errorf("got (%d, %q), want (%d, %q)", e.Status, e.Message, http.StatusInternalServerError, errx.StateCorruptionMessage)
	}
}

func TestTurnErrorWrapsUntypedAsModelFailure(t *testing.T) {
	got := turnError(errors.New("graph run exploded"))

	var e *errx.Error
	if !errors.As(got, &e) {
		t.Fatalf("turnError = %v, want a typed error", got)
	}
	if e.Message != errx.ModelUnavailableMessage {
		t.Errorf("Message = %q, want %q", e.Message, errx.ModelUnavailableMessage)
	}
}
