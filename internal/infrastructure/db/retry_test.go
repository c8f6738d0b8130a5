package db

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func TestDial_RetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := Dial(context.Background(), "test", 3, zerolog.Nop(), func(context.Context) error {
		calls++
		if calls < 2 {
			return errors.New("connection refused")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Dial returned error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls)
	}
}

func TestDial_GivesUp(t *testing.T) {
	refused := errors.New("connection refused")
	calls := 0
	err := Dial(context.Background(), "test", 2, zerolog.Nop(), func(context.Context) error {
		calls++
		return refused
	})
	if !errors.Is(err, refused) {
		t.Fatalf("expected last error to be wrapped, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls)
	}
}

func TestDial_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Dial(ctx, "test", 5, zerolog.Nop(), func(context.Context) error {
		return errors.New("connection refused")
	})
	if err == nil {
		t.Fatalf("expected error on cancelled context")
	}
}
