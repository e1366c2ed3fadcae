package console

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"
)

func TestNewConsole_NotATTY(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	defer w.Close()

	_, err = NewConsole(r, w)
	if !errors.Is(err, ErrNoTTY) {
		t.Fatalf("expected ErrNoTTY, got %v", err)
	}
}

func TestConsoleContext_NoTTYCancelsContext(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	defer w.Close()

	saved := os.Stdin
	os.Stdin = r
	defer func() { os.Stdin = saved }()

	ctx, _, cancel := ConsoleContext(context.Background(), nil)
	defer cancel()

	select {
	case <-ctx.Done():
		if !errors.Is(context.Cause(ctx), ErrNoTTY) {
			t.Fatalf("expected ErrNoTTY cause, got %v", context.Cause(ctx))
		}
	case <-time.After(time.Second):
		t.Fatal("context was not cancelled for non-tty stdin")
	}
}
