package bus

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/amishk599/tailorin/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNext_ReturnsJobData(t *testing.T) {
	b := New(1, discardLogger())
	b.Send(model.NewJobDataMessage("req-1", model.JobPosting{Company: "Acme", Role: "SRE", JobDescription: "run things"}))

	got, err := b.Listener().Next(context.Background())
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if got.Company != "Acme" || got.Role != "SRE" || got.JobDescription != "run things" {
		t.Errorf("got %+v", got)
	}
}

func TestNext_IgnoresOtherMessageTypes(t *testing.T) {
	b := New(4, discardLogger())
	b.Send(model.Message{Type: "ping"})
	b.Send(model.Message{Type: "tab_closed", Company: "wrong"})
	b.Send(model.NewJobDataMessage("req-2", model.JobPosting{Company: "Right"}))

	got, err := b.Listener().Next(context.Background())
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if got.Company != "Right" {
		t.Errorf("Company = %q, want Right", got.Company)
	}
}

func TestSend_DropsWhenFull(t *testing.T) {
	b := New(1, discardLogger())
	if !b.Send(model.NewJobDataMessage("a", model.JobPosting{Company: "first"})) {
		t.Fatal("first send should succeed")
	}

	done := make(chan bool, 1)
	go func() { done <- b.Send(model.NewJobDataMessage("b", model.JobPosting{Company: "second"})) }()

	select {
	case ok := <-done:
		if ok {
			t.Error("second send should report a drop")
		}
	case <-time.After(time.Second):
		t.Fatal("Send blocked on a full bus")
	}

	got, _ := b.Listener().Next(context.Background())
	if got.Company != "first" {
		t.Errorf("Company = %q, want first", got.Company)
	}
}

func TestNext_WaitsUntilContextDone(t *testing.T) {
	b := New(1, discardLogger())
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := b.Listener().Next(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
}

func TestEmptyPostingStillDelivered(t *testing.T) {
	b := New(1, discardLogger())
	b.Send(model.NewJobDataMessage("req", model.JobPosting{}))

	got, err := b.Listener().Next(context.Background())
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if !got.IsEmpty() {
		t.Errorf("expected empty posting, got %+v", got)
	}
}
