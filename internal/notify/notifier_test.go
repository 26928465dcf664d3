package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeSender struct {
	name  string
	err   error
	calls int
	last  string
}

func (f *fakeSender) Send(ctx context.Context, title, message string) error {
	f.calls++
	f.last = title
	return f.err
}

func (f *fakeSender) Name() string { return f.name }

func TestNotifyFiltersEvents(t *testing.T) {
	s := &fakeSender{name: "test"}
	n := NewNotifier([]Sender{s}, []string{EventTradeOpened, EventTradeFailed})

	if err := n.Notify(context.Background(), EventTradeOpened, "opened", "x"); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if err := n.Notify(context.Background(), EventSignalReject, "rejected", "x"); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}

	if s.calls != 1 {
		t.Errorf("sends = %d, want 1 (reject filtered)", s.calls)
	}
	if s.last != "opened" {
		t.Errorf("last title = %q, want %q", s.last, "opened")
	}
}

func TestNotifyEmptyFilterAllowsAll(t *testing.T) {
	s := &fakeSender{name: "test"}
	n := NewNotifier([]Sender{s}, nil)

	n.Notify(context.Background(), EventTradeOpened, "a", "x")
	n.Notify(context.Background(), EventDailyReport, "b", "x")

	if s.calls != 2 {
		t.Errorf("sends = %d, want 2 with empty filter", s.calls)
	}
}

func TestDispatchContinuesPastFailedSender(t *testing.T) {
	bad := &fakeSender{name: "bad", err: errors.New("api down")}
	good := &fakeSender{name: "good"}
	n := NewNotifier([]Sender{bad, good}, nil)

	err := n.NotifyAll(context.Background(), "title", "message")
	if err == nil {
		t.Fatal("NotifyAll() = nil, want combined error")
	}
	if !strings.Contains(err.Error(), "bad") {
		t.Errorf("error = %v, want failing sender named", err)
	}
	if good.calls != 1 {
		t.Errorf("good sender calls = %d, want 1 despite bad sender failing", good.calls)
	}
}

func TestNotifyNoSenders(t *testing.T) {
	n := NewNotifier(nil, nil)
	if err := n.NotifyAll(context.Background(), "title", "message"); err != nil {
		t.Errorf("NotifyAll() with no senders error = %v, want nil", err)
	}
}
