package news

import (
	"context"
	"testing"
	"time"

	"mt5-trader/internal/store"
)

func testGuardConfig() *store.Config {
	cfg := &store.Config{}
	cfg.News.Enabled = true
	cfg.News.CalendarURL = "https://example.test/feed.json"
	cfg.News.BlockWindowMinutes = 30
	cfg.News.MinImpact = "HIGH"
	return cfg
}

// primedGuard returns a guard whose calendar cache is pre-filled, so no
// network fetch ever happens in tests.
func primedGuard(cfg *store.Config, events []CalendarEvent) *Guard {
	g := NewGuard(cfg)
	g.events = events
	g.fetchedAt = time.Now()
	return g
}

func TestBlockedInsideWindow(t *testing.T) {
	now := time.Date(2025, 6, 6, 12, 0, 0, 0, time.UTC)
	g := primedGuard(testGuardConfig(), []CalendarEvent{
		{Title: "Non-Farm Payrolls", Currency: "USD", Time: now.Add(20 * time.Minute), Impact: ImpactHigh},
	})

	blocked, reason := g.Blocked(context.Background(), "EURUSD", now)
	if !blocked {
		t.Fatal("Blocked() = false, want true 20 minutes before a high-impact USD event")
	}
	if reason == "" {
		t.Error("reason is empty, want the event named")
	}
}

func TestBlockedAfterEventInsideWindow(t *testing.T) {
	now := time.Date(2025, 6, 6, 12, 0, 0, 0, time.UTC)
	g := primedGuard(testGuardConfig(), []CalendarEvent{
		{Title: "Rate Decision", Currency: "EUR", Time: now.Add(-15 * time.Minute), Impact: ImpactHigh},
	})

	if blocked, _ := g.Blocked(context.Background(), "EURUSD", now); !blocked {
		t.Error("Blocked() = false, want true 15 minutes after a high-impact EUR event")
	}
}

func TestNotBlockedOutsideWindow(t *testing.T) {
	now := time.Date(2025, 6, 6, 12, 0, 0, 0, time.UTC)
	g := primedGuard(testGuardConfig(), []CalendarEvent{
		{Title: "Non-Farm Payrolls", Currency: "USD", Time: now.Add(2 * time.Hour), Impact: ImpactHigh},
	})

	if blocked, _ := g.Blocked(context.Background(), "EURUSD", now); blocked {
		t.Error("Blocked() = true, want false two hours before the event")
	}
}

func TestNotBlockedForUnrelatedCurrency(t *testing.T) {
	now := time.Date(2025, 6, 6, 12, 0, 0, 0, time.UTC)
	g := primedGuard(testGuardConfig(), []CalendarEvent{
		{Title: "Employment Change", Currency: "AUD", Time: now.Add(10 * time.Minute), Impact: ImpactHigh},
	})

	if blocked, _ := g.Blocked(context.Background(), "EURUSD", now); blocked {
		t.Error("Blocked() = true for an AUD event against EURUSD, want false")
	}
}

func TestImpactThresholdFiltersLowerEvents(t *testing.T) {
	now := time.Date(2025, 6, 6, 12, 0, 0, 0, time.UTC)
	g := primedGuard(testGuardConfig(), []CalendarEvent{
		{Title: "Minor Release", Currency: "USD", Time: now.Add(5 * time.Minute), Impact: ImpactMedium},
	})

	if blocked, _ := g.Blocked(context.Background(), "EURUSD", now); blocked {
		t.Error("Blocked() = true for a medium event under a HIGH threshold, want false")
	}

	cfg := testGuardConfig()
	cfg.News.MinImpact = "MEDIUM"
	g = primedGuard(cfg, []CalendarEvent{
		{Title: "Minor Release", Currency: "USD", Time: now.Add(5 * time.Minute), Impact: ImpactMedium},
	})
	if blocked, _ := g.Blocked(context.Background(), "EURUSD", now); !blocked {
		t.Error("Blocked() = false for a medium event under a MEDIUM threshold, want true")
	}
}

func TestDisabledGuardNeverBlocks(t *testing.T) {
	cfg := testGuardConfig()
	cfg.News.Enabled = false
	g := primedGuard(cfg, []CalendarEvent{
		{Title: "Non-Farm Payrolls", Currency: "USD", Time: time.Now().UTC(), Impact: ImpactHigh},
	})

	if blocked, _ := g.Blocked(context.Background(), "EURUSD", time.Now().UTC()); blocked {
		t.Error("Blocked() = true with guard disabled, want false")
	}
}

func TestFailsOpenWhenCalendarUnavailable(t *testing.T) {
	cfg := testGuardConfig()
	cfg.News.CalendarURL = "http://127.0.0.1:1/feed.json"
	g := NewGuard(cfg)
	g.calendar.timeout = 100 * time.Millisecond

	if blocked, _ := g.Blocked(context.Background(), "EURUSD", time.Now().UTC()); blocked {
		t.Error("Blocked() = true with an unreachable calendar, want fail open")
	}
}

func TestSymbolCurrencies(t *testing.T) {
	tests := []struct {
		symbol string
		want   []string
	}{
		{"EURUSD", []string{"EUR", "USD"}},
		{"gbpjpy", []string{"GBP", "JPY"}},
		{"EURUSD.m", []string{"EUR", "USD"}},
		{"AUDNZD-pro", []string{"AUD", "NZD"}},
		{"XAU", nil},
		{"", nil},
	}

	for _, tt := range tests {
		got := symbolCurrencies(tt.symbol)
		if tt.want == nil {
			if got != nil {
				t.Errorf("symbolCurrencies(%q) = %v, want nil", tt.symbol, got)
			}
			continue
		}
		for _, c := range tt.want {
			if !got[c] {
				t.Errorf("symbolCurrencies(%q) missing %s", tt.symbol, c)
			}
		}
	}
}

func TestParseImpact(t *testing.T) {
	tests := []struct {
		in   string
		want Impact
	}{
		{"High", ImpactHigh},
		{"HIGH", ImpactHigh},
		{"Medium", ImpactMedium},
		{"low", ImpactLow},
		{"Holiday", ImpactNone},
		{"", ImpactNone},
	}
	for _, tt := range tests {
		if got := ParseImpact(tt.in); got != tt.want {
			t.Errorf("ParseImpact(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
