package news

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"mt5-trader/internal/logger"
	"mt5-trader/internal/store"
)

// Guard decides whether trading a symbol should be suspended because a
// high-impact economic event is scheduled nearby. Calendar fetches are
// cached; a failing calendar never blocks trading.
type Guard struct {
	calendar  *Calendar
	window    time.Duration
	minImpact Impact
	enabled   bool

	mu        sync.Mutex
	events    []CalendarEvent
	fetchedAt time.Time
	cacheTTL  time.Duration
}

// NewGuard builds a guard from the news section of the bot config.
func NewGuard(cfg *store.Config) *Guard {
	return &Guard{
		calendar:  NewCalendar(cfg.News.CalendarURL, 30*time.Second),
		window:    time.Duration(cfg.News.BlockWindowMinutes) * time.Minute,
		minImpact: ParseImpact(cfg.News.MinImpact),
		enabled:   cfg.News.Enabled,
		cacheTTL:  1 * time.Hour,
	}
}

// Blocked reports whether the symbol is inside the blackout window of a
// qualifying event, and names the event when it is.
func (g *Guard) Blocked(ctx context.Context, symbol string, now time.Time) (bool, string) {
	if !g.enabled {
		return false, ""
	}

	events, err := g.cachedEvents(ctx)
	if err != nil {
		// Fail open: a broken calendar must not halt the bot.
		logger.Warn(ctx, "Calendar unavailable, skipping news check", "symbol", symbol, "error", err)
		return false, ""
	}

	currencies := symbolCurrencies(symbol)
	if len(currencies) == 0 {
		return false, ""
	}

	for _, e := range events {
		if e.Impact < g.minImpact {
			continue
		}
		if !currencies[e.Currency] {
			continue
		}
		gap := e.Time.Sub(now)
		if gap < 0 {
			gap = -gap
		}
		if gap <= g.window {
			reason := fmt.Sprintf("%s %s at %s", e.Currency, e.Title, e.Time.Format("15:04 MST"))
			logger.Risk(ctx, symbol, "NEWS_BLACKOUT")
			return true, reason
		}
	}
	return false, ""
}

// cachedEvents returns the cached calendar, refreshing it when stale.
func (g *Guard) cachedEvents(ctx context.Context) ([]CalendarEvent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.events != nil && time.Since(g.fetchedAt) < g.cacheTTL {
		return g.events, nil
	}

	events, err := g.calendar.Events(ctx)
	if err != nil {
		// Serve a stale calendar over no calendar at all.
		if g.events != nil {
			return g.events, nil
		}
		return nil, err
	}

	g.events = events
	g.fetchedAt = time.Now()
	return g.events, nil
}

// symbolCurrencies extracts the currency codes traded by a symbol.
// Forex symbols are two ISO codes back to back, possibly with a broker
// suffix ("EURUSD", "GBPJPY.m"). Anything else matches nothing.
func symbolCurrencies(symbol string) map[string]bool {
	base := strings.ToUpper(symbol)
	if i := strings.IndexAny(base, ".-_"); i > 0 {
		base = base[:i]
	}
	if len(base) != 6 {
		return nil
	}
	return map[string]bool{
		base[:3]: true,
		base[3:]: true,
	}
}
