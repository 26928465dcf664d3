// Package notify delivers operator alerts for trading events. Alerts
// are dispatched to all registered senders and filtered by event type,
// so operators receive only the categories they subscribed to.
package notify

import (
	"context"
	"fmt"
	"strings"

	"mt5-trader/internal/logger"
)

// Event types emitted by the trading loop.
const (
	EventTradeOpened  = "TRADE_OPENED"
	EventTradeClosed  = "TRADE_CLOSED"
	EventTradeFailed  = "TRADE_FAILED"
	EventSignalReject = "SIGNAL_REJECTED"
	EventConnection   = "CONNECTION"
	EventDailyReport  = "DAILY_REPORT"
)

// Sender is implemented by each notification channel.
type Sender interface {
	Send(ctx context.Context, title, message string) error
	Name() string
}

// Notifier dispatches alerts to one or more Senders. Notify forwards
// only events in the allowed set; an empty set allows everything.
type Notifier struct {
	senders []Sender
	events  map[string]bool
}

// NewNotifier creates a Notifier delivering to the given senders.
func NewNotifier(senders []Sender, events []string) *Notifier {
	allowed := make(map[string]bool, len(events))
	for _, e := range events {
		allowed[strings.ToUpper(strings.TrimSpace(e))] = true
	}
	return &Notifier{senders: senders, events: allowed}
}

// Notify sends an alert if the event type passes the configured filter.
func (n *Notifier) Notify(ctx context.Context, event, title, message string) error {
	if len(n.events) > 0 && !n.events[event] {
		logger.Debug(ctx, "Notification filtered out", "event", event)
		return nil
	}
	return n.dispatch(ctx, title, message)
}

// NotifyAll sends an alert regardless of event type.
func (n *Notifier) NotifyAll(ctx context.Context, title, message string) error {
	return n.dispatch(ctx, title, message)
}

// dispatch fans the alert out to every sender. One sender failing does
// not prevent delivery to the rest.
func (n *Notifier) dispatch(ctx context.Context, title, message string) error {
	if len(n.senders) == 0 {
		return nil
	}

	var errs []string
	for _, s := range n.senders {
		if err := s.Send(ctx, title, message); err != nil {
			logger.ErrorWithErr(ctx, "Notification sender failed", err, "sender", s.Name())
			errs = append(errs, fmt.Sprintf("%s: %v", s.Name(), err))
			continue
		}
		logger.Debug(ctx, "Notification sent", "sender", s.Name(), "title", title)
	}

	if len(errs) > 0 {
		return fmt.Errorf("notify: %d sender(s) failed: %s", len(errs), strings.Join(errs, "; "))
	}
	return nil
}
