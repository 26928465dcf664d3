// Package news blocks trading around high-impact economic calendar events.
package news

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"mt5-trader/internal/logger"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// CalendarEvent is a single scheduled economic release.
type CalendarEvent struct {
	Title    string
	Currency string
	Time     time.Time
	Impact   Impact
}

// Impact ranks how much an event is expected to move the market.
type Impact int

const (
	ImpactNone Impact = iota
	ImpactLow
	ImpactMedium
	ImpactHigh
)

// ParseImpact maps the calendar feed's impact labels onto our ranking.
func ParseImpact(s string) Impact {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "HIGH", "RED":
		return ImpactHigh
	case "MEDIUM", "MED", "ORANGE":
		return ImpactMedium
	case "LOW", "YELLOW":
		return ImpactLow
	default:
		return ImpactNone
	}
}

func (i Impact) String() string {
	switch i {
	case ImpactHigh:
		return "HIGH"
	case ImpactMedium:
		return "MEDIUM"
	case ImpactLow:
		return "LOW"
	default:
		return "NONE"
	}
}

// Calendar fetches the weekly economic calendar feed.
type Calendar struct {
	feedURL string
	timeout time.Duration
}

// NewCalendar creates a calendar fetcher for the given feed URL.
func NewCalendar(feedURL string, timeout time.Duration) *Calendar {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Calendar{feedURL: feedURL, timeout: timeout}
}

// feedEvent matches the ff_calendar JSON feed schema.
type feedEvent struct {
	Title   string `json:"title"`
	Country string `json:"country"`
	Date    string `json:"date"`
	Impact  string `json:"impact"`
}

// Events fetches this week's calendar. The JSON feed is the primary
// source; if it fails we fall back to scraping the calendar page itself.
func (c *Calendar) Events(ctx context.Context) ([]CalendarEvent, error) {
	events, err := c.fetchFeed(ctx)
	if err == nil {
		return events, nil
	}
	logger.Warn(ctx, "Calendar feed failed, trying HTML fallback", "error", err)

	fallback, fbErr := c.scrapeCalendarPage(ctx)
	if fbErr != nil {
		return nil, fmt.Errorf("news: feed: %w (fallback: %v)", err, fbErr)
	}
	return fallback, nil
}

// fetchFeed downloads and parses the JSON calendar feed.
func (c *Calendar) fetchFeed(ctx context.Context) ([]CalendarEvent, error) {
	var (
		raw     []feedEvent
		decErr  error
		visited bool
	)

	col := colly.NewCollector(
		colly.AllowedDomains(getDomain(c.feedURL)),
		colly.MaxDepth(1),
	)
	col.SetRequestTimeout(c.timeout)

	col.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", userAgent)
		r.Headers.Set("Accept", "application/json")
	})

	col.OnResponse(func(r *colly.Response) {
		visited = true
		decErr = json.Unmarshal(r.Body, &raw)
	})

	if err := col.Visit(c.feedURL); err != nil {
		return nil, fmt.Errorf("visit %s: %w", c.feedURL, err)
	}
	col.Wait()

	if !visited {
		return nil, fmt.Errorf("no response from %s", c.feedURL)
	}
	if decErr != nil {
		return nil, fmt.Errorf("decode feed: %w", decErr)
	}

	events := make([]CalendarEvent, 0, len(raw))
	for _, e := range raw {
		t, err := time.Parse(time.RFC3339, e.Date)
		if err != nil {
			continue
		}
		events = append(events, CalendarEvent{
			Title:    e.Title,
			Currency: strings.ToUpper(e.Country),
			Time:     t.UTC(),
			Impact:   ParseImpact(e.Impact),
		})
	}

	logger.Info(ctx, "Calendar feed fetched", "events", len(events))
	return events, nil
}

// scrapeCalendarPage parses the human-facing calendar page. Rows only
// carry day and time of day, so event times are resolved against the
// current week.
func (c *Calendar) scrapeCalendarPage(ctx context.Context) ([]CalendarEvent, error) {
	pageURL := "https://" + getDomain(c.feedURL) + "/calendar"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	client := &http.Client{Timeout: c.timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("calendar page returned %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse calendar page: %w", err)
	}

	events := []CalendarEvent{}
	day := time.Now().UTC().Truncate(24 * time.Hour)

	doc.Find("tr.calendar__row").Each(func(_ int, row *goquery.Selection) {
		if dateText := strings.TrimSpace(row.Find("td.calendar__date").Text()); dateText != "" {
			if parsed, err := time.Parse("Mon Jan 2", dateText); err == nil {
				day = time.Date(time.Now().UTC().Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
			}
		}

		currency := strings.TrimSpace(row.Find("td.calendar__currency").Text())
		title := strings.TrimSpace(row.Find("td.calendar__event").Text())
		if currency == "" || title == "" {
			return
		}

		impact := ImpactNone
		row.Find("td.calendar__impact span").Each(func(_ int, s *goquery.Selection) {
			if cls, ok := s.Attr("class"); ok {
				switch {
				case strings.Contains(cls, "red"):
					impact = ImpactHigh
				case strings.Contains(cls, "ora"):
					impact = ImpactMedium
				case strings.Contains(cls, "yel"):
					impact = ImpactLow
				}
			}
		})

		eventTime := day
		if timeText := strings.TrimSpace(row.Find("td.calendar__time").Text()); timeText != "" {
			if parsed, err := time.Parse("3:04pm", strings.ToLower(timeText)); err == nil {
				eventTime = day.Add(time.Duration(parsed.Hour())*time.Hour + time.Duration(parsed.Minute())*time.Minute)
			}
		}

		events = append(events, CalendarEvent{
			Title:    title,
			Currency: strings.ToUpper(currency),
			Time:     eventTime,
			Impact:   impact,
		})
	})

	logger.Info(ctx, "Calendar page scraped", "events", len(events))
	return events, nil
}

// getDomain extracts the hostname from a URL.
func getDomain(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
