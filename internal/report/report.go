// Package report produces end-of-day CSV summaries from the trade journal.
package report

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"
)

// journalLine matches the JSON format written by the tradelog package.
type journalLine struct {
	Time       string  `json:"time"`
	Symbol     string  `json:"symbol"`
	Direction  string  `json:"direction"`
	Volume     float64 `json:"volume"`
	Price      float64 `json:"price"`
	Outcome    string  `json:"outcome"`
	PositionID string  `json:"position_id"`
	Message    string  `json:"message"`
	Confidence float64 `json:"confidence"`
}

// aggRow accumulates per-symbol statistics for one trading day.
type aggRow struct {
	Symbol      string
	BuyVolume   float64
	BuyValue    float64
	SellVolume  float64
	SellValue   float64
	Filled      int
	Rejected    int
	Failed      int
	RealizedPnL float64
}

func logDir() string {
	if v := os.Getenv("TRADER_LOG_DIR"); v != "" {
		return v
	}
	return "logs"
}

func journalFile(t time.Time) string {
	return filepath.Join(logDir(), t.Format("2006-01-02")+".txt")
}

func reportCSVPath(t time.Time) string {
	return filepath.Join(logDir(), "report", t.Format("2006-01-02")+".csv")
}

// sessionClose is when the forex trading day rolls over (17:00 New York,
// fixed here as 22:00 UTC).
func sessionClose(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 22, 0, 0, 0, time.UTC)
}

// SummarizeDay aggregates the day's journal into a CSV report and
// returns its path. No journal for the day means no report and no error.
func SummarizeDay(t time.Time) (string, error) {
	inPath := journalFile(t)
	if _, err := os.Stat(inPath); err != nil {
		return "", nil
	}
	f, err := os.Open(inPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	aggs := map[string]*aggRow{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var jl journalLine
		if err := json.Unmarshal(sc.Bytes(), &jl); err != nil {
			continue
		}
		row := aggs[jl.Symbol]
		if row == nil {
			row = &aggRow{Symbol: jl.Symbol}
			aggs[jl.Symbol] = row
		}
		switch jl.Outcome {
		case "SUCCESS":
			row.Filled++
			if jl.Direction == "BUY" {
				row.BuyVolume += jl.Volume
				row.BuyValue += jl.Volume * jl.Price
			}
			if jl.Direction == "SELL" {
				row.SellVolume += jl.Volume
				row.SellValue += jl.Volume * jl.Price
			}
		case "FAILED":
			row.Failed++
		default:
			row.Rejected++
		}
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	if len(aggs) == 0 {
		return "", nil
	}

	keys := make([]string, 0, len(aggs))
	for k := range aggs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	outPath := reportCSVPath(t)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", err
	}
	out, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	w := csv.NewWriter(out)
	defer w.Flush()

	headers := []string{"symbol", "buy_lots", "buy_avg", "sell_lots", "sell_avg", "realized_pnl", "filled", "rejected", "failed"}
	if err := w.Write(headers); err != nil {
		return "", err
	}

	var totalPnL float64
	var totalFilled, totalRejected, totalFailed int
	for _, k := range keys {
		r := aggs[k]
		var buyAvg, sellAvg float64
		if r.BuyVolume > 0 {
			buyAvg = r.BuyValue / r.BuyVolume
		}
		if r.SellVolume > 0 {
			sellAvg = r.SellValue / r.SellVolume
		}
		matched := r.BuyVolume
		if r.SellVolume < matched {
			matched = r.SellVolume
		}
		r.RealizedPnL = matched * (sellAvg - buyAvg)

		rec := []string{
			r.Symbol,
			fmt.Sprintf("%.2f", r.BuyVolume),
			fmt.Sprintf("%.5f", buyAvg),
			fmt.Sprintf("%.2f", r.SellVolume),
			fmt.Sprintf("%.5f", sellAvg),
			fmt.Sprintf("%.5f", r.RealizedPnL),
			strconv.Itoa(r.Filled),
			strconv.Itoa(r.Rejected),
			strconv.Itoa(r.Failed),
		}
		if err := w.Write(rec); err != nil {
			return "", err
		}
		totalPnL += r.RealizedPnL
		totalFilled += r.Filled
		totalRejected += r.Rejected
		totalFailed += r.Failed
	}
	_ = w.Write([]string{"TOTAL", "", "", "", "", fmt.Sprintf("%.5f", totalPnL),
		strconv.Itoa(totalFilled), strconv.Itoa(totalRejected), strconv.Itoa(totalFailed)})

	return outPath, nil
}

// SummarizeToday summarizes the current UTC trading day.
func SummarizeToday() (string, error) {
	return SummarizeDay(time.Now().UTC())
}

// ShouldRunNow reports whether today's report is due: the session has
// closed and no report file exists yet.
func ShouldRunNow() (bool, string) {
	now := time.Now().UTC()
	outPath := reportCSVPath(now)
	if now.After(sessionClose(now)) {
		if _, err := os.Stat(outPath); errors.Is(err, os.ErrNotExist) {
			return true, outPath
		}
	}
	return false, outPath
}
