package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"
)

func writeJournal(t *testing.T, dir string, day time.Time, lines []string) {
	t.Helper()
	path := filepath.Join(dir, day.Format("2006-01-02")+".txt")
	var data []byte
	for _, l := range lines {
		data = append(data, l...)
		data = append(data, '\n')
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestSummarizeDay(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TRADER_LOG_DIR", dir)
	day := time.Date(2025, 6, 6, 0, 0, 0, 0, time.UTC)

	writeJournal(t, dir, day, []string{
		`{"time":"2025-06-06 08:00:00","symbol":"EURUSD","direction":"BUY","volume":0.10,"price":1.0850,"outcome":"SUCCESS","position_id":"1"}`,
		`{"time":"2025-06-06 12:00:00","symbol":"EURUSD","direction":"SELL","volume":0.10,"price":1.0900,"outcome":"SUCCESS","position_id":"1"}`,
		`{"time":"2025-06-06 13:00:00","symbol":"GBPUSD","direction":"BUY","volume":0.20,"price":1.2700,"outcome":"SUCCESS","position_id":"2"}`,
		`{"time":"2025-06-06 14:00:00","symbol":"GBPUSD","direction":"SELL","outcome":"REJECTED","message":"spread"}`,
		`{"time":"2025-06-06 15:00:00","symbol":"USDJPY","direction":"BUY","outcome":"FAILED","message":"bridge down"}`,
		`not json, skipped`,
	})

	path, err := SummarizeDay(day)
	if err != nil {
		t.Fatalf("SummarizeDay() error = %v", err)
	}
	if path == "" {
		t.Fatal("SummarizeDay() returned empty path, want CSV written")
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening report: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading CSV: %v", err)
	}

	// Header, three symbols, TOTAL.
	if len(records) != 5 {
		t.Fatalf("CSV rows = %d, want 5", len(records))
	}
	if records[0][0] != "symbol" {
		t.Errorf("header = %v", records[0])
	}

	// Rows are sorted by symbol: EURUSD, GBPUSD, USDJPY.
	eur := records[1]
	if eur[0] != "EURUSD" {
		t.Fatalf("first symbol = %q, want EURUSD", eur[0])
	}
	pnl, err := strconv.ParseFloat(eur[5], 64)
	if err != nil {
		t.Fatalf("parsing pnl %q: %v", eur[5], err)
	}
	// 0.10 matched lots over a 0.0050 move.
	if pnl < 0.00049 || pnl > 0.00051 {
		t.Errorf("EURUSD realized pnl = %v, want ~0.0005", pnl)
	}

	jpy := records[3]
	if jpy[0] != "USDJPY" {
		t.Fatalf("third symbol = %q, want USDJPY", jpy[0])
	}
	if jpy[8] != "1" {
		t.Errorf("USDJPY failed count = %q, want 1", jpy[8])
	}

	if records[4][0] != "TOTAL" {
		t.Errorf("last row = %v, want TOTAL", records[4])
	}
}

func TestSummarizeDayNoJournal(t *testing.T) {
	t.Setenv("TRADER_LOG_DIR", t.TempDir())

	path, err := SummarizeDay(time.Date(2025, 6, 6, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("SummarizeDay() error = %v", err)
	}
	if path != "" {
		t.Errorf("path = %q, want empty when there is no journal", path)
	}
}

func TestSummarizeDayOnlyRejections(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TRADER_LOG_DIR", dir)
	day := time.Date(2025, 6, 6, 0, 0, 0, 0, time.UTC)

	writeJournal(t, dir, day, []string{
		`{"symbol":"EURUSD","direction":"BUY","outcome":"INVALID_SIGNAL","message":"expired"}`,
	})

	path, err := SummarizeDay(day)
	if err != nil {
		t.Fatalf("SummarizeDay() error = %v", err)
	}
	if path == "" {
		t.Fatal("want a report even when nothing filled")
	}

	f, _ := os.Open(path)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading CSV: %v", err)
	}
	if records[1][7] != "1" {
		t.Errorf("rejected count = %q, want 1", records[1][7])
	}
}
