// SPDX-License-Identifier: AGPL-3.0-only
package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/jolks/mcp-agent/internal/model"
)

func newTestStore(t *testing.T) (*SQLiteStore, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "history.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, dbPath
}

func sampleExchange(query string, start time.Time) *model.Exchange {
	return &model.Exchange{
		Query:      query,
		Answer:     "answer for " + query,
		Provider:   "gemini",
		Model:      "gemini-2.0-flash",
		Iterations: 2,
		StartTime:  start,
		EndTime:    start.Add(3 * time.Second),
		Duration:   "3s",
	}
}

func TestSaveAndGetExchange(t *testing.T) {
	s, _ := newTestStore(t)

	start := time.Now().UTC().Truncate(time.Millisecond)
	if err := s.SaveExchange(sampleExchange("weather in CA", start)); err != nil {
		t.Fatalf("SaveExchange failed: %v", err)
	}

	got, err := s.GetExchanges(10)
	if err != nil {
		t.Fatalf("GetExchanges failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Expected 1 exchange, got %d", len(got))
	}
	ex := got[0]
	if ex.Query != "weather in CA" {
		t.Errorf("Expected query round trip, got %q", ex.Query)
	}
	if ex.Answer != "answer for weather in CA" {
		t.Errorf("Expected answer round trip, got %q", ex.Answer)
	}
	if ex.Provider != "gemini" || ex.Model != "gemini-2.0-flash" {
		t.Errorf("Expected provider/model round trip, got %s/%s", ex.Provider, ex.Model)
	}
	if ex.Iterations != 2 {
		t.Errorf("Expected 2 iterations, got %d", ex.Iterations)
	}
	if !ex.StartTime.Equal(start) {
		t.Errorf("Expected start time %v, got %v", start, ex.StartTime)
	}
}

func TestGetExchanges_MostRecentFirst(t *testing.T) {
	s, _ := newTestStore(t)

	base := time.Now().UTC()
	for i, q := range []string{"first", "second", "third"} {
		ex := sampleExchange(q, base.Add(time.Duration(i)*time.Minute))
		if err := s.SaveExchange(ex); err != nil {
			t.Fatalf("SaveExchange failed: %v", err)
		}
	}

	got, err := s.GetExchanges(10)
	if err != nil {
		t.Fatalf("GetExchanges failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 exchanges, got %d", len(got))
	}
	wantOrder := []string{"third", "second", "first"}
	for i, q := range wantOrder {
		if got[i].Query != q {
			t.Errorf("Position %d: expected %q, got %q", i, q, got[i].Query)
		}
	}
}

func TestGetExchanges_LimitClamped(t *testing.T) {
	s, _ := newTestStore(t)

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		if err := s.SaveExchange(sampleExchange("q", base.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatalf("SaveExchange failed: %v", err)
		}
	}

	got, err := s.GetExchanges(2)
	if err != nil {
		t.Fatalf("GetExchanges failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Expected 2 exchanges with limit 2, got %d", len(got))
	}

	// A non-positive limit still returns something instead of erroring.
	got, err = s.GetExchanges(0)
	if err != nil {
		t.Fatalf("GetExchanges with limit 0 failed: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("Expected limit clamped to 1, got %d exchanges", len(got))
	}
}

func TestSaveExchange_WithError(t *testing.T) {
	s, _ := newTestStore(t)

	ex := sampleExchange("doomed", time.Now().UTC())
	ex.Answer = ""
	ex.Error = "model: model invocation failed: rate limited"
	if err := s.SaveExchange(ex); err != nil {
		t.Fatalf("SaveExchange failed: %v", err)
	}

	got, err := s.GetExchanges(1)
	if err != nil {
		t.Fatalf("GetExchanges failed: %v", err)
	}
	if got[0].Error != ex.Error {
		t.Errorf("Expected error round trip, got %q", got[0].Error)
	}
	if got[0].Answer != "" {
		t.Errorf("Expected empty answer, got %q", got[0].Answer)
	}
}

func TestReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")

	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	if err := s.SaveExchange(sampleExchange("persisted", time.Now().UTC())); err != nil {
		t.Fatalf("SaveExchange failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Reopening runs migrations again; they must be idempotent and the data
	// must survive.
	s2, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer s2.Close()

	got, err := s2.GetExchanges(10)
	if err != nil {
		t.Fatalf("GetExchanges after reopen failed: %v", err)
	}
	if len(got) != 1 || got[0].Query != "persisted" {
		t.Errorf("Expected persisted exchange after reopen, got %v", got)
	}
}

func TestGetExchanges_Empty(t *testing.T) {
	s, _ := newTestStore(t)

	got, err := s.GetExchanges(10)
	if err != nil {
		t.Fatalf("GetExchanges failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected no exchanges, got %d", len(got))
	}
}
