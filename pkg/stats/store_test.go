package stats

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

func setupTestStore(tb testing.TB) *Store {
	tb.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		tb.Fatalf("failed to open in-memory db: %v", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = db.Close() })

	if err = SetupSchema(context.Background(), db); err != nil {
		tb.Fatalf("SetupSchema failed: %v", err)
	}
	store, err := NewStore(db, DialectSQLite, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		tb.Fatalf("NewStore failed: %v", err)
	}
	return store
}

func record(tb testing.TB, s *Store, day, locale string, n int) {
	tb.Helper()
	for i := 0; i < n; i++ {
		if err := s.RecordView(context.Background(), PageView{Day: day, Locale: locale}); err != nil {
			tb.Fatalf("RecordView failed: %v", err)
		}
	}
}

func TestSetupSchemaIdempotent(t *testing.T) {
	s := setupTestStore(t)
	if err := SetupSchema(context.Background(), s.db); err != nil {
		t.Errorf("second SetupSchema failed: %v", err)
	}
}

func TestNewStoreDialects(t *testing.T) {
	for _, d := range []Dialect{DialectSQLite, DialectMySQL} {
		s, err := NewStore(nil, d, slog.Default())
		if err != nil {
			t.Errorf("NewStore(%s) failed: %v", d, err)
			continue
		}
		if s.Dialect() != d {
			t.Errorf("Dialect() = %s, want %s", s.Dialect(), d)
		}
	}
	if _, err := NewStore(nil, "postgres", slog.Default()); !errors.Is(err, ErrUnknownDialect) {
		t.Errorf("expected ErrUnknownDialect, got %v", err)
	}
}

func TestRecordViewUpserts(t *testing.T) {
	s := setupTestStore(t)
	record(t, s, "2024-01-15", "en-US", 3)
	record(t, s, "2024-01-15", "de-DE", 1)
	record(t, s, "2024-01-16", "en-US", 2)

	sum, err := s.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	want := Summary{TotalViews: 6, Days: 2, Locales: 2, FirstDay: "2024-01-15", LastDay: "2024-01-16"}
	if sum != want {
		t.Errorf("Summary() = %+v, want %+v", sum, want)
	}
}

func TestRecordViewRejectsBadInput(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	if err := s.RecordView(ctx, PageView{Day: "15/01/2024", Locale: "en-US"}); err == nil {
		t.Error("expected an error for a malformed day")
	}
	if err := s.RecordView(ctx, PageView{Day: "2024-01-15"}); err == nil {
		t.Error("expected an error for a missing locale")
	}
}

func TestSummaryEmpty(t *testing.T) {
	sum, err := setupTestStore(t).Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if sum != (Summary{}) {
		t.Errorf("Summary() = %+v, want zero", sum)
	}
}

func TestDaily(t *testing.T) {
	s := setupTestStore(t)
	record(t, s, "2024-01-14", "en-US", 1)
	record(t, s, "2024-01-15", "en-US", 2)
	record(t, s, "2024-01-15", "fr-FR", 2)
	record(t, s, "2024-01-16", "en-US", 5)

	all, err := s.Daily(context.Background(), 0)
	if err != nil {
		t.Fatalf("Daily failed: %v", err)
	}
	want := []DayCount{{"2024-01-16", 5}, {"2024-01-15", 4}, {"2024-01-14", 1}}
	if len(all) != len(want) {
		t.Fatalf("Daily() returned %d rows, want %d", len(all), len(want))
	}
	for i := range want {
		if all[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, all[i], want[i])
		}
	}

	limited, err := s.Daily(context.Background(), 2)
	if err != nil {
		t.Fatalf("Daily failed: %v", err)
	}
	if len(limited) != 2 || limited[0].Day != "2024-01-16" {
		t.Errorf("Daily(2) = %+v", limited)
	}
}

func TestLocales(t *testing.T) {
	s := setupTestStore(t)
	record(t, s, "2024-01-15", "en-US", 1)
	record(t, s, "2024-01-15", "ja-JP", 3)
	record(t, s, "2024-01-16", "ja-JP", 1)

	got, err := s.Locales(context.Background())
	if err != nil {
		t.Fatalf("Locales failed: %v", err)
	}
	want := []LocaleCount{{"ja-JP", 4}, {"en-US", 1}}
	if len(got) != len(want) {
		t.Fatalf("Locales() = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestRecordViewConcurrent(t *testing.T) {
	s := setupTestStore(t)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				_ = s.RecordView(context.Background(), PageView{Day: "2024-01-15", Locale: "en-US"})
			}
		}()
	}
	wg.Wait()

	sum, err := s.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if sum.TotalViews != 80 {
		t.Errorf("TotalViews = %d, want 80", sum.TotalViews)
	}
}

func TestNewPageView(t *testing.T) {
	at := time.Date(2024, time.January, 15, 23, 30, 0, 0, time.FixedZone("UTC-5", -5*3600))
	v := NewPageView(at, "en-US")
	if v.Day != "2024-01-16" {
		t.Errorf("Day = %q, want the UTC day 2024-01-16", v.Day)
	}
}
