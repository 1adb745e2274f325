// Package stats keeps daily page-view counters per viewer locale in a SQL database.
// Both sqlite and MySQL are supported; only the upsert statement differs.
package stats

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Dialect selects the SQL flavour used for upserts.
type Dialect string

const (
	DialectSQLite Dialect = "sqlite"
	DialectMySQL  Dialect = "mysql"
)

// DayLayout is the format of PageView.Day.
const DayLayout = time.DateOnly

// ErrUnknownDialect is returned by NewStore for an unsupported dialect.
var ErrUnknownDialect = errors.New("unknown sql dialect")

const statsSchema = `
CREATE TABLE IF NOT EXISTS page_views (
    day     CHAR(10)    NOT NULL,
    locale  VARCHAR(35) NOT NULL,
    views   BIGINT      NOT NULL DEFAULT 0,
    PRIMARY KEY (day, locale)
)`

const (
	upsertSQLite = `INSERT INTO page_views (day, locale, views) VALUES (?, ?, 1)
        ON CONFLICT(day, locale) DO UPDATE SET views = views + 1`
	upsertMySQL = `INSERT INTO page_views (day, locale, views) VALUES (?, ?, 1)
        ON DUPLICATE KEY UPDATE views = views + 1`
)

// PageView is one rendered landing page.
type PageView struct {
	Day    string `json:"day"`
	Locale string `json:"locale"`
}

// NewPageView builds the view for a render at t in the given locale. The day is taken in UTC.
func NewPageView(t time.Time, locale string) PageView {
	return PageView{Day: t.UTC().Format(DayLayout), Locale: locale}
}

// Summary provides a high-level overview of all collected stats.
type Summary struct {
	TotalViews int64  `json:"total_views"`
	Days       int64  `json:"days"`
	Locales    int64  `json:"locales"`
	FirstDay   string `json:"first_day,omitempty"`
	LastDay    string `json:"last_day,omitempty"`
}

// DayCount is the number of views on one day.
type DayCount struct {
	Day   string `json:"day"`
	Views int64  `json:"views"`
}

// LocaleCount is the number of views from one locale.
type LocaleCount struct {
	Locale string `json:"locale"`
	Views  int64  `json:"views"`
}

// Store records and queries page views. It is safe for concurrent use.
type Store struct {
	db      *sql.DB
	dialect Dialect
	upsert  string
	logger  *slog.Logger
}

// SetupSchema creates the page_views table if it does not exist.
func SetupSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, statsSchema); err != nil {
		return fmt.Errorf("failed to create stats schema: %w", err)
	}
	return nil
}

// NewStore returns a Store over db using the given dialect.
func NewStore(db *sql.DB, dialect Dialect, logger *slog.Logger) (*Store, error) {
	s := &Store{db: db, dialect: dialect, logger: logger}
	switch dialect {
	case DialectSQLite:
		s.upsert = upsertSQLite
	case DialectMySQL:
		s.upsert = upsertMySQL
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDialect, dialect)
	}
	return s, nil
}

// Dialect returns the dialect the store was created with.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// RecordView increments the counter for the view's day and locale.
func (s *Store) RecordView(ctx context.Context, v PageView) error {
	if _, err := time.Parse(DayLayout, v.Day); err != nil {
		return fmt.Errorf("invalid page view day %q: %w", v.Day, err)
	}
	if v.Locale == "" {
		return errors.New("page view has no locale")
	}
	if _, err := s.db.ExecContext(ctx, s.upsert, v.Day, v.Locale); err != nil {
		return fmt.Errorf("failed to record page view: %w", err)
	}
	s.logger.Debug("Recorded page view", "day", v.Day, "locale", v.Locale)
	return nil
}

// Summary returns totals across all recorded views.
func (s *Store) Summary(ctx context.Context) (Summary, error) {
	var sum Summary
	var first, last sql.NullString
	err := s.db.QueryRowContext(ctx, `
        SELECT COALESCE(SUM(views), 0), COUNT(DISTINCT day), COUNT(DISTINCT locale), MIN(day), MAX(day)
        FROM page_views`).Scan(&sum.TotalViews, &sum.Days, &sum.Locales, &first, &last)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to query stats summary: %w", err)
	}
	sum.FirstDay = first.String
	sum.LastDay = last.String
	return sum, nil
}

// Daily returns per-day totals, most recent first. A limit <= 0 returns every day.
func (s *Store) Daily(ctx context.Context, limit int) ([]DayCount, error) {
	query := `SELECT day, SUM(views) FROM page_views GROUP BY day ORDER BY day DESC`
	var args []interface{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily stats: %w", err)
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	results := []DayCount{}
	for rows.Next() {
		var dc DayCount
		if err = rows.Scan(&dc.Day, &dc.Views); err != nil {
			return nil, fmt.Errorf("failed to scan daily stats: %w", err)
		}
		results = append(results, dc)
	}
	return results, rows.Err()
}

// Locales returns per-locale totals, most viewed first.
func (s *Store) Locales(ctx context.Context) ([]LocaleCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT locale, SUM(views) AS total FROM page_views GROUP BY locale ORDER BY total DESC, locale`)
	if err != nil {
		return nil, fmt.Errorf("failed to query locale stats: %w", err)
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	results := []LocaleCount{}
	for rows.Next() {
		var lc LocaleCount
		if err = rows.Scan(&lc.Locale, &lc.Views); err != nil {
			return nil, fmt.Errorf("failed to scan locale stats: %w", err)
		}
		results = append(results, lc)
	}
	return results, rows.Err()
}
