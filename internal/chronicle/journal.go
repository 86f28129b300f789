// Package chronicle keeps the city's SQLite journal: day-end stat
// snapshots and the headlines the news desk ran. It is append-only from
// the simulation's point of view — the engine never reads state back,
// so the journal is a record of the city, not a save file.
package chronicle

import (
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/mini-city/internal/news"
)

// Journal wraps a SQLite connection for the city record.
type Journal struct {
	conn *sqlx.DB
}

// StatsRow is one day-end snapshot as stored.
type StatsRow struct {
	Day        int `db:"day" json:"day"`
	Money      int `db:"money" json:"money"`
	Population int `db:"population" json:"population"`
}

// HeadlineRow is one archived headline.
type HeadlineRow struct {
	ID       string `db:"id" json:"id"`
	Day      int    `db:"day" json:"day"`
	Category string `db:"category" json:"category"`
	Text     string `db:"text" json:"text"`
}

// Open opens or creates the journal database at the given path.
func Open(path string) (*Journal, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	j := &Journal{conn: conn}
	if err := j.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate journal: %w", err)
	}

	return j, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	return j.conn.Close()
}

func (j *Journal) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS days (
		day INTEGER PRIMARY KEY,
		money INTEGER NOT NULL,
		population INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS headlines (
		id TEXT PRIMARY KEY,
		day INTEGER NOT NULL,
		category TEXT NOT NULL,
		text TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_headlines_day ON headlines(day);
	`
	_, err := j.conn.Exec(schema)
	return err
}

// RecordDay stores the day-end snapshot. Recording the same day again
// overwrites it, so a restarted city keeps one row per day.
func (j *Journal) RecordDay(day, money, population int) error {
	_, err := j.conn.Exec(
		"INSERT OR REPLACE INTO days (day, money, population) VALUES (?, ?, ?)",
		day, money, population,
	)
	if err != nil {
		return fmt.Errorf("record day %d: %w", day, err)
	}
	return nil
}

// RecordHeadline archives one news item under the day it ran. A repeated
// item id is ignored rather than duplicated.
func (j *Journal) RecordHeadline(day int, it news.Item) error {
	_, err := j.conn.Exec(
		"INSERT OR IGNORE INTO headlines (id, day, category, text) VALUES (?, ?, ?, ?)",
		it.ID, day, string(it.Category), it.Text,
	)
	if err != nil {
		return fmt.Errorf("record headline %q: %w", it.ID, err)
	}
	return nil
}

// StatsHistory returns up to limit day snapshots, most recent first.
func (j *Journal) StatsHistory(limit int) ([]StatsRow, error) {
	var rows []StatsRow
	err := j.conn.Select(&rows,
		"SELECT day, money, population FROM days ORDER BY day DESC LIMIT ?",
		limit,
	)
	return rows, err
}

// RecentHeadlines returns up to limit archived headlines, newest first.
func (j *Journal) RecentHeadlines(limit int) ([]HeadlineRow, error) {
	var rows []HeadlineRow
	err := j.conn.Select(&rows,
		"SELECT id, day, category, text FROM headlines ORDER BY day DESC, id DESC LIMIT ?",
		limit,
	)
	return rows, err
}

// LogSummary logs how much history the journal holds. Called at startup
// so a long-running city shows its age.
func (j *Journal) LogSummary() {
	var days, headlines int
	if err := j.conn.Get(&days, "SELECT COUNT(*) FROM days"); err != nil {
		return
	}
	if err := j.conn.Get(&headlines, "SELECT COUNT(*) FROM headlines"); err != nil {
		return
	}
	slog.Info("journal opened", "days", days, "headlines", headlines)
}
