package chronicle

import (
	"path/filepath"
	"testing"

	"github.com/talgya/mini-city/internal/news"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "city.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestRecordDayHistory(t *testing.T) {
	j := openTestJournal(t)

	snapshots := []StatsRow{
		{Day: 1, Money: 50000, Population: 0},
		{Day: 2, Money: 50150, Population: 10},
		{Day: 3, Money: 50400, Population: 25},
	}
	for _, s := range snapshots {
		if err := j.RecordDay(s.Day, s.Money, s.Population); err != nil {
			t.Fatalf("RecordDay(%d): %v", s.Day, err)
		}
	}

	rows, err := j.StatsHistory(10)
	if err != nil {
		t.Fatalf("StatsHistory: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("history length = %d, want 3", len(rows))
	}
	// Most recent first.
	if rows[0] != snapshots[2] || rows[2] != snapshots[0] {
		t.Errorf("history order wrong: %+v", rows)
	}
}

func TestRecordDayOverwrites(t *testing.T) {
	j := openTestJournal(t)

	if err := j.RecordDay(5, 100, 10); err != nil {
		t.Fatalf("RecordDay: %v", err)
	}
	if err := j.RecordDay(5, 200, 20); err != nil {
		t.Fatalf("RecordDay again: %v", err)
	}

	rows, err := j.StatsHistory(10)
	if err != nil {
		t.Fatalf("StatsHistory: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("history length = %d, want 1", len(rows))
	}
	if rows[0].Money != 200 || rows[0].Population != 20 {
		t.Errorf("day 5 not overwritten: %+v", rows[0])
	}
}

func TestRecordHeadlines(t *testing.T) {
	j := openTestJournal(t)

	items := []news.Item{
		{ID: "a", Text: "Ribbon cut on a fresh block of new homes", Category: news.CategoryPositive},
		{ID: "b", Text: "Shopkeepers grumble about slow foot traffic", Category: news.CategoryNegative},
	}
	for i, it := range items {
		if err := j.RecordHeadline(i+1, it); err != nil {
			t.Fatalf("RecordHeadline(%q): %v", it.ID, err)
		}
	}
	// A duplicate id is ignored, not duplicated.
	if err := j.RecordHeadline(3, items[0]); err != nil {
		t.Fatalf("RecordHeadline duplicate: %v", err)
	}

	rows, err := j.RecentHeadlines(10)
	if err != nil {
		t.Fatalf("RecentHeadlines: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("headline count = %d, want 2", len(rows))
	}
	if rows[0].ID != "b" {
		t.Errorf("newest headline = %q, want %q", rows[0].ID, "b")
	}
	if rows[1].Day != 1 || rows[1].Category != string(news.CategoryPositive) {
		t.Errorf("archived headline wrong: %+v", rows[1])
	}
}

func TestHistoryLimit(t *testing.T) {
	j := openTestJournal(t)

	for day := 1; day <= 20; day++ {
		if err := j.RecordDay(day, day*10, day); err != nil {
			t.Fatalf("RecordDay(%d): %v", day, err)
		}
	}

	rows, err := j.StatsHistory(7)
	if err != nil {
		t.Fatalf("StatsHistory: %v", err)
	}
	if len(rows) != 7 {
		t.Fatalf("history length = %d, want 7", len(rows))
	}
	if rows[0].Day != 20 || rows[6].Day != 14 {
		t.Errorf("limited history window wrong: first=%d last=%d", rows[0].Day, rows[6].Day)
	}
}
