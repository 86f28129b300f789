// The economic tick: building effects aggregated into population, money,
// and the day counter, plus the occasional call out for news.
package engine

import (
	"log/slog"

	"github.com/talgya/mini-city/internal/grid"
	"github.com/talgya/mini-city/internal/news"
)

// TicksPerDay is how many economic ticks make one in-game day.
const TicksPerDay = 10

// flightRate is how many residents leave per tick when the city has no
// housing at all.
const flightRate = 5

// stepEconomy performs one economic tick.
func (e *Engine) stepEconomy() {
	e.mu.Lock()

	income := 0
	growth := 0
	counts := make(map[grid.BuildingType]int)

	e.grid.Each(func(t grid.Tile) {
		if !t.Owned || t.Building == grid.BuildingNone {
			return
		}
		spec, ok := grid.SpecFor(t.Building)
		if !ok {
			// Data mismatch, not a corrupt city: skip the tile.
			slog.Warn("building missing from catalog", "building", uint8(t.Building), "x", t.X, "y", t.Y)
			return
		}
		income += spec.IncomeGen
		growth += spec.PopGen
		counts[t.Building]++
	})

	residential := counts[grid.BuildingResidential]
	maxPop := residential * grid.ResidentialCapacity

	if residential == 0 && e.stats.Population > 0 {
		// No housing anywhere: residents drain away.
		e.stats.Population -= flightRate
		if e.stats.Population < 0 {
			e.stats.Population = 0
		}
	} else {
		p := e.stats.Population + growth
		if p > maxPop {
			p = maxPop
		}
		if p < 0 {
			p = 0
		}
		e.stats.Population = p
	}

	e.stats.Money += income

	e.ticks++
	tick := e.ticks
	dayRolled := false
	if e.ticks%TicksPerDay == 0 {
		e.stats.Day++
		dayRolled = true
	}

	stats := e.stats

	var prev *news.Item
	wantNews := e.cfg.News != nil && e.rng.Float64() < e.cfg.NewsChance
	if wantNews {
		prev = e.feed.Latest()
	}
	e.mu.Unlock()

	slog.Debug("economy tick",
		"tick", tick,
		"day", stats.Day,
		"money", stats.Money,
		"population", stats.Population,
		"income", income,
	)

	if wantNews {
		// Fire and forget: ticking never waits on the news service,
		// and a late item is appended whenever it shows up.
		go e.fetchNews(stats, prev)
	}

	if e.OnTick != nil {
		e.OnTick(stats)
	}
	if dayRolled && e.OnDay != nil {
		e.OnDay(stats)
	}
}

// fetchNews calls the news service and appends its item, if any.
func (e *Engine) fetchNews(stats Stats, prev *news.Item) {
	item, err := e.cfg.News.Fetch(news.Snapshot{
		Day:        stats.Day,
		Money:      stats.Money,
		Population: stats.Population,
	}, prev)
	if err != nil {
		slog.Debug("no news", "err", err)
		return
	}
	if item == nil {
		return
	}

	e.mu.Lock()
	e.feed.Push(*item)
	e.mu.Unlock()

	if e.OnNews != nil {
		e.OnNews(*item)
	}
}
