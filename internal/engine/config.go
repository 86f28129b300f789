package engine

import (
	"time"

	"github.com/talgya/mini-city/internal/news"
)

// Config holds the engine's startup parameters. The defaults reproduce
// the standard game; exposing them here tunes pace and difficulty without
// changing any rule.
type Config struct {
	GridSize      int
	Seed          int64 // World and agent seed (0 = random)
	StartingMoney int

	TickInterval  time.Duration // Economic tick cadence
	ClockInterval time.Duration // Day/night accumulator cadence
	FrameInterval time.Duration // Agent motion cadence (negative = external frames)

	NewsChance float64      // Per-tick probability of requesting news
	FeedCap    int          // Headlines retained
	News       news.Service // nil disables news entirely
}

// DefaultConfig returns the standard city configuration.
func DefaultConfig() Config {
	return Config{
		GridSize:      25,
		StartingMoney: 50000,
		TickInterval:  2 * time.Second,
		ClockInterval: 200 * time.Millisecond,
		FrameInterval: time.Second / 60,
		NewsChance:    0.15,
		FeedCap:       news.DefaultFeedCap,
	}
}

// normalize fills zero values with defaults. A negative FrameInterval is
// kept as-is: it means the embedder drives StepFrame itself.
func (c Config) normalize() Config {
	def := DefaultConfig()
	if c.GridSize <= 0 {
		c.GridSize = def.GridSize
	}
	if c.StartingMoney == 0 {
		c.StartingMoney = def.StartingMoney
	}
	if c.TickInterval <= 0 {
		c.TickInterval = def.TickInterval
	}
	if c.ClockInterval <= 0 {
		c.ClockInterval = def.ClockInterval
	}
	if c.FrameInterval == 0 {
		c.FrameInterval = def.FrameInterval
	}
	if c.NewsChance == 0 {
		c.NewsChance = def.NewsChance
	}
	if c.FeedCap <= 0 {
		c.FeedCap = def.FeedCap
	}
	return c
}
