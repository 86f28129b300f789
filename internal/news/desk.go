// Local news desk, used when no external news service is configured.
// Headlines are templated from stat movement between calls, so the feed
// still reacts to the city without any network dependency.
package news

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// Desk is a Service that writes headlines locally. It keeps the previous
// snapshot to judge whether the city is growing or shrinking.
type Desk struct {
	mu   sync.Mutex
	rng  *rand.Rand
	last Snapshot
	seen bool
}

// NewDesk creates a local news desk. Seed 0 derives one from the clock.
func NewDesk(seed int64) *Desk {
	if seed == 0 {
		seed = rand.Int63()
	}
	return &Desk{rng: rand.New(rand.NewSource(seed))}
}

// Fetch implements Service without ever failing.
func (d *Desk) Fetch(snap Snapshot, previous *Item) (*Item, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	category := d.classify(snap)
	pool := headlinesFor(category, snap)

	text := pool[d.rng.Intn(len(pool))]
	if previous != nil && text == previous.Text && len(pool) > 1 {
		// Reroll once rather than printing the same headline twice.
		for _, alt := range pool {
			if alt != previous.Text {
				text = alt
				break
			}
		}
	}

	d.last = snap
	d.seen = true

	return &Item{
		ID:       uuid.NewString(),
		Text:     text,
		Category: category,
	}, nil
}

// classify judges the city's direction since the last call.
func (d *Desk) classify(snap Snapshot) Category {
	if !d.seen {
		return CategoryNeutral
	}
	switch {
	case snap.Population > d.last.Population || snap.Money > d.last.Money+100:
		return CategoryPositive
	case snap.Population < d.last.Population || snap.Money < d.last.Money:
		return CategoryNegative
	default:
		return CategoryNeutral
	}
}

func headlinesFor(c Category, snap Snapshot) []string {
	money := humanize.Comma(int64(snap.Money))
	pop := humanize.Comma(int64(snap.Population))

	switch c {
	case CategoryPositive:
		return []string{
			fmt.Sprintf("Census clerks count %s residents as the town keeps growing", pop),
			fmt.Sprintf("Treasury swells to $%s on strong trade", money),
			"Ribbon cut on a fresh block of new homes",
			"Market stalls report their busiest morning in weeks",
		}
	case CategoryNegative:
		return []string{
			fmt.Sprintf("Families pack up; population slips to %s", pop),
			fmt.Sprintf("Treasury thins to $%s after a costly week", money),
			"Housing shortage sends renters looking elsewhere",
			"Shopkeepers grumble about slow foot traffic",
		}
	default:
		return []string{
			fmt.Sprintf("Day %d passes quietly across town", snap.Day),
			"Mayor's office reports nothing to report",
			"The afternoon train runs on time, again",
			"Ducks seen crossing the high street; traffic briefly delayed",
		}
	}
}
