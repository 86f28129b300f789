// Package news provides the city's narrative layer: feed items, the
// bounded headline feed, and the sources that turn city statistics into
// flavor text.
package news

// Category classifies a news item's tone.
type Category string

const (
	CategoryPositive Category = "positive"
	CategoryNeutral  Category = "neutral"
	CategoryNegative Category = "negative"
)

// Item is one entry in the city news feed.
type Item struct {
	ID       string   `json:"id"`
	Text     string   `json:"text"`
	Category Category `json:"category"`
}

// Snapshot is the slice of city state a news source sees.
type Snapshot struct {
	Day        int `json:"day"`
	Money      int `json:"money"`
	Population int `json:"population"`
}

// Service produces at most one news item per call. A nil item with a nil
// error means "no news". Fetch may be arbitrarily slow; the simulation
// invokes it off the tick loop and applies the result whenever it lands.
type Service interface {
	Fetch(snap Snapshot, previous *Item) (*Item, error)
}

// DefaultFeedCap is how many headlines the city retains.
const DefaultFeedCap = 13

// Feed is a bounded ordered collection of items, newest last. It is not
// goroutine safe; the owner serializes access.
type Feed struct {
	limit int
	items []Item
}

// NewFeed creates a feed holding at most limit items.
func NewFeed(limit int) *Feed {
	if limit <= 0 {
		limit = DefaultFeedCap
	}
	return &Feed{limit: limit}
}

// Push appends an item, evicting the oldest entries beyond the cap.
func (f *Feed) Push(it Item) {
	f.items = append(f.items, it)
	if len(f.items) > f.limit {
		f.items = f.items[len(f.items)-f.limit:]
	}
}

// Items returns a copy of the feed, oldest first.
func (f *Feed) Items() []Item {
	out := make([]Item, len(f.items))
	copy(out, f.items)
	return out
}

// Latest returns a copy of the newest item, or nil if the feed is empty.
func (f *Feed) Latest() *Item {
	if len(f.items) == 0 {
		return nil
	}
	it := f.items[len(f.items)-1]
	return &it
}

// Len returns the number of items currently held.
func (f *Feed) Len() int {
	return len(f.items)
}
