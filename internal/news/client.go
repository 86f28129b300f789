package news

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Client fetches news items from an external HTTP service. The service
// receives the city snapshot plus the previous item and replies with one
// item (200) or no news (204). Any failure is reported as an error and
// treated upstream as "no news this tick".
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient creates a news client for the given endpoint.
// Returns nil if url is empty (external news disabled).
func NewClient(url string) *Client {
	if url == "" {
		return nil
	}
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Enabled returns true if the client has an endpoint configured.
func (c *Client) Enabled() bool {
	return c != nil && c.url != ""
}

// request is the wire request body.
type request struct {
	Day        int   `json:"day"`
	Money      int   `json:"money"`
	Population int   `json:"population"`
	Previous   *Item `json:"previous,omitempty"`
}

// response is the wire response body.
type response struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Category string `json:"category"`
}

// Fetch implements Service over HTTP.
func (c *Client) Fetch(snap Snapshot, previous *Item) (*Item, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("news client not configured")
	}

	body, err := json.Marshal(request{
		Day:        snap.Day,
		Money:      snap.Money,
		Population: snap.Population,
		Previous:   previous,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequest("POST", c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("news call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil // No news today
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("news service error %d: %s", resp.StatusCode, string(respBody))
	}

	var wire response
	if err := json.Unmarshal(respBody, &wire); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if wire.Text == "" {
		return nil, nil
	}

	item := Item{
		ID:       wire.ID,
		Text:     wire.Text,
		Category: normalizeCategory(wire.Category),
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	return &item, nil
}

// normalizeCategory maps arbitrary service output onto the three known
// tones, defaulting to neutral.
func normalizeCategory(s string) Category {
	switch Category(s) {
	case CategoryPositive, CategoryNeutral, CategoryNegative:
		return Category(s)
	default:
		return CategoryNeutral
	}
}
