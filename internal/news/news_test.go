package news

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFeedEviction(t *testing.T) {
	f := NewFeed(13)
	for i := 0; i < 20; i++ {
		f.Push(Item{ID: fmt.Sprintf("%d", i), Text: "headline", Category: CategoryNeutral})
	}

	items := f.Items()
	if len(items) != 13 {
		t.Fatalf("feed holds %d items, want 13", len(items))
	}
	if items[0].ID != "7" {
		t.Errorf("oldest surviving item = %s, want 7", items[0].ID)
	}
	if items[len(items)-1].ID != "19" {
		t.Errorf("newest item = %s, want 19", items[len(items)-1].ID)
	}
	if got := f.Latest(); got == nil || got.ID != "19" {
		t.Errorf("Latest = %+v, want id 19", got)
	}
}

func TestFeedEmpty(t *testing.T) {
	f := NewFeed(0) // falls back to the default cap
	if f.Latest() != nil {
		t.Error("Latest on empty feed should be nil")
	}
	if f.Len() != 0 {
		t.Errorf("Len = %d, want 0", f.Len())
	}
}

func TestDeskClassifies(t *testing.T) {
	cases := []struct {
		name   string
		first  Snapshot
		second Snapshot
		want   Category
	}{
		{"population growth", Snapshot{Day: 1, Money: 1000, Population: 10}, Snapshot{Day: 2, Money: 1000, Population: 20}, CategoryPositive},
		{"population loss", Snapshot{Day: 1, Money: 1000, Population: 20}, Snapshot{Day: 2, Money: 1000, Population: 10}, CategoryNegative},
		{"money loss", Snapshot{Day: 1, Money: 1000, Population: 10}, Snapshot{Day: 2, Money: 900, Population: 10}, CategoryNegative},
		{"steady state", Snapshot{Day: 1, Money: 1000, Population: 10}, Snapshot{Day: 2, Money: 1000, Population: 10}, CategoryNeutral},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := NewDesk(1)
			first, err := d.Fetch(tc.first, nil)
			if err != nil {
				t.Fatalf("first fetch: %v", err)
			}
			if first.Category != CategoryNeutral {
				t.Errorf("first item category = %s, want neutral", first.Category)
			}

			second, err := d.Fetch(tc.second, first)
			if err != nil {
				t.Fatalf("second fetch: %v", err)
			}
			if second.Category != tc.want {
				t.Errorf("category = %s, want %s", second.Category, tc.want)
			}
			if second.Text == "" || second.ID == "" {
				t.Errorf("incomplete item: %+v", second)
			}
			if second.ID == first.ID {
				t.Error("items share an ID")
			}
		})
	}
}

func TestClientFetch(t *testing.T) {
	t.Run("item returned", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req request
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("bad request body: %v", err)
			}
			if req.Population != 42 {
				t.Errorf("population = %d, want 42", req.Population)
			}
			json.NewEncoder(w).Encode(response{Text: "festival announced", Category: "positive"})
		}))
		defer srv.Close()

		c := NewClient(srv.URL)
		item, err := c.Fetch(Snapshot{Day: 3, Money: 100, Population: 42}, nil)
		if err != nil {
			t.Fatalf("Fetch: %v", err)
		}
		if item == nil || item.Text != "festival announced" {
			t.Fatalf("item = %+v", item)
		}
		if item.Category != CategoryPositive {
			t.Errorf("category = %s, want positive", item.Category)
		}
		if item.ID == "" {
			t.Error("missing id not backfilled")
		}
	})

	t.Run("no news", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
		defer srv.Close()

		c := NewClient(srv.URL)
		item, err := c.Fetch(Snapshot{}, nil)
		if err != nil {
			t.Fatalf("Fetch: %v", err)
		}
		if item != nil {
			t.Errorf("item = %+v, want nil", item)
		}
	})

	t.Run("service error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer srv.Close()

		c := NewClient(srv.URL)
		if _, err := c.Fetch(Snapshot{}, nil); err == nil {
			t.Error("expected error on 500")
		}
	})

	t.Run("bogus category normalized", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(response{ID: "abc", Text: "weather", Category: "sideways"})
		}))
		defer srv.Close()

		c := NewClient(srv.URL)
		item, err := c.Fetch(Snapshot{}, nil)
		if err != nil {
			t.Fatalf("Fetch: %v", err)
		}
		if item.Category != CategoryNeutral {
			t.Errorf("category = %s, want neutral", item.Category)
		}
	})

	t.Run("disabled", func(t *testing.T) {
		if NewClient("") != nil {
			t.Error("NewClient(\"\") should be nil")
		}
	})
}
