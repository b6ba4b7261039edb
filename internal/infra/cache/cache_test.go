package cache_test

import (
	"testing"
	"time"

	"github.com/fortunamfo/branchbot/internal/domain"
	"github.com/fortunamfo/branchbot/internal/infra/cache"
)

func TestCache_SetAndGet(t *testing.T) {
	c := cache.New[domain.RateBoard](5 * time.Minute)

	board := domain.RateBoard{Rates: []domain.BankRate{{Bank: "NBU", Buy: 12600, Sell: 12700}}}
	c.Set("usd", board)

	got, ok := c.Get("usd")
	if !ok {
		t.Fatal("expected key to exist")
	}
	if len(got.Rates) != 1 || got.Rates[0].Bank != "NBU" {
		t.Errorf("unexpected cached board: %+v", got)
	}
}

func TestCache_GetMiss(t *testing.T) {
	c := cache.New[string](5 * time.Minute)

	_, ok := c.Get("nonexistent")
	if ok {
		t.Fatal("expected cache miss for nonexistent key")
	}
}

func TestCache_Expiration(t *testing.T) {
	c := cache.New[string](50 * time.Millisecond)

	c.Set("key1", "value1")
	time.Sleep(100 * time.Millisecond)

	_, ok := c.Get("key1")
	if ok {
		t.Fatal("expected cache entry to be expired")
	}
}

func TestCache_Delete(t *testing.T) {
	c := cache.New[string](5 * time.Minute)

	c.Set("key1", "value1")
	c.Delete("key1")

	_, ok := c.Get("key1")
	if ok {
		t.Fatal("expected key to be deleted")
	}
}
