package cache

import (
	"testing"
	"time"

	"github.com/gangland/server/internal/clock"
)

func TestTTLExpires(t *testing.T) {
	clk := clock.NewManual(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	c, err := NewTTL[string](4, time.Minute, clk)
	if err != nil {
		t.Fatal(err)
	}

	c.Add("tables", "v1")
	clk.Advance(59 * time.Second)
	if v, ok := c.Get("tables"); !ok || v != "v1" {
		t.Fatalf("Get() = %q, %v before expiry", v, ok)
	}

	clk.Advance(time.Second)
	if _, ok := c.Get("tables"); ok {
		t.Fatal("Get() hit after expiry")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, expired entry not evicted", c.Len())
	}
}

func TestTTLStaleKeepsExpired(t *testing.T) {
	clk := clock.NewManual(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	c, _ := NewTTL[int](4, time.Minute, clk)

	c.Add("k", 7)
	clk.Advance(time.Hour)
	if v, ok := c.Stale("k"); !ok || v != 7 {
		t.Errorf("Stale() = %d, %v", v, ok)
	}
}

func TestTTLEvictsLeastRecent(t *testing.T) {
	c, _ := NewTTL[int](2, time.Hour, nil)
	c.Add("a", 1)
	c.Add("b", 2)
	c.Get("a")
	c.Add("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a should have survived")
	}
}
