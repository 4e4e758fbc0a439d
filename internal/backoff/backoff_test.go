package backoff

import (
	"testing"
	"time"
)

func TestTableMonotonicGrowthAndCeiling(t *testing.T) {
	tbl := New(60*time.Second, 600*time.Second)
	key := Key{Namespace: "ns", Name: "cfg"}

	var prev time.Duration
	for i := 0; i < 12; i++ {
		d := tbl.Failure(key)
		if d < prev {
			t.Fatalf("delay decreased on attempt %d: %v < %v", i, d, prev)
		}
		if d > 600*time.Second {
			t.Fatalf("delay exceeded ceiling: %v", d)
		}
		prev = d
	}
	if prev != 600*time.Second {
		t.Fatalf("expected delay to reach ceiling after repeated failures, got %v", prev)
	}
}

func TestTableMatchesScenarioSixSchedule(t *testing.T) {
	tbl := New(60*time.Second, 600*time.Second)
	key := Key{Namespace: "ns", Name: "cfg"}

	want := []time.Duration{
		60 * time.Second,
		90 * time.Second,
		150 * time.Second,
		240 * time.Second,
		390 * time.Second,
		600 * time.Second,
		600 * time.Second,
	}
	for i, w := range want {
		got := tbl.Failure(key)
		if got != w {
			t.Fatalf("attempt %d: expected %v, got %v", i+1, w, got)
		}
	}
}

func TestTableSuccessResetsToFloor(t *testing.T) {
	tbl := New(60*time.Second, 600*time.Second)
	key := Key{Namespace: "ns", Name: "cfg"}

	tbl.Failure(key)
	tbl.Failure(key)
	tbl.Failure(key)

	tbl.Success(key)

	d := tbl.Failure(key)
	if d != 60*time.Second {
		t.Fatalf("expected floor delay after reset, got %v", d)
	}
}

func TestTableIndependentKeys(t *testing.T) {
	tbl := New(60*time.Second, 600*time.Second)
	a := Key{Namespace: "ns", Name: "a"}
	b := Key{Namespace: "ns", Name: "b"}

	tbl.Failure(a)
	tbl.Failure(a)
	da := tbl.Failure(a)

	db := tbl.Failure(b)

	if db >= da {
		t.Fatalf("expected fresh key b to have smaller delay than repeatedly-failed key a: %v >= %v", db, da)
	}
}
