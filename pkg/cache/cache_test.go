package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestTimed(t *testing.T) {
	c := NewTimed[[]byte](5 * time.Minute)

	tstart := time.Now()

	c.set("key", []byte("value"), tstart)

	got, ok := c.get("key", tstart.Add(time.Minute))
	if !ok || string(got) != "value" {
		t.Errorf("failed to get key that should not be expired")
	}

	_, ok = c.get("key", tstart.Add(10*time.Minute))
	if ok {
		t.Errorf("succeeded in getting expired key")
	}

	_, ok = c.get("key", tstart.Add(time.Minute))
	if ok {
		t.Errorf("succeeded in getting key that was previously evicted")
	}
}

func TestTimedDisabled(t *testing.T) {
	c := NewTimed[string](0)
	c.Set("key", "value")
	if _, ok := c.Get("key"); ok {
		t.Errorf("a zero ttl cache returned a value")
	}
}

func TestSetEvictsUnreadKeys(t *testing.T) {
	c := NewTimed[int](time.Minute)
	tstart := time.Now()
	for i := 0; i < 10; i++ {
		c.set(fmt.Sprintf("/report?x=%d", i), i, tstart)
	}
	if c.Len() != 10 {
		t.Fatalf("got %d elements, want 10", c.Len())
	}

	// None of the old keys is read again; the next write clears them out.
	c.set("/report?x=fresh", 1, tstart.Add(2*time.Minute))
	if c.Len() != 1 {
		t.Errorf("got %d elements after expiry, want 1", c.Len())
	}
	if v, ok := c.get("/report?x=fresh", tstart.Add(2*time.Minute)); !ok || v != 1 {
		t.Errorf("lost the fresh element")
	}
}

func TestSetKeepsLiveKeys(t *testing.T) {
	c := NewTimed[int](time.Minute)
	tstart := time.Now()
	c.set("old", 1, tstart)
	c.set("new", 2, tstart.Add(50*time.Second))
	c.set("newer", 3, tstart.Add(90*time.Second))

	if c.Len() != 2 {
		t.Errorf("got %d elements, want the two unexpired ones", c.Len())
	}
	if _, ok := c.get("new", tstart.Add(90*time.Second)); !ok {
		t.Errorf("evicted an element before its ttl")
	}
}

func TestTimedConcurrent(t *testing.T) {
	c := NewTimed[int](time.Minute)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Set("key", i)
			c.Get("key")
		}(i)
	}
	wg.Wait()
	if _, ok := c.Get("key"); !ok {
		t.Errorf("expected a value after concurrent sets")
	}
}
