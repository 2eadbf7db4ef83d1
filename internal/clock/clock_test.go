package clock

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestMockAdvance(t *testing.T) {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewMock(start)
	if got := c.Now(); !got.Equal(start) {
		t.Errorf("Now() = %v, want %v", got, start)
	}
	c.Advance(150 * time.Millisecond)
	if got, want := c.Since(start), 150*time.Millisecond; got != want {
		t.Errorf("Since(start) = %v, want %v", got, want)
	}
	c.Set(start.Add(time.Hour))
	if got := c.Now(); !got.Equal(start.Add(time.Hour)) {
		t.Errorf("Now() after Set = %v, want %v", got, start.Add(time.Hour))
	}
}

func TestMockSleep(t *testing.T) {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewMock(start)
	c.Sleep(time.Millisecond)
	c.Sleep(40 * time.Millisecond)
	want := []time.Duration{time.Millisecond, 40 * time.Millisecond}
	if diff := cmp.Diff(c.Sleeps(), want); diff != "" {
		t.Errorf("unexpected sleeps: got(-)/want(+):\n%s", diff)
	}
	// Sleeping moves the clock so timed state machines see the delay.
	if got, want := c.Since(start), 41*time.Millisecond; got != want {
		t.Errorf("Since(start) = %v, want %v", got, want)
	}
}

func TestRealNow(t *testing.T) {
	c := Real{}
	before := time.Now()
	got := c.Now()
	if got.Before(before) {
		t.Errorf("Now() = %v, want >= %v", got, before)
	}
	if c.Since(before) < 0 {
		t.Errorf("Since(before) negative")
	}
}
