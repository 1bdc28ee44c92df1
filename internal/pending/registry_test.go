package pending

import (
	"sync"
	"testing"
	"time"
)

// collector records fires so tests can assert exact counts.
type collector struct {
	mu    sync.Mutex
	fires []int
}

func (c *collector) fire(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fires = append(c.fires, id)
}

func (c *collector) count(id int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, f := range c.fires {
		if f == id {
			n++
		}
	}
	return n
}

func TestArm_FiresExactlyOnceAfterTimeout(t *testing.T) {
	c := &collector{}
	r := NewRegistry(20*time.Millisecond, c.fire)
	defer r.Stop()

	r.Arm(7)

	time.Sleep(100 * time.Millisecond)
	if got := c.count(7); got != 1 {
		t.Fatalf("actor 7 fired %d times, want 1", got)
	}
}

func TestDisarm_CancelsBeforeFire(t *testing.T) {
	c := &collector{}
	r := NewRegistry(50*time.Millisecond, c.fire)
	defer r.Stop()

	r.Arm(3)
	r.Disarm(3)

	time.Sleep(150 * time.Millisecond)
	if got := c.count(3); got != 0 {
		t.Fatalf("disarmed actor 3 fired %d times", got)
	}
}

func TestArm_LastArmWins(t *testing.T) {
	c := &collector{}
	r := NewRegistry(50*time.Millisecond, c.fire)
	defer r.Stop()

	// Re-arm mid-window; only the second deadline may fire.
	r.Arm(5)
	time.Sleep(30 * time.Millisecond)
	r.Arm(5)

	time.Sleep(30 * time.Millisecond)
	if got := c.count(5); got != 0 {
		t.Fatalf("stale first timer fired (%d fires)", got)
	}
	time.Sleep(60 * time.Millisecond)
	if got := c.count(5); got != 1 {
		t.Fatalf("actor 5 fired %d times after re-arm, want 1", got)
	}
}

func TestStop_CancelsEverything(t *testing.T) {
	c := &collector{}
	r := NewRegistry(30*time.Millisecond, c.fire)

	r.Arm(1)
	r.Arm(2)
	r.Stop()

	time.Sleep(100 * time.Millisecond)
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.fires) != 0 {
		t.Fatalf("fires after Stop: %v", c.fires)
	}
}

func TestArm_AfterStopIsIgnored(t *testing.T) {
	c := &collector{}
	r := NewRegistry(20*time.Millisecond, c.fire)
	r.Stop()

	r.Arm(9)
	time.Sleep(80 * time.Millisecond)
	if got := c.count(9); got != 0 {
		t.Fatalf("arm after stop fired %d times", got)
	}
}
