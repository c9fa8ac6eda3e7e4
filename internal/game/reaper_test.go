package game

import (
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

type expiryRecorder struct {
	mu    sync.Mutex
	fired []removalKey
}

func (r *expiryRecorder) record(code, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fired = append(r.fired, removalKey{code: code, name: name})
}

func (r *expiryRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.fired)
}

func TestRemovalFiresAfterGrace(t *testing.T) {
	rec := &expiryRecorder{}
	rs := NewRemovalScheduler(20*time.Millisecond, rec.record, zaptest.NewLogger(t))
	defer rs.Stop()

	rs.Schedule("session1", "Alice")

	deadline := time.Now().Add(time.Second)
	for rec.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if rec.count() != 1 {
		t.Fatalf("expected exactly one expiry, got %d", rec.count())
	}

	rec.mu.Lock()
	key := rec.fired[0]
	rec.mu.Unlock()
	if key.code != "session1" || key.name != "Alice" {
		t.Errorf("unexpected expiry key: %+v", key)
	}
}

func TestCancelPreventsExpiry(t *testing.T) {
	rec := &expiryRecorder{}
	rs := NewRemovalScheduler(20*time.Millisecond, rec.record, zaptest.NewLogger(t))
	defer rs.Stop()

	rs.Schedule("session1", "Alice")
	rs.Cancel("session1", "Alice")

	time.Sleep(60 * time.Millisecond)
	if rec.count() != 0 {
		t.Errorf("cancelled removal still fired %d times", rec.count())
	}
}

func TestCancelIsIdempotent(t *testing.T) {
	rec := &expiryRecorder{}
	rs := NewRemovalScheduler(time.Minute, rec.record, zaptest.NewLogger(t))
	defer rs.Stop()

	// Cancelling a task that never existed, then cancelling twice.
	rs.Cancel("session1", "Ghost")
	rs.Schedule("session1", "Alice")
	rs.Cancel("session1", "Alice")
	rs.Cancel("session1", "Alice")

	if rec.count() != 0 {
		t.Errorf("cancel fired expiries: %d", rec.count())
	}
}

func TestRescheduleRestartsCountdown(t *testing.T) {
	rec := &expiryRecorder{}
	rs := NewRemovalScheduler(30*time.Millisecond, rec.record, zaptest.NewLogger(t))
	defer rs.Stop()

	rs.Schedule("session1", "Alice")
	rs.Schedule("session1", "Alice")

	deadline := time.Now().Add(time.Second)
	for rec.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	// Give a stale duplicate timer a chance to fire wrongly.
	time.Sleep(50 * time.Millisecond)
	if rec.count() != 1 {
		t.Errorf("expected a single expiry after reschedule, got %d", rec.count())
	}
}

func TestLateTimerCallbackCannotRemoveRescheduledPlayer(t *testing.T) {
	rec := &expiryRecorder{}
	rs := NewRemovalScheduler(time.Hour, rec.record, zaptest.NewLogger(t))
	defer rs.Stop()

	key := removalKey{code: "session1", name: "Alice"}

	// First disconnect, then a reconnect/disconnect cycle leaves a
	// fresh task under the same key.
	rs.Schedule(key.code, key.name)
	rs.mu.Lock()
	staleGen := rs.tasks[key].gen
	rs.mu.Unlock()
	rs.Cancel(key.code, key.name)
	rs.Schedule(key.code, key.name)

	// The first timer's callback arriving late must not touch the
	// fresh task.
	rs.fire(key, staleGen)

	if rec.count() != 0 {
		t.Fatalf("stale timer callback removed the player: %d expiries", rec.count())
	}
	rs.mu.Lock()
	_, pending := rs.tasks[key]
	rs.mu.Unlock()
	if !pending {
		t.Error("fresh removal task was discarded by the stale callback")
	}
}

func TestStopCancelsEverything(t *testing.T) {
	rec := &expiryRecorder{}
	rs := NewRemovalScheduler(20*time.Millisecond, rec.record, zaptest.NewLogger(t))

	rs.Schedule("session1", "Alice")
	rs.Schedule("session2", "Bob")
	rs.Stop()

	time.Sleep(60 * time.Millisecond)
	if rec.count() != 0 {
		t.Errorf("stopped scheduler still fired %d times", rec.count())
	}
}
