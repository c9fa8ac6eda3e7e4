package game

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

type removalKey struct {
	code string
	name string
}

// removalTask pairs a pending timer with the generation it was created
// under, so a stale timer callback can never act on a successor task
// scheduled for the same key.
type removalTask struct {
	timer *time.Timer
	gen   uint64
}

// RemovalScheduler defers hard removal of disconnected players: a
// transport disconnect schedules a task keyed by (session code, player
// name), and a reconnect within the grace period cancels it. Cancel is
// idempotent; cancelling an already-fired or unknown task is a no-op.
type RemovalScheduler struct {
	mu     sync.Mutex
	grace  time.Duration
	gen    uint64
	tasks  map[removalKey]removalTask
	expire func(code, name string)
	logger *zap.Logger
}

// NewRemovalScheduler creates a scheduler that calls expire after the
// grace period elapses without a cancellation.
func NewRemovalScheduler(grace time.Duration, expire func(code, name string), logger *zap.Logger) *RemovalScheduler {
	return &RemovalScheduler{
		grace:  grace,
		tasks:  make(map[removalKey]removalTask),
		expire: expire,
		logger: logger,
	}
}

// Schedule starts (or restarts) the removal countdown for a player.
func (rs *RemovalScheduler) Schedule(code, name string) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	key := removalKey{code: code, name: name}
	if task, ok := rs.tasks[key]; ok {
		task.timer.Stop()
	}
	rs.gen++
	gen := rs.gen
	timer := time.AfterFunc(rs.grace, func() {
		rs.fire(key, gen)
	})
	rs.tasks[key] = removalTask{timer: timer, gen: gen}
	rs.logger.Debug("removal scheduled",
		zap.String("session", code),
		zap.String("player", name),
		zap.Duration("grace", rs.grace),
	)
}

// Cancel stops a pending removal. Safe to call for tasks that never
// existed or already fired.
func (rs *RemovalScheduler) Cancel(code, name string) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	key := removalKey{code: code, name: name}
	if task, ok := rs.tasks[key]; ok {
		task.timer.Stop()
		delete(rs.tasks, key)
	}
}

// Stop cancels every pending removal.
func (rs *RemovalScheduler) Stop() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	for key, task := range rs.tasks {
		task.timer.Stop()
		delete(rs.tasks, key)
	}
}

// fire runs in the timer goroutine. The generation check makes races
// with Cancel and Schedule safe: a callback whose task was cancelled,
// or replaced by a newer schedule for the same key, is a no-op.
func (rs *RemovalScheduler) fire(key removalKey, gen uint64) {
	rs.mu.Lock()
	task, ok := rs.tasks[key]
	if !ok || task.gen != gen {
		rs.mu.Unlock()
		return
	}
	delete(rs.tasks, key)
	rs.mu.Unlock()

	rs.expire(key.code, key.name)
}
