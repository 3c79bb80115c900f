package animation

import (
	"context"
	"time"
)

// DefaultFrameInterval approximates a display refresh.
const DefaultFrameInterval = 16 * time.Millisecond

// Loop serializes work and player ticks on one goroutine. Tasks posted
// from other goroutines run between ticks, so state touched by tasks and
// by the player is never accessed concurrently.
type Loop struct {
	player   *Player
	interval time.Duration
	tasks    chan func()
	done     chan struct{}
}

// NewLoop creates a loop ticking player every interval.
func NewLoop(player *Player, interval time.Duration) *Loop {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &Loop{
		player:   player,
		interval: interval,
		tasks:    make(chan func(), 64),
		done:     make(chan struct{}),
	}
}

// Post schedules task on the loop. It returns false once the loop stopped.
func (l *Loop) Post(task func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}

	select {
	case l.tasks <- task:
		return true
	case <-l.done:
		return false
	}
}

// Run processes tasks and ticks until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case task := <-l.tasks:
			task()
		case <-ticker.C:
			if l.player.Playing() {
				l.player.Tick()
			}
		}
	}
}
