// Package scheduler runs periodic background jobs.
package scheduler

import (
	"context"
	"log"
	"time"
)

// Task is one run of a periodic job.
type Task func(ctx context.Context) error

// Every runs task immediately and then on every tick until ctx is done. Errors
// are logged and do not stop the loop. Every blocks; callers start it in a
// goroutine.
func Every(ctx context.Context, interval time.Duration, name string, task Task) {
	if interval <= 0 {
		log.Printf("scheduler job=%s disabled interval=%s", name, interval)
		return
	}

	t := time.NewTicker(interval)
	defer t.Stop()

	run(ctx, name, task)
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			run(ctx, name, task)
		}
	}
}

func run(ctx context.Context, name string, task Task) {
	if ctx.Err() != nil {
		return
	}
	started := time.Now()
	if err := task(ctx); err != nil {
		log.Printf("scheduler job=%s error=%v", name, err)
		return
	}
	log.Printf("scheduler job=%s completed duration=%s", name, time.Since(started))
}
