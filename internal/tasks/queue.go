// Package tasks runs detached side effects on a bounded worker pool.
//
// Operations that must not block or fail their triggering call (usage-limit
// creation after a category create, the reassignment pipeline after a
// category delete) are enqueued here. Task failures are logged by the
// workers and never reach the original caller.
package tasks

import (
	"context"

	"golang.org/x/sync/errgroup"

	"billplan/internal/logger"
)

// Task is a named unit of detached work.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Queue is a bounded in-process task queue processed by a fixed worker pool.
type Queue struct {
	tasks   chan Task
	workers int
}

// NewQueue creates a queue holding at most size pending tasks, processed by
// the given number of workers.
func NewQueue(size, workers int) *Queue {
	if size <= 0 {
		size = 1
	}
	if workers <= 0 {
		workers = 1
	}
	return &Queue{
		tasks:   make(chan Task, size),
		workers: workers,
	}
}

// Enqueue hands a task to the pool without blocking. When the queue is full
// the task is dropped and logged; this is the at-most-once, fire-and-forget
// policy for detached side effects.
func (q *Queue) Enqueue(name string, fn func(ctx context.Context) error) bool {
	select {
	case q.tasks <- Task{Name: name, Run: fn}:
		return true
	default:
		logger.Get().Errorw("task queue full, dropping task", "task", name)
		return false
	}
}

// Run processes tasks until the context is canceled. It returns the context
// error on shutdown.
func (q *Queue) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < q.workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case task := <-q.tasks:
					if err := task.Run(ctx); err != nil {
						logger.Get().Errorw("task failed", "task", task.Name, "error", err)
					}
				}
			}
		})
	}
	return g.Wait()
}
