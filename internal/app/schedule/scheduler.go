package schedule

import (
	"context"
	"log/slog"
	"time"
)

// Task is one recurring housekeeping job, such as expiring idempotency
// records.
type Task interface {
	Name() string
	Run(ctx context.Context, now time.Time) error
}

// Janitor runs its tasks on a fixed interval until the context is done.
type Janitor struct {
	Interval time.Duration
	Tasks    []Task
	Log      *slog.Logger
}

func (j *Janitor) Run(ctx context.Context) {
	interval := j.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			for _, task := range j.Tasks {
				if err := task.Run(ctx, now.UTC()); err != nil && j.Log != nil {
					j.Log.Warn("scheduled task failed", "task", task.Name(), "error", err)
				}
			}
		}
	}
}

// TaskFunc adapts a function to the Task interface.
type TaskFunc struct {
	TaskName string
	Fn       func(ctx context.Context, now time.Time) error
}

func (t TaskFunc) Name() string { return t.TaskName }

func (t TaskFunc) Run(ctx context.Context, now time.Time) error { return t.Fn(ctx, now) }
