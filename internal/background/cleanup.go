package background

import (
	"context"
	"log/slog"
	"time"
)

// CleanupTask is one named sweep invoked on each tick. It returns how many
// records it removed.
type CleanupTask struct {
	Name string
	Run  func(ctx context.Context) (int64, error)
}

// CleanupManager owns the periodic maintenance ticker: expired lockouts,
// stale failed attempts and dead rate-limit counters. The deletion logic
// lives on the services; the manager only schedules it.
type CleanupManager struct {
	tasks    []CleanupTask
	logger   *slog.Logger
	interval time.Duration
	stopCh   chan struct{}
}

func NewCleanupManager(tasks []CleanupTask, interval time.Duration, logger *slog.Logger) *CleanupManager {
	return &CleanupManager{
		tasks:    tasks,
		logger:   logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start runs the cleanup loop until Stop is called or the context ends.
// The first sweep runs immediately.
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	cm.runAll(ctx)

	for {
		select {
		case <-ticker.C:
			cm.runAll(ctx)
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

// Stop signals the cleanup loop to exit.
func (cm *CleanupManager) Stop() {
	close(cm.stopCh)
}

func (cm *CleanupManager) runAll(ctx context.Context) {
	for _, task := range cm.tasks {
		taskCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		removed, err := task.Run(taskCtx)
		cancel()

		if err != nil {
			cm.logger.Error("cleanup task failed",
				slog.String("task", task.Name),
				slog.Any("error", err),
			)
			continue
		}
		if removed > 0 {
			cm.logger.Info("cleanup task completed",
				slog.String("task", task.Name),
				slog.Int64("removed", removed),
			)
		}
	}
}
