package sync

import (
	"context"

	"github.com/cneltyn-s/shekel-streamer/internal/config"
	"github.com/cneltyn-s/shekel-streamer/internal/logger"
)

// TaskSyncer runs one task end to end.
type TaskSyncer interface {
	SyncTask(ctx context.Context, task config.Task) error
}

// Runner executes all configured tasks sequentially. A failing task is
// logged with its identity and the run moves on; one misbehaving account
// never blocks the others.
type Runner struct {
	syncer TaskSyncer
	tasks  []config.Task
}

// NewRunner creates a runner over the given tasks.
func NewRunner(syncer TaskSyncer, tasks []config.Task) *Runner {
	return &Runner{syncer: syncer, tasks: tasks}
}

// RunAll syncs every task once.
func (r *Runner) RunAll(ctx context.Context) {
	log := logger.FromContext(ctx)
	log.Info().Int("tasks", len(r.tasks)).Msg("Starting sync run")
	for _, task := range r.tasks {
		r.runOne(ctx, task)
	}
	log.Info().Msg("Sync run finished")
}

func (r *Runner) runOne(ctx context.Context, task config.Task) {
	log := logger.FromContext(ctx).With().
		Str("user", task.User).Str("company", task.Company).Logger()

	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Msg("Task panicked")
		}
	}()

	if err := r.syncer.SyncTask(ctx, task); err != nil {
		log.Error().Err(err).Msg("Task failed")
	}
}
