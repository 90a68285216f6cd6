package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/quizdeck/quizdeck-backend/internal/config"
	"github.com/quizdeck/quizdeck-backend/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	// LeaderboardPollTimeout bounds each BLPop so shutdown is noticed quickly.
	LeaderboardPollTimeout = 1 * time.Second
	// LeaderboardDedupWindow collapses refreshes for the same quiz queued in
	// quick succession, e.g. a burst of players finishing together.
	LeaderboardDedupWindow = 2 * time.Second
)

// LeaderboardWorker consumes quiz IDs queued after each completed attempt and
// recomputes the cached ranking. Keeping this off the play path means a slow
// recompute never delays the player's summary.
type LeaderboardWorker struct {
	leaderboards *service.LeaderboardService
	rdb          *redis.Client
	log          zerolog.Logger
}

func NewLeaderboardWorker(leaderboards *service.LeaderboardService, rdb *redis.Client, log zerolog.Logger) *LeaderboardWorker {
	return &LeaderboardWorker{
		leaderboards: leaderboards,
		rdb:          rdb,
		log:          log.With().Str("component", "leaderboard_worker").Logger(),
	}
}

// Start runs the worker loop until ctx is cancelled, then drains whatever is
// still queued so no completed attempt is left out of the cached ranking.
func (w *LeaderboardWorker) Start(ctx context.Context) {
	w.log.Info().Msg("LeaderboardWorker started")

	recent := make(map[uuid.UUID]time.Time)

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Draining refresh queue...")
			w.drain()
			return

		default:
			item, err := w.rdb.BLPop(ctx, LeaderboardPollTimeout, config.WorkerKey.LeaderboardRefreshQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}
			if len(item) < 2 {
				continue
			}

			quizID, err := uuid.Parse(item[1])
			if err != nil {
				w.log.Error().Err(err).Str("raw", item[1]).Msg("Invalid quiz ID in refresh queue")
				continue
			}

			if at, ok := recent[quizID]; ok && time.Since(at) < LeaderboardDedupWindow {
				continue
			}
			recent[quizID] = time.Now()
			for id, at := range recent {
				if time.Since(at) >= LeaderboardDedupWindow {
					delete(recent, id)
				}
			}

			w.refresh(ctx, quizID)
		}
	}
}

// drain processes queued refreshes without blocking, used during shutdown.
func (w *LeaderboardWorker) drain() {
	ctx := context.Background()

	for {
		item, err := w.rdb.LPop(ctx, config.WorkerKey.LeaderboardRefreshQueue).Result()
		if err != nil {
			if err != redis.Nil {
				w.log.Error().Err(err).Msg("Drain LPop error")
			}
			return
		}

		quizID, err := uuid.Parse(item)
		if err != nil {
			continue
		}
		w.refresh(ctx, quizID)
	}
}

func (w *LeaderboardWorker) refresh(ctx context.Context, quizID uuid.UUID) {
	entries, err := w.leaderboards.Refresh(ctx, quizID)
	if err != nil {
		// Quiz may have been deleted since the attempt was queued.
		w.log.Warn().Err(err).Str("quiz_id", quizID.String()).Msg("Leaderboard refresh failed")
		return
	}

	w.log.Debug().
		Str("quiz_id", quizID.String()).
		Int("entries", len(entries)).
		Msg("Leaderboard refreshed")
}
