package httpserver

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/battleship/apps/go-server/internal/daily"
)

// janitor runs sweep on a ticker until ctx ends. A non-positive interval
// disables it.
func (s *Server) janitor(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.sweep(ctx)
		}
	}
}

// sweep evicts sessions older than SessionTTL, daily sessions from earlier
// days and rate-limit buckets idle longer than limiterIdle.
func (s *Server) sweep(ctx context.Context) {
	now := s.now()

	games := 0
	if s.cfg.SessionTTL > 0 {
		n, err := s.store.Prune(ctx, now.Add(-s.cfg.SessionTTL))
		if err != nil {
			log.Warn().Err(err).Msg("prune games")
		}
		games = n
	}
	days := s.daily.prune(ctx, daily.DateKey(now))
	clients := s.limiter.prune(now.Add(-limiterIdle))

	log.Debug().
		Int("games", games).
		Int("dailySessions", days).
		Int("clients", clients).
		Msg("sweep")
}
