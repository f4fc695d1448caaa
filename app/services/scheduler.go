package services

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/ThariniLelwala/EduBloom-sub000/app/config"
	"github.com/ThariniLelwala/EduBloom-sub000/app/database"
)

// StartScheduler runs the background token sweep. It does nothing unless a
// session TTL is configured; without one, tokens live until superseded or
// revoked and there is nothing to clean up.
func StartScheduler(store database.Store, cfg config.SessionConfig, log zerolog.Logger) {
	if cfg.TTL <= 0 {
		return
	}

	interval := cfg.CleanupInterval
	if interval <= 0 {
		interval = 10 * time.Minute
	}

	go func() {
		log.Info().Dur("ttl", cfg.TTL).Dur("interval", interval).Msg("session cleanup scheduler started")
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for range ticker.C {
			cutoff := time.Now().Add(-cfg.TTL)
			n, err := store.Users().ClearSessionTokensBefore(cutoff)
			if err != nil {
				log.Error().Err(err).Msg("failed to clear expired session tokens")
				continue
			}
			if n > 0 {
				log.Info().Int64("cleared", n).Msg("expired session tokens cleared")
			}
		}
	}()
}
