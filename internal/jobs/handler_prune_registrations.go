package jobs

import (
	"context"
	"log/slog"
	"time"
)

// RegistrationPruner deletes registration intents older than a cutoff
type RegistrationPruner interface {
	PruneRegistrationIntents(cutoff time.Time) (int64, error)
}

// PruneRegistrationsHandler removes registration intents past retention
type PruneRegistrationsHandler struct {
	store     RegistrationPruner
	retention time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// NewPruneRegistrationsHandler creates a new prune handler
func NewPruneRegistrationsHandler(store RegistrationPruner, retention time.Duration, logger *slog.Logger) *PruneRegistrationsHandler {
	return &PruneRegistrationsHandler{
		store:     store,
		retention: retention,
		logger:    logger,
		now:       time.Now,
	}
}

// Handle prunes intents created before now minus retention
func (h *PruneRegistrationsHandler) Handle(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cutoff := h.now().Add(-h.retention)
	removed, err := h.store.PruneRegistrationIntents(cutoff)
	if err != nil {
		return err
	}

	if removed > 0 {
		h.logger.InfoContext(ctx, "pruned registration intents", "removed", removed, "cutoff", cutoff)
	}
	return nil
}
