// Package jobs runs the out-of-band photo garbage collection. The
// replace/delete sequencing tolerates transient orphans in the photo
// bucket; the sweep reclaims them.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"inventory/api/internal/repository"
	"inventory/api/internal/storage"
)

type Scheduler struct {
	cron     *cron.Cron
	items    *repository.ItemRepository
	store    *storage.ObjectStore
	schedule string
	minAge   time.Duration
	log      zerolog.Logger
}

func NewScheduler(items *repository.ItemRepository, store *storage.ObjectStore, schedule string, minAge time.Duration, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		items:    items,
		store:    store,
		schedule: schedule,
		minAge:   minAge,
		log:      log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.sweepOrphans); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop waits for a running sweep to finish, up to a grace period.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
	}
}

// sweepOrphans deletes bucket objects no item references. Only objects
// older than the configured minimum age are touched, so an upload racing
// the sweep between object put and record insert is left alone.
func (s *Scheduler) sweepOrphans() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	referenced, err := s.items.ReferencedPhotoKeys(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("orphan sweep: list referenced keys failed")
		return
	}

	objects, err := s.store.List(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("orphan sweep: list bucket failed")
		return
	}

	cutoff := time.Now().Add(-s.minAge)
	removed := 0
	for _, obj := range objects {
		if _, ok := referenced[obj.Key]; ok {
			continue
		}
		if obj.LastModified.After(cutoff) {
			continue
		}
		if err := s.store.Remove(ctx, obj.Key); err != nil {
			s.log.Warn().Err(err).Str("photo_key", obj.Key).Msg("orphan sweep: remove failed")
			continue
		}
		removed++
	}

	if removed > 0 {
		s.log.Info().Int("removed", removed).Msg("orphan sweep reclaimed objects")
	}
}
