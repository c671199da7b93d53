package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"results_sync/internal/domain"
	"results_sync/internal/platform/logging"
)

// CatalogService imports the event and race catalog from the timing API.
type CatalogService struct {
	client    TimingClient
	events    EventStore
	txManager TransactionManager
	logger    *logging.Logger
}

func NewCatalogService(client TimingClient, events EventStore, txManager TransactionManager, logger *logging.Logger) *CatalogService {
	return &CatalogService{
		client:    client,
		events:    events,
		txManager: txManager,
		logger:    logger.With("component", "catalog"),
	}
}

// ImportEvents stores every listed event with its races. An event whose race
// list fails is stored without touching its races.
func (c *CatalogService) ImportEvents(ctx context.Context) (*domain.ImportStats, error) {
	startTime := time.Now()

	events, err := c.client.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	c.logger.InfoContext(ctx, "fetched events from timing api", "count", len(events))

	stats := &domain.ImportStats{}
	for i := range events {
		event := &events[i]

		races, err := c.client.ListRaces(ctx, event.ID)
		racesOK := err == nil
		if err != nil {
			if errors.Is(err, domain.ErrAuth) {
				return stats, fmt.Errorf("list races for event %d: %w", event.ID, err)
			}
			c.logger.WarnContext(ctx, "failed to list races", "event_id", event.ID, "error", err)
			stats.RaceFailures++
		}

		err = c.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
			if err := c.events.UpsertEvent(txCtx, event); err != nil {
				return fmt.Errorf("upsert event: %w", err)
			}
			if !racesOK {
				return nil
			}
			if err := c.events.ReplaceRaces(txCtx, event.ID, races); err != nil {
				return fmt.Errorf("replace races: %w", err)
			}
			return nil
		})
		if err != nil {
			return stats, fmt.Errorf("store event %d: %w", event.ID, err)
		}

		stats.Events++
		stats.Races += len(races)
	}

	stats.Duration = time.Since(startTime)

	c.logger.InfoContext(ctx, "import completed",
		"events", stats.Events,
		"races", stats.Races,
		"race_failures", stats.RaceFailures,
		"duration", stats.Duration,
	)

	return stats, nil
}

// Event returns a stored event with its races.
func (c *CatalogService) Event(ctx context.Context, id int64) (*domain.Event, error) {
	return c.events.GetEvent(ctx, id)
}
