package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"results_sync/internal/domain"
)

var forceSync bool

var watchCmd = &cobra.Command{
	Use:   "watch [event-id]",
	Short: "Poll a live event and keep its results fresh",
	Long: `watch syncs the event once, then forces a fresh sync on every tick while
the event is live. Without an argument the configured live.event is watched,
or else the first stored event starting today.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

var syncCmd = &cobra.Command{
	Use:   "sync <event-id>",
	Short: "Run one sync pass for an event",
	Args:  cobra.ExactArgs(1),
	RunE:  runSync,
}

var importEventsCmd = &cobra.Command{
	Use:   "import-events",
	Short: "Import the event and race catalog from the timing API",
	Args:  cobra.NoArgs,
	RunE:  runImportEvents,
}

var resyncCmd = &cobra.Command{
	Use:   "resync <event-id>",
	Short: "Ask every syncer to refetch an event on its next pass",
	Args:  cobra.ExactArgs(1),
	RunE:  runResync,
}

var statusCmd = &cobra.Command{
	Use:   "status <event-id>",
	Short: "Show the live state and cache state of an event",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func init() {
	syncCmd.Flags().BoolVar(&forceSync, "force", false, "bypass the cache and fetch fresh results")

	rootCmd.AddCommand(watchCmd, syncCmd, importEventsCmd, resyncCmd, statusCmd)
}

func parseEventID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid event id %q", arg)
	}
	return id, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context, a *app) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		select {
		case sig := <-sigCh:
			a.logger.Info("received shutdown signal", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := signalContext(cmd.Context(), a)
	defer cancel()

	eventID, err := a.watchTarget(ctx, args)
	if err != nil {
		return err
	}

	a.serveMetrics(ctx)

	if _, err := a.sync.SyncEvent(ctx, eventID, domain.SyncOptions{}); err != nil {
		a.logger.Warn("initial sync failed", "event_id", eventID, "error", err)
	}

	state, err := a.scheduler.Watch(ctx, eventID)
	if err != nil {
		return err
	}

	a.logger.Info("starting results syncer",
		"event_id", eventID,
		"live", state.Phase,
		"interval", state.Interval,
	)

	select {
	case <-ctx.Done():
	case <-a.scheduler.Done():
		a.logger.Info("event is not live, nothing left to poll", "event_id", eventID)
	}
	return nil
}

// watchTarget resolves the event to watch from args, config, or today's schedule.
func (a *app) watchTarget(ctx context.Context, args []string) (int64, error) {
	if len(args) == 1 {
		return parseEventID(args[0])
	}
	if a.cfg.Live.Event > 0 {
		return a.cfg.Live.Event, nil
	}

	loc, err := a.cfg.Live.Location()
	if err != nil {
		return 0, err
	}
	y, m, d := time.Now().In(loc).Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, loc)

	events, err := a.events.ListStartingBetween(ctx, from, from.AddDate(0, 0, 1))
	if err != nil {
		return 0, fmt.Errorf("list today's events: %w", err)
	}
	if len(events) == 0 {
		return 0, errors.New("no event id given and no stored event starts today")
	}
	return events[0].ID, nil
}

func runSync(cmd *cobra.Command, args []string) error {
	eventID, err := parseEventID(args[0])
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.sync.SyncEvent(cmd.Context(), eventID, domain.SyncOptions{Force: forceSync})
	if result != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "event %d: %d results (%s)\n", eventID, len(result.Results), result.Source)
		if result.Stats != nil {
			for _, w := range result.Stats.Warnings {
				fmt.Fprintf(cmd.OutOrStdout(), "warning: %s %s\n", w.Identity, w.Message)
			}
		}
	}
	return err
}

func runImportEvents(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	stats, err := a.catalog.ImportEvents(cmd.Context())
	if stats != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d events, %d races (%d race lists failed)\n",
			stats.Events, stats.Races, stats.RaceFailures)
	}
	return err
}

func runResync(cmd *cobra.Command, args []string) error {
	eventID, err := parseEventID(args[0])
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	version, err := a.sync.RequestResync(cmd.Context(), eventID)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "event %d: sync version %d\n", eventID, version)
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	eventID, err := parseEventID(args[0])
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	event, err := a.catalog.Event(ctx, eventID)
	if err != nil {
		return err
	}
	state, err := a.syncState.Get(ctx, eventID)
	if err != nil {
		return fmt.Errorf("read sync state: %w", err)
	}
	cached, err := a.results.CountByEvent(ctx, eventID)
	if err != nil {
		return fmt.Errorf("count cached results: %w", err)
	}

	live := a.scheduler.IsLive(event)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "event:        %d %s\n", event.ID, event.Name)
	fmt.Fprintf(out, "races:        %d\n", len(event.Races))
	fmt.Fprintf(out, "live:         %s\n", live.Phase)
	if live.IsLive() {
		fmt.Fprintf(out, "poll every:   %s\n", live.Interval)
	}
	fmt.Fprintf(out, "cached:       %d\n", cached)
	fmt.Fprintf(out, "sync version: %d\n", state.SyncVersion)
	if state.LastSyncedAt.IsZero() {
		fmt.Fprintln(out, "last synced:  never")
	} else {
		fmt.Fprintf(out, "last synced:  %s\n", state.LastSyncedAt.Format(time.RFC3339))
	}
	return nil
}
