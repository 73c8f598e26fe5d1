package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/catalog-management/internal/core/events"
	"github.com/frahmantamala/catalog-management/pkg/logger"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Inspect catalog events and publish test events through the audit handler`,
}

var listEventsCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog event types",
	Run: func(cmd *cobra.Command, args []string) {
		for _, eventType := range events.CatalogEventTypes {
			fmt.Println(eventType)
		}
	},
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [entity] [action] [id]",
	Short: "Publish a test catalog event",
	Long:  `Publish an entity change event to the event bus for testing and debugging`,
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q: %w", args[2], err)
		}
		return publishTestEvent(args[0], args[1], id)
	},
}

var eventActor string

func publishTestEvent(entity, action string, id int64) error {
	lg := logger.LoggerWrapper()

	eventBus := events.NewEventBus(lg)
	events.NewAuditLogger(lg).Register(eventBus)

	event := events.NewEntityChangedEvent(entity, action, id, eventActor)
	known := false
	for _, eventType := range events.CatalogEventTypes {
		if eventType == event.EventType() {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown event type %q", event.EventType())
	}

	lg.Info("publishing test event", "event_type", event.EventType(), "event_id", event.EventID())
	if err := eventBus.Publish(context.Background(), event); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	eventBus.Wait()

	lg.Info("test event published successfully")
	return nil
}

func init() {
	publishEventCmd.Flags().StringVar(&eventActor, "actor", "cli", "Actor recorded on the event")

	eventCmd.AddCommand(listEventsCmd)
	eventCmd.AddCommand(publishEventCmd)

	rootCmd.AddCommand(eventCmd)
}
