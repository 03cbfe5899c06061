package cli

import (
	"github.com/spf13/cobra"

	"github.com/evcraddock/eventos/internal/event"
)

func newEventsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "events",
		Short: "List events",
		Long:  "List all events, soonest first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := newAPIClient().ListEvents(cmd.Context())
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), events)
			}
			return printEventTable(cmd.OutOrStdout(), events)
		},
	}
}

func newEventAddCmd() *cobra.Command {
	var in event.Input

	cmd := &cobra.Command{
		Use:   `event-add "title" --date YYYY-MM-DD`,
		Short: "Create an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Title = args[0]
			e, err := newAPIClient().AddEvent(cmd.Context(), in)
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), e)
			}
			printEvent(cmd.OutOrStdout(), e)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Date, "date", "", "event date (required)")
	cmd.Flags().StringVar(&in.Description, "description", "", "event description")
	cmd.Flags().StringVar(&in.Location, "location", "", "where the event takes place")
	_ = cmd.MarkFlagRequired("date")

	return cmd
}
