package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newCommentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "comments <event-id>",
		Short: "List comments for an event",
		Long:  "List all comments for an event, oldest first. An unreachable server shows an empty list.",
		Args:  cobra.ExactArgs(1),
		RunE:  runComments,
	}
}

func runComments(cmd *cobra.Command, args []string) error {
	id, err := parseEventID(args[0])
	if err != nil {
		return err
	}

	s := newCommentStore()
	defer s.Close()

	if err := s.Fetch(cmd.Context(), id); err != nil {
		return err
	}
	comments := s.State().Comments

	if isJSON() {
		return printJSON(cmd.OutOrStdout(), comments)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Comments for event #%d:\n\n", id)
	printCommentList(cmd.OutOrStdout(), comments)
	return nil
}

// parseEventID parses a positive event id argument.
func parseEventID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid event ID: %s", arg)
	}
	return id, nil
}
