package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newUncommentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "uncomment <event-id> <comment-id>",
		Short: "Remove a comment from an event",
		Args:  cobra.ExactArgs(2),
		RunE:  runUncomment,
	}
}

func runUncomment(cmd *cobra.Command, args []string) error {
	eventID, err := parseEventID(args[0])
	if err != nil {
		return err
	}
	commentID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid comment ID: %s", args[1])
	}

	s := newCommentStore()
	defer s.Close()

	if err := s.Delete(cmd.Context(), eventID, commentID); err != nil {
		return err
	}

	if isJSON() {
		return printJSON(cmd.OutOrStdout(), map[string]interface{}{
			"eventoId":     eventID,
			"comentarioId": commentID,
			"removed":      true,
		})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Comment #%d removed.\n", commentID)
	return nil
}
