package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newCommentCmd() *cobra.Command {
	var (
		author string
		userID int64
	)

	cmd := &cobra.Command{
		Use:   `comment <event-id> "text"`,
		Short: "Add a comment to an event",
		Long:  "Add a text comment to an event. The author defaults to $USER.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEventID(args[0])
			if err != nil {
				return err
			}

			text := strings.TrimSpace(strings.Join(args[1:], " "))
			if text == "" {
				return fmt.Errorf("comment text is required")
			}
			if author == "" {
				author = os.Getenv("USER")
			}
			var uid *int64
			if cmd.Flags().Changed("user-id") {
				uid = &userID
			}

			s := newCommentStore()
			defer s.Close()

			if err := s.Add(cmd.Context(), id, author, text, uid); err != nil {
				return err
			}
			comments := s.State().Comments

			if isJSON() {
				return printJSON(cmd.OutOrStdout(), comments)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Comment added to event #%d (%d total).\n", id, len(comments))
			return nil
		},
	}

	cmd.Flags().StringVar(&author, "author", "", "author name")
	cmd.Flags().Int64Var(&userID, "user-id", 0, "id of the user writing the comment")

	return cmd
}
