package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check the connection to the server",
		Long:  "Calls GET /ping on the configured server and prints its answer.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func runStatus(ctx context.Context, w io.Writer) error {
	serverURL := getServerURL()
	fmt.Fprintf(w, "Server:  %s\n", serverURL)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	msg, err := newAPIClient().Ping(ctx)
	if err != nil {
		fmt.Fprintf(w, "Status:  ✗ cannot reach server (%v)\n", err)
		return nil
	}
	fmt.Fprintf(w, "Status:  ✓ connected (%s)\n", msg)
	return nil
}
