// Package cli defines the cobra command tree for eventos.
package cli

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/evcraddock/eventos/internal/client"
	"github.com/evcraddock/eventos/internal/db"
	"github.com/evcraddock/eventos/internal/logging"
	"github.com/evcraddock/eventos/internal/store"
)

var (
	flagFormat  string
	flagDB      string
	flagVerbose bool
)

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ev",
		Short:         "Campus events and their comments",
		Long:          "Run the eventos API server, or browse events and manage their comments from the command line.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagVerbose {
				slog.SetDefault(logging.New(cmd.ErrOrStderr(), true))
			}
		},
	}

	root.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format (text|json)")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging to stderr")
	root.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path (default: $EV_DB or ~/.config/ev/eventos.db)")

	root.AddCommand(
		newServeCmd(),
		newEventsCmd(),
		newEventAddCmd(),
		newCommentsCmd(),
		newCommentCmd(),
		newUncommentCmd(),
		newStatusCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)

	return root
}

// openDB opens the SQLite database using the --db flag, then fallback, then
// the default path.
func openDB(fallback string) (*sql.DB, error) {
	path := flagDB
	if path == "" {
		path = fallback
	}
	if path == "" {
		var err error
		path, err = db.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return db.Open(path)
}

// newAPIClient creates an HTTP client for the eventos API.
func newAPIClient() *client.Client {
	return client.New(getServerURL())
}

// newCommentStore creates a comment store backed by the API client. State
// changes are logged at debug level.
func newCommentStore() *store.CommentStore {
	s := store.New(newAPIClient())
	s.Subscribe(func(st store.State) {
		slog.Debug("comment state", "comments", len(st.Comments), "loading", st.Loading, "error", st.Err)
	})
	return s
}

// isJSON returns true if the --format flag is set to json.
func isJSON() bool {
	return flagFormat == "json"
}

// closeDB closes the database, logging any error to stderr.
func closeDB(database *sql.DB) {
	if err := database.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: closing database: %v\n", err)
	}
}
