package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/evcraddock/eventos/internal/comment"
	"github.com/evcraddock/eventos/internal/event"
)

// printJSON marshals v as indented JSON and writes it to w.
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printEvent prints a single event in text format.
func printEvent(w io.Writer, e *event.Event) {
	fmt.Fprintf(w, "Event #%d\n", e.ID)
	fmt.Fprintf(w, "  Title:     %s\n", e.Title)
	fmt.Fprintf(w, "  Date:      %s\n", e.Date)
	if e.Location != "" {
		fmt.Fprintf(w, "  Location:  %s\n", e.Location)
	}
	if e.Description != "" {
		fmt.Fprintf(w, "  About:     %s\n", e.Description)
	}
}

// printEventTable prints a list of events as a formatted table.
func printEventTable(out io.Writer, events []*event.Event) error {
	if len(events) == 0 {
		fmt.Fprintln(out, "No events found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "ID\tDATE\tTITLE\tLOCATION"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	if _, err := fmt.Fprintln(w, "--\t----\t-----\t--------"); err != nil {
		return fmt.Errorf("writing table separator: %w", err)
	}

	for _, e := range events {
		location := "-"
		if e.Location != "" {
			location = truncate(e.Location, 30)
		}
		if _, err := fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", e.ID, e.Date, truncate(e.Title, 40), location); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	fmt.Fprintf(out, "\nTotal: %d events\n", len(events))
	return nil
}

// printCommentList prints comments in text format.
func printCommentList(w io.Writer, comments []*comment.Comment) {
	if len(comments) == 0 {
		fmt.Fprintln(w, "No comments.")
		return
	}

	for _, c := range comments {
		author := c.Author
		if c.User != nil && c.User.Email != "" {
			author = fmt.Sprintf("%s <%s>", author, c.User.Email)
		}
		fmt.Fprintf(w, "[%s] #%d (%s)\n  %s\n\n",
			c.CreatedAt.Format("2006-01-02 15:04"), c.ID, author, c.Body)
	}
}

// truncate shortens a string to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
