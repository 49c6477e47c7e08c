package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/serene/internal/app/activity"
	"github.com/PabloGalante/serene/internal/app/feed"
	"github.com/PabloGalante/serene/internal/domain"
)

func feedCmd() *cobra.Command {
	var user, filter, output string
	var limit int

	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Show the activity feed grouped by day",
		Long:  `Merges moods, journals, breathing, chats, tasks and sleep into one feed, newest first. Use --limit 40, 60... to load more.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			out, err := app.Services.Feed.Feed(ctx, domain.UserID(user), feed.Query{Filter: filter, Limit: limit})
			if err != nil {
				return err
			}
			if output == "text" {
				printFeed(cmd.OutOrStdout(), out, app.Location)
				return nil
			}
			return render(cmd.OutOrStdout(), output, out)
		},
	}

	cmd.Flags().StringVar(&user, "user", "local", "User id")
	cmd.Flags().StringVar(&filter, "filter", "all", "Activity type (all, mood, journal, chat, breathing, task, sleep)")
	cmd.Flags().IntVar(&limit, "limit", activity.DefaultPageSize, "Max items")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format (text, json, yaml)")

	return cmd
}

func printFeed(w io.Writer, f activity.Feed, loc *time.Location) {
	if f.Len() == 0 {
		fmt.Fprintln(w, "No activity yet.")
		return
	}
	for _, g := range f.Groups {
		fmt.Fprintln(w, g.Label)
		for _, it := range g.Items {
			line := fmt.Sprintf("  %s  %-9s %s", it.Timestamp.Time(loc).Format("15:04"), it.Type, it.Title)
			if it.Subtitle != "" {
				line += " - " + it.Subtitle
			}
			fmt.Fprintln(w, line)
		}
	}
	if f.HasMore {
		fmt.Fprintf(w, "\nShowing %d of %d. Load more with --limit %d\n", f.Len(), f.Total, activity.NextLimit(f.Len()))
	}
}

func sessionsCmd() *cobra.Command {
	var user, output string

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List chat sessions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			sessions, err := app.Services.Feed.Sessions(ctx, domain.UserID(user))
			if err != nil {
				return err
			}
			if output != "text" {
				return render(cmd.OutOrStdout(), output, sessions)
			}

			w := cmd.OutOrStdout()
			if len(sessions) == 0 {
				fmt.Fprintln(w, "No chats yet.")
			}
			for _, s := range sessions {
				fmt.Fprintf(w, "%s  %3d msgs  %s\n",
					s.First().Timestamp.Time(app.Location).Format("2006-01-02 15:04"), len(s), clip(s.First().Text, 50))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "local", "User id")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format (text, json, yaml)")

	return cmd
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
