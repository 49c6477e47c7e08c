package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/serene/internal/domain"
)

func moodCmd() *cobra.Command {
	var user, mood, note string

	cmd := &cobra.Command{
		Use:   "mood",
		Short: "Log how you feel (Happy, Calm, Neutral, Sad, Anxious, Angry)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			entry, err := app.Services.Logbook.LogMood(ctx, domain.UserID(user), domain.MoodType(mood), note)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %s at %s\n", entry.Mood, entry.Timestamp.Time(app.Location).Format("15:04"))
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "local", "User id")
	cmd.Flags().StringVar(&mood, "mood", "", "Mood to log")
	cmd.Flags().StringVar(&note, "note", "", "Optional note")
	_ = cmd.MarkFlagRequired("mood")

	return cmd
}
