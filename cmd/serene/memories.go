package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/serene/internal/domain"
)

func memoriesCmd() *cobra.Command {
	var user, forget string

	cmd := &cobra.Command{
		Use:   "memories",
		Short: "List what the assistant remembers about you",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			uid := domain.UserID(user)
			if forget != "" {
				if err := app.Services.Memory.Delete(ctx, uid, forget); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Forgot %s\n", forget)
				return nil
			}

			mems, err := app.Services.Memory.List(ctx, uid)
			if err != nil {
				return err
			}
			if len(mems) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing remembered yet.")
				return nil
			}
			for _, m := range mems {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s\n", m.ID, m.CreatedAt.Time(app.Location).Format("2006-01-02"), m.Text)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "local", "User id")
	cmd.Flags().StringVar(&forget, "forget", "", "Delete the memory with this id")

	return cmd
}
