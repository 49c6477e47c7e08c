package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/serene/internal/adapters/crypto"
	"github.com/PabloGalante/serene/internal/config"
)

func keygenCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Create the encryption key used for moods and journals",
		Long:  `Creates the key file if it does not exist yet. An existing key is never replaced, since entries sealed with it could no longer be read.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				path = cfg.KeyPath
			}
			if _, err := crypto.LoadOrCreateKey(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Key ready at %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "Key file (default from SERENE_KEY_PATH)")

	return cmd
}
