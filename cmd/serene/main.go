package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "serene",
		Short:   "Serene - browse and log your wellness activity from the terminal",
		Version: version,
	}

	rootCmd.AddCommand(feedCmd())
	rootCmd.AddCommand(sessionsCmd())
	rootCmd.AddCommand(moodCmd())
	rootCmd.AddCommand(memoriesCmd())
	rootCmd.AddCommand(keygenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
