package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "boardctl",
		Short:         "boardctl - command line client for collab board",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("api-url", envOr("BOARD_API_URL", "http://localhost:8000/api/boards-service"), "Board API base URL (BOARD_API_URL)")
	flags.String("token", os.Getenv("BOARD_API_TOKEN"), "Bearer token (BOARD_API_TOKEN)")
	flags.Duration("timeout", defaultTimeout, "Request timeout")
	flags.BoolP("verbose", "v", false, "Log store activity to stderr")

	rootCmd.AddCommand(boardsCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(createBoardCmd())
	rootCmd.AddCommand(moveBoardCmd())
	rootCmd.AddCommand(addColumnCmd())
	rootCmd.AddCommand(addCardCmd())
	rootCmd.AddCommand(moveCardCmd())
	rootCmd.AddCommand(moveColumnCmd())
	rootCmd.AddCommand(shareCmd())
	rootCmd.AddCommand(unshareCmd())
	rootCmd.AddCommand(labelsCmd())
	rootCmd.AddCommand(usersCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(tokenCmd())

	return rootCmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
