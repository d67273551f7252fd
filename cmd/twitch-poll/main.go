package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "twitch-poll",
	Short: "Run Twitch channel polls from the terminal",
	Long: `twitch-poll authorizes against Twitch as the broadcaster, then creates
polls on the channel, follows their tallies and posts announcements.

Configuration comes from the environment or a .env file.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(authCmd, whoamiCmd, pollCmd, announceCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logrus.Errorf("%+v", err)
		os.Exit(1)
	}
}
