package main

import (
	"strings"

	"twitch_poll_client/internal/models"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var announceColor string

var announceCmd = &cobra.Command{
	Use:   "announce <message>",
	Short: "Post a highlighted announcement in the channel chat",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAnnounce,
}

func init() {
	announceCmd.Flags().StringVar(&announceColor, "color", string(models.AnnouncementPrimary), "blue, green, orange, purple or primary")
}

func runAnnounce(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	session, err := a.authorized()
	if err != nil {
		return err
	}

	call, err := session.MakeAnnouncement(ctx, strings.Join(args, " "), models.AnnouncementColor(announceColor))
	if err != nil {
		return errors.Wrap(err, "MakeAnnouncement")
	}

	if _, err := call.Wait(ctx); err != nil {
		return errors.Wrap(err, "MakeAnnouncement")
	}

	logrus.Info("announcement sent")
	return nil
}
