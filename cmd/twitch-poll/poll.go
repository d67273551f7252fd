package main

import (
	"context"
	"fmt"
	"io"
	"time"

	telegramClient "twitch_poll_client/internal/client/telegram-client"
	notificationService "twitch_poll_client/internal/service/notification"
	twitch_poll "twitch_poll_client/internal/service/twitch-poll"
	twitch_session "twitch_poll_client/internal/service/twitch-session"
	formater "twitch_poll_client/internal/utils/formater"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	pollTitle    string
	pollDuration time.Duration
	pollChoices  []string
	pollInterval time.Duration
	pollNotify   bool
)

var pollCmd = &cobra.Command{
	Use:   "poll",
	Short: "Create a poll and follow it until it ends",
	Long: `Creates a poll on the channel and prints the tallies while it runs.
Interrupting the command terminates the poll early and prints the final tally.

Example:
  twitch-poll poll --title "Best?" --duration 1m --choice A --choice B`,
	RunE: runPoll,
}

func init() {
	pollCmd.Flags().StringVar(&pollTitle, "title", "", "Poll question, at most 60 characters")
	pollCmd.Flags().DurationVar(&pollDuration, "duration", time.Minute, "How long the poll runs, 15s to 30m")
	pollCmd.Flags().StringArrayVar(&pollChoices, "choice", nil, "A choice, 2 to 5 of them, at most 25 characters each")
	pollCmd.Flags().DurationVar(&pollInterval, "interval", 5*time.Second, "How often to refresh the tallies")
	pollCmd.Flags().BoolVar(&pollNotify, "notify", true, "Post the results to Telegram when configured")

	_ = pollCmd.MarkFlagRequired("title")
}

func runPoll(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	durationSeconds := int(pollDuration / time.Second)
	if err := twitch_poll.Validate(pollTitle, durationSeconds, pollChoices); err != nil {
		return err
	}
	if pollInterval <= 0 {
		return errors.Wrapf(twitch_poll.ErrInvalidInterval, "--interval %s", pollInterval)
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	session, err := a.authorized()
	if err != nil {
		return err
	}
	if !session.CanCreatePoll() {
		logrus.Infof("channel is neither affiliate nor partner, Twitch will likely refuse the poll")
	}

	validationCtx, stopValidation := context.WithCancel(ctx)
	defer stopValidation()
	go session.ValidateBg(validationCtx, twitch_session.TokenValidationInterval, func(err error) {
		logrus.Errorf("token was revoked while the poll runs: %v", err)
	})

	// The poll outlives an interrupt long enough to be terminated.
	p, err := twitch_poll.Create(context.WithoutCancel(ctx), session, pollTitle, durationSeconds, pollChoices)
	if err != nil {
		return errors.Wrap(err, "Create")
	}

	err = p.Watch(ctx, pollInterval, func(p *twitch_poll.Poll) {
		printTally(out, p)
	})
	if errors.Is(err, context.Canceled) && p.Started() {
		err = finish(p)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(out, formater.PollResultsText(p.Title(), p.Answers()))

	if pollNotify && a.cfg.NotificationsEnabled() {
		identity, _ := session.Identity()
		results := notificationService.NewPollResultsService(telegramClient.NewTelegramClient(a.cfg.TelegramAPIToken), a.cfg.TelegramChatID)
		if err := results.ThrowResults(context.WithoutCancel(ctx), p, identity.Login); err != nil {
			return errors.Wrap(err, "ThrowResults")
		}
	}

	return nil
}

// finish terminates a poll that is still running, or collects the final tally
// of one that already ended on its own.
func finish(p *twitch_poll.Poll) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// a refresh may still be settling
	if err := p.WaitIdle(ctx); err != nil {
		logrus.Infof("last refresh failed: %v", err)
	}

	if !p.Ongoing() {
		if !p.Refresh(ctx, nil) {
			return errors.New("cannot refresh the poll")
		}
		return errors.Wrap(p.WaitIdle(ctx), "Refresh")
	}

	if !p.Terminate(ctx, nil) {
		return errors.New("cannot terminate the poll")
	}

	if err := p.WaitIdle(ctx); err != nil {
		return errors.Wrap(err, "Terminate")
	}

	logrus.Infof("poll %s terminated", p.ID())
	return nil
}

func printTally(out io.Writer, p *twitch_poll.Poll) {
	fmt.Fprintf(out, "[%s left]", formater.CreatePollDuration(p.Remaining()))
	for _, a := range p.Answers() {
		fmt.Fprintf(out, " %s: %d", a.Title, a.Votes)
	}
	fmt.Fprintln(out)
}
