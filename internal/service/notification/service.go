package notification

import (
	"context"
	"fmt"

	telegram_client "twitch_poll_client/internal/client/telegram-client"
	"twitch_poll_client/internal/models"
	twitch_poll "twitch_poll_client/internal/service/twitch-poll"
	formater "twitch_poll_client/internal/utils/formater"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// PollResults is the part of *twitch_poll.Poll the notification reads.
type PollResults interface {
	Title() string
	Answers() []twitch_poll.Answer
}

type PollResultsService struct {
	telegramClient *telegram_client.TelegramClient
	chatID         int64
}

func NewPollResultsService(telegramClient *telegram_client.TelegramClient, chatID int64) *PollResultsService {
	return &PollResultsService{
		telegramClient: telegramClient,
		chatID:         chatID,
	}
}

// ThrowResults posts the tally to the chat with a button to the channel.
func (ps *PollResultsService) ThrowResults(ctx context.Context, poll PollResults, login string) error {
	answers := poll.Answers()

	msg := tgbotapi.NewMessage(ps.chatID, formater.PollResultsText(formater.TwitchTagToTelegram(poll.Title()), answers))

	twitchLink := fmt.Sprintf("%s/%s", models.TwitchWWWSchemeHost, login)
	msg = formater.CreateTelegramSingleButtonLink(msg, twitchLink, "Open the channel", 0)

	// using Markdown for hyperlinks
	msg.ParseMode = tgbotapi.ModeMarkdown

	// trying to send message once
	_, err := ps.telegramClient.Send(ctx, msg)
	if err == nil {
		return nil
	}
	if errors.Is(err, telegram_client.ErrNoBotToken) {
		return err
	}
	logrus.Infof("ThrowResults: first try: telegram send message error: %v", err)

	msg.Text = formater.PollResultsText(formater.ClearTags(poll.Title()), answers)

	// not using any parse mods
	msg.ParseMode = ""

	// trying to send message again but without tags
	_, err = ps.telegramClient.Send(ctx, msg)
	if err != nil {
		logrus.Infof("ThrowResults: second try: telegram send message error: %v", err)
		return errors.Wrap(err, "Send")
	}

	return nil
}
