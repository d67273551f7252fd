package telegram_client

import (
	"context"
	"net/http"
	"time"

	tgBotApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var ErrNoBotToken = errors.New("telegram bot token is not set")

type TelegramClient struct {
	token       string
	apiEndpoint string
	httpClient  *http.Client
}

func NewTelegramClient(token string) *TelegramClient {
	return NewTelegramClientWithEndpoint(token, tgBotApi.APIEndpoint, nil)
}

// NewTelegramClientWithEndpoint takes a Bot API endpoint format such as
// tgBotApi.APIEndpoint, with the token and method as its two verbs.
func NewTelegramClientWithEndpoint(token, apiEndpoint string, httpClient *http.Client) *TelegramClient {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: time.Second * 10,
		}
	}

	return &TelegramClient{
		token:       token,
		apiEndpoint: apiEndpoint,
		httpClient:  httpClient,
	}
}

func (tc *TelegramClient) bot() (*tgBotApi.BotAPI, error) {
	if tc.token == "" {
		return nil, ErrNoBotToken
	}

	bot, err := tgBotApi.NewBotAPIWithClient(tc.token, tc.apiEndpoint, tc.httpClient)
	if err != nil {
		return nil, errors.Wrap(err, "NewBotAPIWithClient")
	}

	return bot, nil
}

func (tc *TelegramClient) Send(ctx context.Context, msg tgBotApi.Chattable) (res tgBotApi.Message, err error) {
	bot, err := tc.bot()
	if err != nil {
		return tgBotApi.Message{}, err
	}

	logrus.Debugf("sending telegram message as @%s", bot.Self.UserName)

	res, err = bot.Send(msg)
	if err != nil {
		return tgBotApi.Message{}, err
	}

	return

}
