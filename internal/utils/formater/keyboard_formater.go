package formater

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// CreateTelegramSingleButtonLink attaches one inline URL button to msg and
// makes it a reply when messageID is set.
func CreateTelegramSingleButtonLink(msg tgbotapi.MessageConfig, link, text string, messageID int) tgbotapi.MessageConfig {
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL(text, link)),
	)

	if messageID != 0 {
		msg.ReplyToMessageID = messageID
	}

	return msg
}
