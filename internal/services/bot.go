package services

import (
	"errors"
	"sync"

	tele "gopkg.in/telebot.v3"
)

var ErrBotDisabled = errors.New("telegram bot token not configured")

type Bot struct {
	token string

	once sync.Once
	bot  *tele.Bot
	err  error
}

func NewBot(token string) (*Bot, error) {
	return &Bot{token: token}, nil
}

func (bot *Bot) Enabled() bool {
	return bot != nil && bot.token != ""
}

func (bot *Bot) client() (*tele.Bot, error) {
	if !bot.Enabled() {
		return nil, ErrBotDisabled
	}
	bot.once.Do(func() {
		bot.bot, bot.err = tele.NewBot(tele.Settings{
			Token:   bot.token,
			Offline: true,
		})
	})
	return bot.bot, bot.err
}

func (bot *Bot) SendMsg(chatID int64, text string) error {
	b, err := bot.client()
	if err != nil {
		return err
	}

	_, err = b.Send(&tele.Chat{ID: chatID}, text, &tele.SendOptions{
		ParseMode:             tele.ModeHTML,
		DisableWebPagePreview: true,
	})
	return err
}
