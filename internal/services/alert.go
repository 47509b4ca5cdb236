package services

import (
	"context"
	"fmt"
	"html"

	"github.com/sirupsen/logrus"

	"barterhub/internal/logger"
)

// ServiceAlert reports operator-facing failures to the error log and, when configured,
// to an operator Telegram chat.
type ServiceAlert struct {
	bot    *Bot
	chatID int64
	log    *logrus.Entry
}

func NewServiceAlert(bot *Bot, chatID int64) *ServiceAlert {
	return &ServiceAlert{bot, chatID, logger.For("alert")}
}

func (service *ServiceAlert) Alert(_ context.Context, subject string, err error) {
	service.log.WithError(err).Error(subject)
	if service.chatID == 0 || !service.bot.Enabled() {
		return
	}

	text := fmt.Sprintf("🚨 <b>%s</b>\n<code>%s</code>", html.EscapeString(subject), html.EscapeString(err.Error()))
	if sendErr := service.bot.SendMsg(service.chatID, text); sendErr != nil {
		service.log.WithError(sendErr).Warn("alert not delivered to telegram")
	}
}
