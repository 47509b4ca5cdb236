package services

import (
	"context"
	"fmt"
	"html"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"barterhub/internal/logger"
	"barterhub/internal/models"
)

// notificationChannel is one transport. Accepts reports whether the contact can be reached on it.
type notificationChannel interface {
	Channel() models.Channel
	Accepts(to models.Contact) bool
	Send(ctx context.Context, notification models.Notification) error
}

type MailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type emailChannel struct {
	cfg MailConfig
}

func (c *emailChannel) Channel() models.Channel { return models.ChannelEmail }

func (c *emailChannel) Accepts(to models.Contact) bool {
	return c.cfg.Host != "" && to.Email != ""
}

func (c *emailChannel) Send(_ context.Context, n models.Notification) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", c.cfg.From)
	if n.To.Name != "" {
		msg.SetAddressHeader("To", n.To.Email, n.To.Name)
	} else {
		msg.SetHeader("To", n.To.Email)
	}
	msg.SetHeader("Subject", n.Subject)
	if n.ID != "" {
		msg.SetHeader("X-Notification-ID", n.ID)
	}
	msg.SetBody("text/plain", n.Body)

	dialer := gomail.NewDialer(c.cfg.Host, c.cfg.Port, c.cfg.User, c.cfg.Password)
	return dialer.DialAndSend(msg)
}

type telegramChannel struct {
	bot *Bot
}

func (c *telegramChannel) Channel() models.Channel { return models.ChannelTelegram }

func (c *telegramChannel) Accepts(to models.Contact) bool {
	return c.bot.Enabled() && to.TelegramChatID != nil
}

func (c *telegramChannel) Send(_ context.Context, n models.Notification) error {
	text := fmt.Sprintf("<b>%s</b>\n\n%s", html.EscapeString(n.Subject), html.EscapeString(n.Body))
	return c.bot.SendMsg(*n.To.TelegramChatID, text)
}

// ServiceNotification fans a notification out to every channel the recipient has configured.
// Failures are collected per channel and never returned as an error.
type ServiceNotification struct {
	channels []notificationChannel
	log      *logrus.Entry
}

func NewServiceNotification(mail MailConfig, bot *Bot) *ServiceNotification {
	return newServiceNotification(&emailChannel{mail}, &telegramChannel{bot})
}

func newServiceNotification(channels ...notificationChannel) *ServiceNotification {
	return &ServiceNotification{channels, logger.For("notification")}
}

func (service *ServiceNotification) Notify(ctx context.Context, n models.Notification) models.DeliveryReport {
	report := models.DeliveryReport{Failed: map[models.Channel]error{}}
	for _, channel := range service.channels {
		if !channel.Accepts(n.To) {
			continue
		}
		if err := channel.Send(ctx, n); err != nil {
			service.log.WithError(err).WithFields(logrus.Fields{
				"channel":         channel.Channel(),
				"kind":            n.Kind,
				"notification_id": n.ID,
			}).Warn("notification not delivered")
			report.Failed[channel.Channel()] = err
			continue
		}
		report.Sent = append(report.Sent, channel.Channel())
	}
	return report
}
