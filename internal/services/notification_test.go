package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"barterhub/internal/models"
)

type fakeChannel struct {
	channel models.Channel
	accepts func(models.Contact) bool
	err     error
	sent    []models.Notification
}

func (c *fakeChannel) Channel() models.Channel        { return c.channel }
func (c *fakeChannel) Accepts(to models.Contact) bool { return c.accepts(to) }
func (c *fakeChannel) Send(_ context.Context, n models.Notification) error {
	c.sent = append(c.sent, n)
	return c.err
}

func TestNotifySkipsUnconfiguredChannels(t *testing.T) {
	email := &fakeChannel{channel: models.ChannelEmail, accepts: func(c models.Contact) bool { return c.Email != "" }}
	telegram := &fakeChannel{channel: models.ChannelTelegram, accepts: func(c models.Contact) bool { return c.TelegramChatID != nil }}
	service := newServiceNotification(email, telegram)

	report := service.Notify(context.Background(), models.Notification{To: models.Contact{Email: "a@b.c"}})

	assert.Equal(t, []models.Channel{models.ChannelEmail}, report.Sent)
	assert.Empty(t, report.Failed)
	assert.Len(t, email.sent, 1)
	assert.Empty(t, telegram.sent)
	assert.True(t, report.Any())
}

func TestNotifyCollectsFailures(t *testing.T) {
	chatID := int64(42)
	email := &fakeChannel{channel: models.ChannelEmail, accepts: func(models.Contact) bool { return true }, err: errors.New("smtp down")}
	telegram := &fakeChannel{channel: models.ChannelTelegram, accepts: func(models.Contact) bool { return true }}
	service := newServiceNotification(email, telegram)

	report := service.Notify(context.Background(), models.Notification{To: models.Contact{Email: "a@b.c", TelegramChatID: &chatID}})

	assert.Equal(t, []models.Channel{models.ChannelTelegram}, report.Sent)
	assert.EqualError(t, report.Failed[models.ChannelEmail], "smtp down")
}

func TestNotifyNoChannels(t *testing.T) {
	report := newServiceNotification().Notify(context.Background(), models.Notification{})
	assert.False(t, report.Any())
}
