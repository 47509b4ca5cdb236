package models

type Contact struct {
	Name           string
	Email          string
	TelegramChatID *int64
}

type NotificationKind string

const (
	NotificationMatchAccepted     NotificationKind = "match_accepted"
	NotificationMatchPending      NotificationKind = "match_pending"
	NotificationDeliverableDue    NotificationKind = "deliverable_reminder"
	NotificationDeliverableFailed NotificationKind = "deliverable_failed"
)

type Notification struct {
	// ID is an idempotency key for downstream dispatchers.
	ID      string
	Kind    NotificationKind
	To      Contact
	Subject string
	Body    string
}

type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelTelegram Channel = "telegram"
)

// DeliveryReport lists the outcome per configured channel.
type DeliveryReport struct {
	Sent   []Channel
	Failed map[Channel]error
}

func (r DeliveryReport) Any() bool {
	return len(r.Sent) > 0
}
