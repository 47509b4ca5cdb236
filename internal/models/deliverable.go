package models

import (
	"time"

	"github.com/uptrace/bun"
)

type DeliverableStatus string

const (
	DeliverableStatusDue      DeliverableStatus = "DUE"
	DeliverableStatusVerified DeliverableStatus = "VERIFIED"
	DeliverableStatusFailed   DeliverableStatus = "FAILED"
)

type VerificationSource string

const (
	VerificationSourceAuto   VerificationSource = "AUTO"
	VerificationSourceManual VerificationSource = "MANUAL"
)

const FailureReasonMissedDeadline = "Missed deadline"

type Deliverable struct {
	bun.BaseModel `bun:"table:deliverable,alias:d"`

	ID                 int64              `bun:"id,pk,autoincrement" json:"id"`
	MatchID            int64              `bun:"match_id,notnull,unique" json:"match_id"`
	Status             DeliverableStatus  `bun:"status,notnull" json:"status"`
	ExpectedType       DeliverableType    `bun:"expected_type,notnull" json:"expected_type"`
	DueAt              time.Time          `bun:"due_at,notnull" json:"due_at"`
	SubmissionURL      string             `bun:"submission_url" json:"submission_url,omitempty"`
	SubmissionNote     string             `bun:"submission_note" json:"submission_note,omitempty"`
	SubmittedAt        *time.Time         `bun:"submitted_at" json:"submitted_at"`
	VerifiedAt         *time.Time         `bun:"verified_at" json:"verified_at"`
	VerificationSource VerificationSource `bun:"verification_source" json:"verification_source,omitempty"`
	ExternalMediaID    string             `bun:"external_media_id" json:"external_media_id,omitempty"`
	Permalink          string             `bun:"permalink" json:"permalink,omitempty"`
	LastCheckedAt      *time.Time         `bun:"last_checked_at" json:"-"`
	FailureReason      string             `bun:"failure_reason" json:"failure_reason,omitempty"`
	ReminderSentAt     *time.Time         `bun:"reminder_sent_at" json:"reminder_sent_at"`
	CreatedAt          time.Time          `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

func (d *Deliverable) IsTerminal() bool {
	return d.Status != DeliverableStatusDue
}

// DueAt computes the content deadline from the acceptance time.
func DueAt(acceptedAt time.Time, deadlineDays, bufferDays int) time.Time {
	return acceptedAt.AddDate(0, 0, deadlineDays+bufferDays)
}

// DeliverableOwner carries the parties of a deliverable for authorization checks.
type DeliverableOwner struct {
	DeliverableID int64             `bun:"deliverable_id"`
	MatchID       int64             `bun:"match_id"`
	Status        DeliverableStatus `bun:"status"`
	ExpectedType  DeliverableType   `bun:"expected_type"`
	CreatorID     int64             `bun:"creator_id"`
	BrandID       int64             `bun:"brand_id"`
	SubmissionURL string            `bun:"submission_url"`
}
