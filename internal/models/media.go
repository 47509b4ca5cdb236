package models

import "time"

type MediaKind string

const (
	MediaKindReel    MediaKind = "REEL"
	MediaKindFeed    MediaKind = "FEED"
	MediaKindVideo   MediaKind = "VIDEO"
	MediaKindStory   MediaKind = "STORY"
	MediaKindUnknown MediaKind = "UNKNOWN"
)

// Media is one post returned by a social platform's media listing.
type Media struct {
	ExternalID string
	Caption    string
	Kind       MediaKind
	Timestamp  time.Time
	Permalink  string
}

// SatisfiesType reports whether the post format fulfils the expected deliverable type.
// Platforms that only publish one format (TikTok videos) satisfy both.
func (m Media) SatisfiesType(expected DeliverableType) bool {
	switch expected {
	case DeliverableTypeReels:
		return m.Kind == MediaKindReel || m.Kind == MediaKindVideo
	case DeliverableTypeFeed:
		return m.Kind == MediaKindFeed || m.Kind == MediaKindVideo
	}
	return true
}
