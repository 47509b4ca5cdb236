package services

import (
	"strings"
	"time"

	"barterhub/internal/models"
)

// MediaCriteria describes the post that proves a deliverable was published.
type MediaCriteria struct {
	CampaignCode string
	BrandMention string
	ExpectedType models.DeliverableType
	NotBefore    time.Time
}

func (c MediaCriteria) Matches(m models.Media) bool {
	if c.CampaignCode == "" {
		return false
	}
	caption := strings.ToLower(m.Caption)
	if !strings.Contains(caption, strings.ToLower(c.CampaignCode)) {
		return false
	}
	if handle := normalizeHandle(c.BrandMention); handle != "" && !mentions(caption, handle) {
		return false
	}
	if !m.SatisfiesType(c.ExpectedType) {
		return false
	}
	return !m.Timestamp.Before(c.NotBefore)
}

// FindMatchingMedia returns the first post, in listing order, that satisfies c.
func FindMatchingMedia(media []models.Media, c MediaCriteria) (models.Media, bool) {
	for _, m := range media {
		if c.Matches(m) {
			return m, true
		}
	}
	return models.Media{}, false
}

func normalizeHandle(handle string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(handle), "@"))
}

// mentions looks for @handle as a whole token in an already lower-cased caption.
func mentions(caption, handle string) bool {
	needle := "@" + handle
	for offset := 0; ; {
		i := strings.Index(caption[offset:], needle)
		if i < 0 {
			return false
		}
		end := offset + i + len(needle)
		if end == len(caption) || !continuesHandle(caption[end:]) {
			return true
		}
		offset = end
	}
}

func continuesHandle(rest string) bool {
	c := rest[0]
	if isHandleChar(c) {
		return true
	}
	// a dot is part of the handle only when more handle follows
	return c == '.' && len(rest) > 1 && isHandleChar(rest[1])
}

func isHandleChar(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('0' <= c && c <= '9')
}
