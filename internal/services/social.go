package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"barterhub/internal/models"
)

const (
	instagramTimeLayout = "2006-01-02T15:04:05-0700"
	tiktokMaxPageSize   = 20
)

var ErrAccountNotLinked = errors.New("social account has no external user id")

// InstagramMediaLister reads a creator's recent posts from the Instagram Graph API.
type InstagramMediaLister struct {
	*ServiceHTTP
	baseURL string
}

func NewInstagramMediaLister(client *ServiceHTTP, baseURL string) *InstagramMediaLister {
	return &InstagramMediaLister{client, strings.TrimRight(baseURL, "/")}
}

func (lister *InstagramMediaLister) Platform() models.Platform {
	return models.PlatformInstagram
}

type instagramMediaPage struct {
	Data []struct {
		ID               string `json:"id"`
		Caption          string `json:"caption"`
		MediaType        string `json:"media_type"`
		MediaProductType string `json:"media_product_type"`
		Timestamp        string `json:"timestamp"`
		Permalink        string `json:"permalink"`
	} `json:"data"`
}

func (lister *InstagramMediaLister) ListRecentMedia(ctx context.Context, account models.SocialAccount, limit int) ([]models.Media, error) {
	if account.ExternalUserID == "" {
		return nil, ErrAccountNotLinked
	}

	query := url.Values{}
	query.Set("fields", "id,caption,media_type,media_product_type,timestamp,permalink")
	query.Set("limit", strconv.Itoa(limit))
	query.Set("access_token", account.AccessToken)
	endpoint := fmt.Sprintf("%s/%s/media?%s", lister.baseURL, url.PathEscape(account.ExternalUserID), query.Encode())

	var page instagramMediaPage
	if err := lister.doJSON(ctx, http.MethodGet, endpoint, http.Header{}, nil, &page); err != nil {
		return nil, err
	}

	media := make([]models.Media, 0, len(page.Data))
	for _, item := range page.Data {
		ts, err := time.Parse(instagramTimeLayout, item.Timestamp)
		if err != nil {
			ts, err = time.Parse(time.RFC3339, item.Timestamp)
		}
		if err != nil {
			// without a timestamp the post cannot be checked against acceptance
			continue
		}
		media = append(media, models.Media{
			ExternalID: item.ID,
			Caption:    item.Caption,
			Kind:       instagramKind(item.MediaProductType, item.MediaType),
			Timestamp:  ts,
			Permalink:  item.Permalink,
		})
	}
	return media, nil
}

func instagramKind(productType, mediaType string) models.MediaKind {
	switch strings.ToUpper(productType) {
	case "REELS":
		return models.MediaKindReel
	case "STORY":
		return models.MediaKindStory
	case "FEED", "AD":
		return models.MediaKindFeed
	}
	switch strings.ToUpper(mediaType) {
	case "IMAGE", "CAROUSEL_ALBUM":
		return models.MediaKindFeed
	case "VIDEO":
		return models.MediaKindVideo
	}
	return models.MediaKindUnknown
}

// TikTokMediaLister reads a creator's recent videos from the TikTok display API.
type TikTokMediaLister struct {
	*ServiceHTTP
	baseURL string
}

func NewTikTokMediaLister(client *ServiceHTTP, baseURL string) *TikTokMediaLister {
	return &TikTokMediaLister{client, strings.TrimRight(baseURL, "/")}
}

func (lister *TikTokMediaLister) Platform() models.Platform {
	return models.PlatformTikTok
}

type tiktokVideoPage struct {
	Data struct {
		Videos []struct {
			ID               string `json:"id"`
			Title            string `json:"title"`
			VideoDescription string `json:"video_description"`
			CreateTime       int64  `json:"create_time"`
			ShareURL         string `json:"share_url"`
		} `json:"videos"`
	} `json:"data"`
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (lister *TikTokMediaLister) ListRecentMedia(ctx context.Context, account models.SocialAccount, limit int) ([]models.Media, error) {
	if limit <= 0 || limit > tiktokMaxPageSize {
		limit = tiktokMaxPageSize
	}

	endpoint := lister.baseURL + "/video/list/?fields=id,title,video_description,create_time,share_url"
	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+account.AccessToken)

	var page tiktokVideoPage
	if err := lister.doJSON(ctx, http.MethodPost, endpoint, headers, map[string]int{"max_count": limit}, &page); err != nil {
		return nil, err
	}
	if page.Error.Code != "" && page.Error.Code != "ok" {
		return nil, fmt.Errorf("tiktok: %s: %s", page.Error.Code, page.Error.Message)
	}

	media := make([]models.Media, 0, len(page.Data.Videos))
	for _, video := range page.Data.Videos {
		caption := video.VideoDescription
		if caption == "" {
			caption = video.Title
		}
		media = append(media, models.Media{
			ExternalID: video.ID,
			Caption:    caption,
			Kind:       models.MediaKindVideo,
			Timestamp:  time.Unix(video.CreateTime, 0).UTC(),
			Permalink:  video.ShareURL,
		})
	}
	return media, nil
}
