package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrLifecycleLocked = errors.New("lifecycle reconcile already running")
var ErrMatchNotFound = errors.New("match not found")
var ErrOfferNotFound = errors.New("offer not found")
var ErrDeliverableNotFound = errors.New("deliverable not found")

const (
	CONFIG_SERVER_MODE                      = "SERVER_MODE"
	CONFIG_STRIKE_LIMIT                     = "STRIKE_LIMIT"
	CONFIG_NANO_MIN_FOLLOWERS               = "NANO_MIN_FOLLOWERS"
	CONFIG_NANO_MAX_FOLLOWERS               = "NANO_MAX_FOLLOWERS"
	CONFIG_INSTAGRAM_STALE_AFTER_DAYS       = "INSTAGRAM_STALE_AFTER_DAYS"
	CONFIG_CLAIMS_PER_CREATOR_PER_MINUTE    = "CLAIMS_PER_CREATOR_PER_MINUTE"
	CONFIG_CLAIMS_PER_IP_PER_MINUTE         = "CLAIMS_PER_IP_PER_MINUTE"
	CONFIG_DELIVERABLE_BUFFER_DAYS          = "DELIVERABLE_BUFFER_DAYS"
	CONFIG_REMINDER_WINDOW_HOURS            = "REMINDER_WINDOW_HOURS"
	CONFIG_CRONJOB_TIME_LIFECYCLE           = "CRONJOB_TIME_LIFECYCLE"
	CONFIG_LIFECYCLE_REMINDER_LIMIT         = "LIFECYCLE_REMINDER_LIMIT"
	CONFIG_LIFECYCLE_VERIFICATION_LIMIT     = "LIFECYCLE_VERIFICATION_LIMIT"
	CONFIG_LIFECYCLE_OVERDUE_LIMIT          = "LIFECYCLE_OVERDUE_LIMIT"
	CONFIG_LIFECYCLE_MEDIA_PAGE_SIZE        = "LIFECYCLE_MEDIA_PAGE_SIZE"
	CONFIG_LIFECYCLE_VERIFICATION_PLATFORMS = "LIFECYCLE_VERIFICATION_PLATFORMS"

	SERVER_MODE_DEVELOPMENT = "development"
	SERVER_MODE_STAGING     = "staging"
	SERVER_MODE_PRODUCTION  = "production"

	// added on top of the offer's deadline when a deliverable is created
	DEFAULT_DELIVERABLE_BUFFER_DAYS = 14
	DEFAULT_REMINDER_WINDOW_HOURS   = 48
	DEFAULT_CRONJOB_TIME_LIFECYCLE  = "*/15 * * * *"
	DEFAULT_REMINDER_LIMIT          = 25
	DEFAULT_VERIFICATION_LIMIT      = 20
	DEFAULT_OVERDUE_LIMIT           = 25
	DEFAULT_MEDIA_PAGE_SIZE         = 25

	CACHE_TTL_15_SECONDS = 15 * time.Second
	CACHE_TTL_1_MIN      = 1 * time.Minute
	CACHE_TTL_5_MINS     = 5 * time.Minute

	DEFAULT_HTTP_TIMEOUT = 10 * time.Second

	LIFECYCLE_LOCK_EXPIRY = 10 * time.Minute

	SHARE_PATH_PREFIX = "/c/"
)

func LockKeyLifecycleReconcile() string {
	return "lock:lifecycle-reconcile"
}

func LimitKeyClaimCreator(creatorID int64) string {
	return fmt.Sprintf("limit:claim:creator:%d", creatorID)
}

func LimitKeyClaimIP(ip string) string {
	return fmt.Sprintf("limit:claim:ip:%s", ip)
}

func DBKeyConfig(key string) string {
	return fmt.Sprintf("config:%s", strings.ToLower(key))
}

func DBKeyBrandSubscription(brandID int64) string {
	return fmt.Sprintf("brand:subscription:%d", brandID)
}

func SharePath(code string) string {
	return SHARE_PATH_PREFIX + code
}

func DBKeyShareLink(code string) string {
	return fmt.Sprintf("share:%s", code)
}
