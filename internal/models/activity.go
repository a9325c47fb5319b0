package models

import (
	"fmt"
	"time"
)

// ActivityType is the closed set of semantic tags an activity item can carry.
type ActivityType string

const (
	ActivityGreeting          ActivityType = "greeting"
	ActivityBookmarkChange    ActivityType = "bookmark-change"
	ActivityCommunityPublish  ActivityType = "community-publish"
	ActivityPortfolioPublish  ActivityType = "portfolio-publish"
	ActivityNativePublish     ActivityType = "native-publish"
	ActivityLicensePurchase   ActivityType = "license-purchase"
	ActivityLeaderboardUpdate ActivityType = "leaderboard-update"
	ActivityTokenPurchase     ActivityType = "token-purchase"
	ActivityTipSent           ActivityType = "tip-sent"
	ActivityTipReceived       ActivityType = "tip-received"
)

// RawLogEvent is one decoded contract event as returned by the ledger client.
// Args are positional, in declaration order of the event signature.
type RawLogEvent struct {
	TxHash      string `json:"tx_hash"`
	BlockNumber uint64 `json:"block_number"`
	LogIndex    uint   `json:"log_index"`
	Name        string `json:"name"`
	Args        []any  `json:"-"`
}

// ActivityID builds the stable identity of the activity derived from this
// event. Two queries that see the same log produce the same id.
func (e RawLogEvent) ActivityID() string {
	return fmt.Sprintf("%s-%d", e.TxHash, e.LogIndex)
}

// ActivityDetails carries the per-type optional fields. Only the fields
// relevant to the item's type are populated.
type ActivityDetails struct {
	Title       string `json:"title,omitempty"`
	Amount      string `json:"amount,omitempty"`
	Recipient   string `json:"recipient,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	TipCurrency string `json:"tip_currency,omitempty"`
}

// ActivityItem is the normalized unit of the activity feed.
type ActivityItem struct {
	ID          string           `json:"id"`
	Type        ActivityType     `json:"type"`
	Label       string           `json:"label"`
	Timestamp   time.Time        `json:"timestamp"`
	TxHash      string           `json:"tx_hash"`
	BlockNumber uint64           `json:"block_number"`
	Details     *ActivityDetails `json:"details,omitempty"`
}
