package registry

import (
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"inkchain/internal/models"
)

// The normalizers are pure functions. They receive the already-decoded
// positional argument list plus the block timestamp and never do I/O.
// An unrecognized shape yields nil, not an error.

func newItem(ev models.RawLogEvent, ts time.Time, typ models.ActivityType, label string, details *models.ActivityDetails) *models.ActivityItem {
	return &models.ActivityItem{
		ID:          ev.ActivityID(),
		Type:        typ,
		Label:       label,
		Timestamp:   ts,
		TxHash:      ev.TxHash,
		BlockNumber: ev.BlockNumber,
		Details:     details,
	}
}

func normalizeGreeting(ev models.RawLogEvent, ts time.Time, wallet common.Address) *models.ActivityItem {
	if ev.Name != "GreetingSent" {
		return nil
	}
	return newItem(ev, ts, models.ActivityGreeting, "Sent a greeting", nil)
}

func normalizeBookmark(ev models.RawLogEvent, ts time.Time, wallet common.Address) *models.ActivityItem {
	contentID, ok := argString(ev.Args, 1)
	if !ok {
		return nil
	}
	details := &models.ActivityDetails{Title: contentID}
	switch ev.Name {
	case "BookmarkAdded":
		if kind, ok := argString(ev.Args, 2); ok {
			details.ContentType = kind
		}
		return newItem(ev, ts, models.ActivityBookmarkChange, "Added a bookmark", details)
	case "BookmarkRemoved":
		return newItem(ev, ts, models.ActivityBookmarkChange, "Removed a bookmark", details)
	default:
		return nil
	}
}

func normalizeCommunityPublish(ev models.RawLogEvent, ts time.Time, wallet common.Address) *models.ActivityItem {
	if ev.Name != "ArticlePublished" {
		return nil
	}
	headline, ok := argString(ev.Args, 2)
	if !ok {
		return nil
	}
	return newItem(ev, ts, models.ActivityCommunityPublish, "Published a community article",
		&models.ActivityDetails{Title: headline})
}

func normalizePortfolioPublish(ev models.RawLogEvent, ts time.Time, wallet common.Address) *models.ActivityItem {
	if ev.Name != "PortfolioItemAdded" {
		return nil
	}
	name, ok := argString(ev.Args, 2)
	if !ok {
		return nil
	}
	return newItem(ev, ts, models.ActivityPortfolioPublish, "Added a portfolio piece",
		&models.ActivityDetails{Title: name})
}

func normalizeNativePublish(ev models.RawLogEvent, ts time.Time, wallet common.Address) *models.ActivityItem {
	if ev.Name != "ArticleMinted" {
		return nil
	}
	title, ok := argString(ev.Args, 2)
	if !ok {
		return nil
	}
	details := &models.ActivityDetails{Title: title, ContentType: "public"}
	if encrypted, ok := argBool(ev.Args, 3); ok && encrypted {
		details.ContentType = "encrypted"
	}
	return newItem(ev, ts, models.ActivityNativePublish, "Published an article", details)
}

func normalizeLicensePurchase(ev models.RawLogEvent, ts time.Time, wallet common.Address) *models.ActivityItem {
	if ev.Name != "LicensePurchased" {
		return nil
	}
	price, ok := argBigInt(ev.Args, 2)
	if !ok {
		return nil
	}
	return newItem(ev, ts, models.ActivityLicensePurchase, "Purchased a content license",
		&models.ActivityDetails{Amount: weiToDecimal(price)})
}

func normalizeLeaderboardUpdate(ev models.RawLogEvent, ts time.Time, wallet common.Address) *models.ActivityItem {
	if ev.Name != "LeaderboardUpdated" {
		return nil
	}
	return newItem(ev, ts, models.ActivityLeaderboardUpdate, "Moved on the leaderboard", nil)
}

func normalizeTokenPurchase(ev models.RawLogEvent, ts time.Time, wallet common.Address) *models.ActivityItem {
	if ev.Name != "TokensPurchased" {
		return nil
	}
	amount, ok := argBigInt(ev.Args, 1)
	if !ok {
		return nil
	}
	return newItem(ev, ts, models.ActivityTokenPurchase, "Bought platform tokens",
		&models.ActivityDetails{Amount: weiToDecimal(amount)})
}

// normalizeTip decides direction by which argument position holds the
// wallet: position 0 is the sender, position 1 the recipient. The details
// always carry the counterparty.
func normalizeTip(ev models.RawLogEvent, ts time.Time, wallet common.Address) *models.ActivityItem {
	if ev.Name != "TipSent" {
		return nil
	}
	from, okFrom := argAddress(ev.Args, 0)
	to, okTo := argAddress(ev.Args, 1)
	amount, okAmount := argBigInt(ev.Args, 2)
	if !okFrom || !okTo || !okAmount {
		return nil
	}
	currency, _ := argString(ev.Args, 3)

	details := &models.ActivityDetails{
		Amount:      weiToDecimal(amount),
		TipCurrency: currency,
	}

	switch {
	case from == wallet:
		details.Recipient = shortAddress(to)
		return newItem(ev, ts, models.ActivityTipSent, "Sent a tip", details)
	case to == wallet:
		details.Recipient = shortAddress(from)
		return newItem(ev, ts, models.ActivityTipReceived, "Received a tip", details)
	default:
		return nil
	}
}

func argAddress(args []any, i int) (common.Address, bool) {
	if i < 0 || i >= len(args) {
		return common.Address{}, false
	}
	a, ok := args[i].(common.Address)
	return a, ok
}

func argBigInt(args []any, i int) (*big.Int, bool) {
	if i < 0 || i >= len(args) {
		return nil, false
	}
	n, ok := args[i].(*big.Int)
	if !ok || n == nil {
		return nil, false
	}
	return n, true
}

func argString(args []any, i int) (string, bool) {
	if i < 0 || i >= len(args) {
		return "", false
	}
	s, ok := args[i].(string)
	return s, ok
}

func argBool(args []any, i int) (bool, bool) {
	if i < 0 || i >= len(args) {
		return false, false
	}
	b, ok := args[i].(bool)
	return b, ok
}

var weiPerToken = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// weiToDecimal converts a native 18-decimal integer amount to a
// human-scaled decimal string, trimming trailing zeros ("20", "0.25").
func weiToDecimal(wei *big.Int) string {
	if wei == nil || wei.Sign() == 0 {
		return "0"
	}
	s := new(big.Rat).SetFrac(wei, weiPerToken).FloatString(6)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}

func shortAddress(a common.Address) string {
	hex := a.Hex()
	return hex[:6] + "..." + hex[len(hex)-4:]
}
