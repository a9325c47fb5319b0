// Package registry is the single source of truth for what counts as
// activity. It holds a fixed table of event-source descriptors, one per
// on-chain event family that can appear in a profile's feed. The table is
// compiled configuration: event schemas are fixed per contract version, so
// changing it is a deployment, never a data change.
package registry

import (
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"inkchain/internal/chain"
	"inkchain/internal/config"
	"inkchain/internal/models"
)

// NormalizeFunc turns one matched event into an activity item. It must be
// pure: no I/O, no error, nil when the event shape is unrecognized.
type NormalizeFunc func(ev models.RawLogEvent, ts time.Time, wallet common.Address) *models.ActivityItem

// Source describes one queryable event family: where it lives, which event
// names to query, which argument positions can hold the wallet address, and
// how a match becomes an activity item.
type Source struct {
	Key         string
	Contract    common.Address
	ABI         abi.ABI
	Events      []string
	AddressArgs []int
	Normalize   NormalizeFunc
}

// MatchedArg returns the first configured argument position whose value
// equals wallet, or -1. Address compare is case-insensitive; mixed-case hex
// must not hide a match.
func (s Source) MatchedArg(args []any, wallet common.Address) int {
	for _, pos := range s.AddressArgs {
		if pos < 0 || pos >= len(args) {
			continue
		}
		if sameAddress(args[pos], wallet) {
			return pos
		}
	}
	return -1
}

func sameAddress(v any, wallet common.Address) bool {
	switch a := v.(type) {
	case common.Address:
		return a == wallet
	case string:
		return strings.EqualFold(a, wallet.Hex())
	default:
		return false
	}
}

const greetingABIDoc = `[
	{"type":"event","name":"GreetingSent","inputs":[
		{"name":"sender","type":"address","indexed":true},
		{"name":"message","type":"string","indexed":false}]}
]`

const bookmarkABIDoc = `[
	{"type":"event","name":"BookmarkAdded","inputs":[
		{"name":"user","type":"address","indexed":true},
		{"name":"contentId","type":"string","indexed":false},
		{"name":"kind","type":"string","indexed":false}]},
	{"type":"event","name":"BookmarkRemoved","inputs":[
		{"name":"user","type":"address","indexed":true},
		{"name":"contentId","type":"string","indexed":false}]}
]`

const communityABIDoc = `[
	{"type":"event","name":"ArticlePublished","inputs":[
		{"name":"curator","type":"address","indexed":true},
		{"name":"articleId","type":"uint256","indexed":true},
		{"name":"headline","type":"string","indexed":false}]}
]`

const portfolioABIDoc = `[
	{"type":"event","name":"PortfolioItemAdded","inputs":[
		{"name":"owner","type":"address","indexed":true},
		{"name":"itemId","type":"uint256","indexed":true},
		{"name":"name","type":"string","indexed":false}]}
]`

const nativeABIDoc = `[
	{"type":"event","name":"ArticleMinted","inputs":[
		{"name":"author","type":"address","indexed":true},
		{"name":"tokenId","type":"uint256","indexed":true},
		{"name":"title","type":"string","indexed":false},
		{"name":"encrypted","type":"bool","indexed":false}]}
]`

const licenseABIDoc = `[
	{"type":"event","name":"LicensePurchased","inputs":[
		{"name":"buyer","type":"address","indexed":true},
		{"name":"tokenId","type":"uint256","indexed":true},
		{"name":"price","type":"uint256","indexed":false}]}
]`

const leaderboardABIDoc = `[
	{"type":"event","name":"LeaderboardUpdated","inputs":[
		{"name":"user","type":"address","indexed":true},
		{"name":"rank","type":"uint256","indexed":false},
		{"name":"score","type":"uint256","indexed":false}]}
]`

const tokenSaleABIDoc = `[
	{"type":"event","name":"TokensPurchased","inputs":[
		{"name":"buyer","type":"address","indexed":true},
		{"name":"amount","type":"uint256","indexed":false},
		{"name":"cost","type":"uint256","indexed":false}]}
]`

const tipJarABIDoc = `[
	{"type":"event","name":"TipSent","inputs":[
		{"name":"from","type":"address","indexed":true},
		{"name":"to","type":"address","indexed":true},
		{"name":"amount","type":"uint256","indexed":false},
		{"name":"currency","type":"string","indexed":false}]}
]`

var (
	greetingABI    = chain.MustABI(greetingABIDoc)
	bookmarkABI    = chain.MustABI(bookmarkABIDoc)
	communityABI   = chain.MustABI(communityABIDoc)
	portfolioABI   = chain.MustABI(portfolioABIDoc)
	nativeABI      = chain.MustABI(nativeABIDoc)
	licenseABI     = chain.MustABI(licenseABIDoc)
	leaderboardABI = chain.MustABI(leaderboardABIDoc)
	tokenSaleABI   = chain.MustABI(tokenSaleABIDoc)
	tipJarABI      = chain.MustABI(tipJarABIDoc)
)

// Sources builds the descriptor table against the configured deployments.
// Order is fixed; it doubles as the tie-break order of the merged feed.
func Sources(cfg *config.Config) []Source {
	return []Source{
		{
			Key:         "greetings",
			Contract:    common.HexToAddress(cfg.GreetingAddr),
			ABI:         greetingABI,
			Events:      []string{"GreetingSent"},
			AddressArgs: []int{0},
			Normalize:   normalizeGreeting,
		},
		{
			Key:         "bookmarks",
			Contract:    common.HexToAddress(cfg.BookmarkStoreAddr),
			ABI:         bookmarkABI,
			Events:      []string{"BookmarkAdded", "BookmarkRemoved"},
			AddressArgs: []int{0},
			Normalize:   normalizeBookmark,
		},
		{
			Key:         "community",
			Contract:    common.HexToAddress(cfg.CommunityRegistryAddr),
			ABI:         communityABI,
			Events:      []string{"ArticlePublished"},
			AddressArgs: []int{0},
			Normalize:   normalizeCommunityPublish,
		},
		{
			Key:         "portfolio",
			Contract:    common.HexToAddress(cfg.PortfolioRegistryAddr),
			ABI:         portfolioABI,
			Events:      []string{"PortfolioItemAdded"},
			AddressArgs: []int{0},
			Normalize:   normalizePortfolioPublish,
		},
		{
			Key:         "native",
			Contract:    common.HexToAddress(cfg.NativeRegistryAddr),
			ABI:         nativeABI,
			Events:      []string{"ArticleMinted"},
			AddressArgs: []int{0},
			Normalize:   normalizeNativePublish,
		},
		{
			Key:         "licenses",
			Contract:    common.HexToAddress(cfg.LicenseAddr),
			ABI:         licenseABI,
			Events:      []string{"LicensePurchased"},
			AddressArgs: []int{0},
			Normalize:   normalizeLicensePurchase,
		},
		{
			Key:         "leaderboard",
			Contract:    common.HexToAddress(cfg.LeaderboardAddr),
			ABI:         leaderboardABI,
			Events:      []string{"LeaderboardUpdated"},
			AddressArgs: []int{0},
			Normalize:   normalizeLeaderboardUpdate,
		},
		{
			Key:         "token-sale",
			Contract:    common.HexToAddress(cfg.TokenSaleAddr),
			ABI:         tokenSaleABI,
			Events:      []string{"TokensPurchased"},
			AddressArgs: []int{0},
			Normalize:   normalizeTokenPurchase,
		},
		{
			// The wallet may be sender or recipient; both positions are
			// listed and the normalizer decides direction after the fact.
			Key:         "tips",
			Contract:    common.HexToAddress(cfg.TipJarAddr),
			ABI:         tipJarABI,
			Events:      []string{"TipSent"},
			AddressArgs: []int{0, 1},
			Normalize:   normalizeTip,
		},
	}
}
