package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"inkchain/internal/models"
)

// Caller is the read-call surface the contract wrappers need. *Client
// satisfies it; tests substitute fakes.
type Caller interface {
	CallView(ctx context.Context, contract common.Address, contractABI abi.ABI, method string, args ...any) ([]any, error)
}

func abiJSON(doc string) (abi.ABI, error) {
	return abi.JSON(strings.NewReader(doc))
}

const identityTokenABIDoc = `[
	{"type":"function","name":"ownerOf","stateMutability":"view",
	 "inputs":[{"name":"tokenId","type":"uint256"}],
	 "outputs":[{"name":"owner","type":"address"}]}
]`

var identityTokenABI = MustABI(identityTokenABIDoc)

// IdentityToken reads current ownership of profile identity tokens. The
// token's owner is the canonical wallet behind a numeric profile id.
type IdentityToken struct {
	caller   Caller
	contract common.Address
}

func NewIdentityToken(caller Caller, contract common.Address) *IdentityToken {
	return &IdentityToken{caller: caller, contract: contract}
}

// OwnerOf returns the current owner of the given identity token.
func (t *IdentityToken) OwnerOf(ctx context.Context, tokenID *big.Int) (common.Address, error) {
	out, err := t.caller.CallView(ctx, t.contract, identityTokenABI, "ownerOf", tokenID)
	if err != nil {
		return common.Address{}, err
	}
	owner, ok := out[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("unexpected ownerOf result type %T", out[0])
	}
	return owner, nil
}

const bookmarkStoreABIDoc = `[
	{"type":"function","name":"getBookmarks","stateMutability":"view",
	 "inputs":[{"name":"owner","type":"address"}],
	 "outputs":[{"name":"entries","type":"tuple[]","components":[
		{"name":"contentId","type":"string"},
		{"name":"kind","type":"string"},
		{"name":"timestamp","type":"uint256"},
		{"name":"active","type":"bool"}]}]}
]`

var bookmarkStoreABI = MustABI(bookmarkStoreABIDoc)

type bookmarkEntry struct {
	ContentId string   `abi:"contentId"`
	Kind      string   `abi:"kind"`
	Timestamp *big.Int `abi:"timestamp"`
	Active    bool     `abi:"active"`
}

// BookmarkStore reads a wallet's persisted bookmark list from the ledger.
type BookmarkStore struct {
	caller   Caller
	contract common.Address
}

func NewBookmarkStore(caller Caller, contract common.Address) *BookmarkStore {
	return &BookmarkStore{caller: caller, contract: contract}
}

// GetBookmarks returns every bookmark record stored for owner, including
// inactive ones; callers filter on Active.
func (s *BookmarkStore) GetBookmarks(ctx context.Context, owner common.Address) ([]models.Bookmark, error) {
	out, err := s.caller.CallView(ctx, s.contract, bookmarkStoreABI, "getBookmarks", owner)
	if err != nil {
		return nil, err
	}
	entries := *abi.ConvertType(out[0], new([]bookmarkEntry)).(*[]bookmarkEntry)

	bookmarks := make([]models.Bookmark, 0, len(entries))
	for _, e := range entries {
		bookmarks = append(bookmarks, models.Bookmark{
			ContentID: e.ContentId,
			Kind:      e.Kind,
			CreatedAt: time.Unix(e.Timestamp.Int64(), 0).UTC(),
			Active:    e.Active,
		})
	}
	return bookmarks, nil
}

// The three content registries are independently deployed and each exposes
// its own get-by-id schema. Field mapping to the unified descriptor shape
// happens in the content service adapters, not here.

const nativeRegistryABIDoc = `[
	{"type":"function","name":"getArticle","stateMutability":"view",
	 "inputs":[{"name":"tokenId","type":"uint256"}],
	 "outputs":[
		{"name":"title","type":"string"},
		{"name":"summary","type":"string"},
		{"name":"author","type":"address"},
		{"name":"createdAt","type":"uint256"},
		{"name":"category","type":"string"},
		{"name":"location","type":"string"},
		{"name":"tags","type":"string[]"},
		{"name":"encrypted","type":"bool"}]}
]`

var nativeRegistryABI = MustABI(nativeRegistryABIDoc)

// NativeArticle is the raw record shape of the native/encrypted registry.
type NativeArticle struct {
	Title     string
	Summary   string
	Author    common.Address
	CreatedAt time.Time
	Category  string
	Location  string
	Tags      []string
	Encrypted bool
}

// NativeRegistry reads platform-native (optionally encrypted) articles.
type NativeRegistry struct {
	caller   Caller
	contract common.Address
}

func NewNativeRegistry(caller Caller, contract common.Address) *NativeRegistry {
	return &NativeRegistry{caller: caller, contract: contract}
}

func (r *NativeRegistry) GetArticle(ctx context.Context, id *big.Int) (NativeArticle, error) {
	out, err := r.caller.CallView(ctx, r.contract, nativeRegistryABI, "getArticle", id)
	if err != nil {
		return NativeArticle{}, err
	}
	if len(out) != 8 {
		return NativeArticle{}, fmt.Errorf("unexpected getArticle result arity %d", len(out))
	}
	return NativeArticle{
		Title:     out[0].(string),
		Summary:   out[1].(string),
		Author:    out[2].(common.Address),
		CreatedAt: unixTime(out[3]),
		Category:  out[4].(string),
		Location:  out[5].(string),
		Tags:      out[6].([]string),
		Encrypted: out[7].(bool),
	}, nil
}

const communityRegistryABIDoc = `[
	{"type":"function","name":"getCurated","stateMutability":"view",
	 "inputs":[{"name":"articleId","type":"uint256"}],
	 "outputs":[
		{"name":"headline","type":"string"},
		{"name":"excerpt","type":"string"},
		{"name":"curator","type":"string"},
		{"name":"publishedAt","type":"uint256"},
		{"name":"topic","type":"string"},
		{"name":"geo","type":"string"}]}
]`

var communityRegistryABI = MustABI(communityRegistryABIDoc)

// CommunityArticle is the raw record shape of the community-curated registry.
// Geo is a single "City, Country" string.
type CommunityArticle struct {
	Headline    string
	Excerpt     string
	Curator     string
	PublishedAt time.Time
	Topic       string
	Geo         string
}

// CommunityRegistry reads community-curated articles.
type CommunityRegistry struct {
	caller   Caller
	contract common.Address
}

func NewCommunityRegistry(caller Caller, contract common.Address) *CommunityRegistry {
	return &CommunityRegistry{caller: caller, contract: contract}
}

func (r *CommunityRegistry) GetCurated(ctx context.Context, id *big.Int) (CommunityArticle, error) {
	out, err := r.caller.CallView(ctx, r.contract, communityRegistryABI, "getCurated", id)
	if err != nil {
		return CommunityArticle{}, err
	}
	if len(out) != 6 {
		return CommunityArticle{}, fmt.Errorf("unexpected getCurated result arity %d", len(out))
	}
	return CommunityArticle{
		Headline:    out[0].(string),
		Excerpt:     out[1].(string),
		Curator:     out[2].(string),
		PublishedAt: unixTime(out[3]),
		Topic:       out[4].(string),
		Geo:         out[5].(string),
	}, nil
}

const portfolioRegistryABIDoc = `[
	{"type":"function","name":"getPortfolioItem","stateMutability":"view",
	 "inputs":[{"name":"itemId","type":"uint256"}],
	 "outputs":[
		{"name":"name","type":"string"},
		{"name":"description","type":"string"},
		{"name":"owner","type":"address"},
		{"name":"addedAt","type":"uint256"},
		{"name":"discipline","type":"string"},
		{"name":"city","type":"string"},
		{"name":"country","type":"string"}]}
]`

var portfolioRegistryABI = MustABI(portfolioRegistryABIDoc)

// PortfolioItem is the raw record shape of the portfolio registry. Unlike
// the community registry it stores city and country as separate fields.
type PortfolioItem struct {
	Name        string
	Description string
	Owner       common.Address
	AddedAt     time.Time
	Discipline  string
	City        string
	Country     string
}

// PortfolioRegistry reads portfolio pieces.
type PortfolioRegistry struct {
	caller   Caller
	contract common.Address
}

func NewPortfolioRegistry(caller Caller, contract common.Address) *PortfolioRegistry {
	return &PortfolioRegistry{caller: caller, contract: contract}
}

func (r *PortfolioRegistry) GetItem(ctx context.Context, id *big.Int) (PortfolioItem, error) {
	out, err := r.caller.CallView(ctx, r.contract, portfolioRegistryABI, "getPortfolioItem", id)
	if err != nil {
		return PortfolioItem{}, err
	}
	if len(out) != 7 {
		return PortfolioItem{}, fmt.Errorf("unexpected getPortfolioItem result arity %d", len(out))
	}
	return PortfolioItem{
		Name:        out[0].(string),
		Description: out[1].(string),
		Owner:       out[2].(common.Address),
		AddedAt:     unixTime(out[3]),
		Discipline:  out[4].(string),
		City:        out[5].(string),
		Country:     out[6].(string),
	}, nil
}

func unixTime(v any) time.Time {
	n, ok := v.(*big.Int)
	if !ok || n == nil {
		return time.Time{}
	}
	return time.Unix(n.Int64(), 0).UTC()
}
