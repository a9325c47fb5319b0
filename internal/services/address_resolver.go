package services

import (
	"context"
	"fmt"
	"math/big"
	"regexp"

	"github.com/ethereum/go-ethereum/common"

	"inkchain/internal/models"
)

// OwnershipLookup is the identity-token read surface the resolver needs.
type OwnershipLookup interface {
	OwnerOf(ctx context.Context, tokenID *big.Int) (common.Address, error)
}

// Profile URLs use either a raw wallet address, a bare numeric profile id,
// or a numeric id followed by a slug ("42-some-title").
var profileIDPattern = regexp.MustCompile(`^(\d+)(?:-[\w-]*)?$`)

// AddressResolver turns a user-facing profile identifier into the canonical
// wallet address behind it.
type AddressResolver struct {
	identity OwnershipLookup
}

func NewAddressResolver(identity OwnershipLookup) *AddressResolver {
	return &AddressResolver{identity: identity}
}

// Resolve is read-only and must be re-run whenever the identifier changes;
// results are only valid for the identifier they were computed from.
func (r *AddressResolver) Resolve(ctx context.Context, identifier string) (common.Address, error) {
	if common.IsHexAddress(identifier) {
		return common.HexToAddress(identifier), nil
	}

	m := profileIDPattern.FindStringSubmatch(identifier)
	if m == nil {
		return common.Address{}, &models.ResolutionError{Identifier: identifier}
	}

	tokenID, ok := new(big.Int).SetString(m[1], 10)
	if !ok {
		return common.Address{}, &models.ResolutionError{Identifier: identifier}
	}

	owner, err := r.identity.OwnerOf(ctx, tokenID)
	if err != nil {
		return common.Address{}, &models.ResolutionError{Identifier: identifier, Err: err}
	}
	if owner == (common.Address{}) {
		return common.Address{}, &models.ResolutionError{
			Identifier: identifier,
			Err:        fmt.Errorf("profile %s has no owner", m[1]),
		}
	}
	return owner, nil
}
