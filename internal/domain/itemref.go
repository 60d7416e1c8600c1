package domain

import (
	"fmt"
	"strings"
)

// ItemKind discriminates the two item collections.
type ItemKind string

const (
	ItemKindMarketplace ItemKind = "marketplace"
	ItemKindCommission  ItemKind = "commission"
)

// Valid reports whether k is a known item kind.
func (k ItemKind) Valid() bool {
	return k == ItemKindMarketplace || k == ItemKindCommission
}

// ItemRef is a tagged reference to an item of either kind. It replaces the
// prefixed composite string IDs ("mp_<id>" / "comm_<id>") the frontend uses
// for favorites; the string form exists only at the API boundary.
type ItemRef struct {
	Kind ItemKind `json:"kind"`
	ID   string   `json:"id"`
}

const (
	marketplacePrefix = "mp_"
	commissionPrefix  = "comm_"
)

// ParseItemRef parses a composite item ID into a tagged reference.
func ParseItemRef(composite string) (ItemRef, error) {
	switch {
	case strings.HasPrefix(composite, marketplacePrefix):
		id := composite[len(marketplacePrefix):]
		if id == "" {
			return ItemRef{}, fmt.Errorf("%w: empty item id in %q", ErrInvalidInput, composite)
		}
		return ItemRef{Kind: ItemKindMarketplace, ID: id}, nil
	case strings.HasPrefix(composite, commissionPrefix):
		id := composite[len(commissionPrefix):]
		if id == "" {
			return ItemRef{}, fmt.Errorf("%w: empty item id in %q", ErrInvalidInput, composite)
		}
		return ItemRef{Kind: ItemKindCommission, ID: id}, nil
	default:
		return ItemRef{}, fmt.Errorf("%w: unrecognized composite item id %q", ErrInvalidInput, composite)
	}
}

// String renders the composite wire form.
func (r ItemRef) String() string {
	if r.Kind == ItemKindCommission {
		return commissionPrefix + r.ID
	}
	return marketplacePrefix + r.ID
}

// Valid reports whether the reference carries a known kind and a non-empty ID.
func (r ItemRef) Valid() bool {
	return r.Kind.Valid() && r.ID != ""
}
