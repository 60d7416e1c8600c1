package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tartanmarket/internal/domain"
)

func TestParseItemRef(t *testing.T) {
	ref, err := domain.ParseItemRef("mp_01J9ABC")
	assert.NoError(t, err)
	assert.Equal(t, domain.ItemRef{Kind: domain.ItemKindMarketplace, ID: "01J9ABC"}, ref)

	ref, err = domain.ParseItemRef("comm_01J9XYZ")
	assert.NoError(t, err)
	assert.Equal(t, domain.ItemRef{Kind: domain.ItemKindCommission, ID: "01J9XYZ"}, ref)

	for _, bad := range []string{"", "mp_", "comm_", "item_123", "01J9ABC"} {
		_, err := domain.ParseItemRef(bad)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "input %q", bad)
	}
}

func TestItemRefString(t *testing.T) {
	assert.Equal(t, "mp_a1", domain.ItemRef{Kind: domain.ItemKindMarketplace, ID: "a1"}.String())
	assert.Equal(t, "comm_b2", domain.ItemRef{Kind: domain.ItemKindCommission, ID: "b2"}.String())
}

func TestItemRefValid(t *testing.T) {
	assert.True(t, domain.ItemRef{Kind: domain.ItemKindMarketplace, ID: "a1"}.Valid())
	assert.False(t, domain.ItemRef{Kind: domain.ItemKindMarketplace}.Valid())
	assert.False(t, domain.ItemRef{Kind: "poster", ID: "a1"}.Valid())
	assert.False(t, domain.ItemRef{}.Valid())
}

func TestConversationStatus(t *testing.T) {
	assert.True(t, domain.ConversationCompleted.Valid())
	assert.True(t, domain.ConversationCompleted.Terminal())
	assert.True(t, domain.ConversationOngoing.Valid())
	assert.False(t, domain.ConversationOngoing.Terminal())
	assert.False(t, domain.ConversationStatus("archived").Valid())
}
