package transfer

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkBook(t *testing.T) {
	tenantID := uuid.New()
	sellID := uuid.New()
	purchaseA := uuid.New()
	purchaseB := uuid.New()

	existing := NewSellPurchaseLink(tenantID, sellID, purchaseA, decimal.NewFromInt(4))
	book := NewLinkBook(tenantID, []SellPurchaseLink{*existing})

	assert.True(t, book.Linked(sellID).Equal(decimal.NewFromInt(4)))
	assert.True(t, book.Linked(uuid.New()).IsZero())

	extended := book.Extend(sellID, purchaseA, decimal.NewFromInt(2))
	assert.Equal(t, existing.ID, extended.ID)
	assert.True(t, extended.Quantity.Equal(decimal.NewFromInt(6)))

	created := book.Extend(sellID, purchaseB, decimal.NewFromInt(1))
	book.Extend(sellID, purchaseB, decimal.NewFromInt(1))
	assert.NotEqual(t, existing.ID, created.ID)

	assert.True(t, book.Linked(sellID).Equal(decimal.NewFromInt(8)))
	require.Len(t, book.Updated(), 1)
	require.Len(t, book.Created(), 1)
	assert.True(t, book.Created()[0].Quantity.Equal(decimal.NewFromInt(2)))
	assert.Len(t, book.All(), 2)
}

func TestPurchaseLine_AllocateAndRelease(t *testing.T) {
	line := NewPurchaseLine(uuid.New(), uuid.New())
	line.Quantity = decimal.NewFromInt(10)

	require.NoError(t, line.Allocate(decimal.NewFromInt(7)))
	assert.True(t, line.Available().Equal(decimal.NewFromInt(3)))
	assert.True(t, line.IsConsumed())

	assert.Error(t, line.Allocate(decimal.NewFromInt(4)))
	assert.Error(t, line.Allocate(decimal.Zero))

	line.Release(decimal.NewFromInt(9))
	assert.True(t, line.QuantitySold.IsZero())
	assert.False(t, line.IsConsumed())
}
