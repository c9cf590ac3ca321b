package transfer

import (
	"errors"
	"testing"
	"time"

	"github.com/erp/stocktransfer/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInput(lines ...LineInput) PairInput {
	return PairInput{
		OriginLocationID:      uuid.New(),
		DestinationLocationID: uuid.New(),
		RefNo:                 "ST2026/0001",
		TransactionDate:       time.Now(),
		Status:                StatusPending,
		ShippingCharges:       decimal.NewFromInt(5),
		Lines:                 lines,
	}
}

func newTestLine(variationID uuid.UUID, qty int64) LineInput {
	return LineInput{
		ProductID:   uuid.New(),
		VariationID: variationID,
		Quantity:    decimal.NewFromInt(qty),
		UnitPrice:   decimal.NewFromInt(2),
		EnableStock: true,
	}
}

func TestNewPair(t *testing.T) {
	tenantID := uuid.New()
	actorID := uuid.New()

	t.Run("builds both sides with matching lines", func(t *testing.T) {
		in := newTestInput(newTestLine(uuid.New(), 10))
		p, err := NewPair(tenantID, actorID, in, nil)
		require.NoError(t, err)

		require.NoError(t, p.Validate())
		assert.Equal(t, KindSellTransfer, p.Sell.Kind)
		assert.Equal(t, KindPurchaseTransfer, p.Purchase.Kind)
		assert.Equal(t, in.OriginLocationID, p.Sell.LocationID)
		assert.Equal(t, in.DestinationLocationID, p.Purchase.LocationID)
		assert.Equal(t, p.Sell.ID, *p.Purchase.TransferParentID)
		assert.Equal(t, StatusPending, p.Status())
		require.Len(t, p.Sell.SellLines, 1)
		require.Len(t, p.Purchase.PurchaseLines, 1)
		assert.True(t, p.Purchase.PurchaseLines[0].Quantity.Equal(decimal.NewFromInt(10)))
		assert.True(t, p.Sell.TotalBeforeTax.Equal(decimal.NewFromInt(20)))
		assert.True(t, p.Sell.FinalTotal.Equal(decimal.NewFromInt(25)))

		events := p.Sell.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeTransferCreated, events[0].EventType())
	})

	t.Run("converts sub units to base units", func(t *testing.T) {
		line := newTestLine(uuid.New(), 3)
		line.UnitPrice = decimal.NewFromInt(120)
		line.BaseUnitMultiplier = decimal.NewFromInt(12)
		p, err := NewPair(tenantID, actorID, newTestInput(line), nil)
		require.NoError(t, err)

		assert.True(t, p.Sell.SellLines[0].BaseQuantity().Equal(decimal.NewFromInt(36)))
		assert.True(t, p.Purchase.PurchaseLines[0].Quantity.Equal(decimal.NewFromInt(36)))
		assert.True(t, p.Purchase.PurchaseLines[0].PurchasePrice.Equal(decimal.NewFromInt(10)))
	})

	t.Run("copies lot metadata from the referenced lot", func(t *testing.T) {
		exp := time.Now().AddDate(1, 0, 0)
		lot := NewPurchaseLine(tenantID, uuid.New())
		lot.LotNumber = "LOT-7"
		lot.ExpDate = &exp
		line := newTestLine(uuid.New(), 1)
		line.LotNoLineID = &lot.ID

		p, err := NewPair(tenantID, actorID, newTestInput(line), map[uuid.UUID]*PurchaseLine{lot.ID: &lot})
		require.NoError(t, err)

		assert.Equal(t, "LOT-7", p.Purchase.PurchaseLines[0].LotNumber)
		assert.Equal(t, &exp, p.Purchase.PurchaseLines[0].ExpDate)
	})

	t.Run("rejects completed on create", func(t *testing.T) {
		in := newTestInput(newTestLine(uuid.New(), 1))
		in.Status = StatusCompleted
		_, err := NewPair(tenantID, actorID, in, nil)
		require.Error(t, err)
		assert.True(t, shared.HasCode(err, shared.CodeValidation))
	})

	t.Run("rejects same origin and destination", func(t *testing.T) {
		in := newTestInput(newTestLine(uuid.New(), 1))
		in.DestinationLocationID = in.OriginLocationID
		_, err := NewPair(tenantID, actorID, in, nil)
		assert.True(t, shared.HasCode(err, shared.CodeValidation))
	})
}

func TestPair_ReplaceLines(t *testing.T) {
	tenantID := uuid.New()
	keep := uuid.New()
	drop := uuid.New()

	p, err := NewPair(tenantID, uuid.New(), newTestInput(newTestLine(keep, 10), newTestLine(drop, 4)), nil)
	require.NoError(t, err)
	keptSellID := p.Sell.SellLines[0].ID
	keptPurchaseID := p.Purchase.PurchaseLines[0].ID

	added := uuid.New()
	changes := p.ReplaceLines([]LineInput{newTestLine(keep, 6), newTestLine(added, 2)}, nil)

	require.Len(t, p.Sell.SellLines, 2)
	assert.Equal(t, keptSellID, p.Sell.SellLines[0].ID)
	assert.Equal(t, keptPurchaseID, p.Purchase.PurchaseLines[0].ID)
	assert.True(t, p.Purchase.PurchaseLines[0].Quantity.Equal(decimal.NewFromInt(6)))

	assert.Len(t, changes.SellUpdated, 1)
	assert.Len(t, changes.SellAdded, 1)
	require.Len(t, changes.SellRemoved, 1)
	assert.Equal(t, drop, changes.SellRemoved[0].VariationID)
	assert.Len(t, changes.PurchaseUpdated, 1)
	assert.Len(t, changes.PurchaseAdded, 1)
	require.Len(t, changes.PurchaseRemoved, 1)
	assert.Equal(t, drop, changes.PurchaseRemoved[0].VariationID)
	assert.True(t, p.Sell.TotalBeforeTax.Equal(decimal.NewFromInt(16)))
}

func TestPair_Gates(t *testing.T) {
	now := time.Now()

	t.Run("edit window", func(t *testing.T) {
		in := newTestInput(newTestLine(uuid.New(), 1))
		in.TransactionDate = now.AddDate(0, 0, -10)
		p, err := NewPair(uuid.New(), uuid.New(), in, nil)
		require.NoError(t, err)

		assert.NoError(t, p.EnsureEditable(now, 0))
		assert.NoError(t, p.EnsureEditable(now, 30))
		err = p.EnsureEditable(now, 7)
		assert.True(t, errors.Is(err, ErrEditWindowExpired))
		assert.True(t, errors.Is(p.EnsureDeletable(now, 7), ErrEditWindowExpired))
	})

	t.Run("downstream consumption locks edit and delete", func(t *testing.T) {
		p, err := NewPair(uuid.New(), uuid.New(), newTestInput(newTestLine(uuid.New(), 10)), nil)
		require.NoError(t, err)
		require.NoError(t, p.Purchase.PurchaseLines[0].Allocate(decimal.NewFromInt(3)))

		assert.True(t, shared.HasCode(p.EnsureEditable(now, 0), CodeTransferLocked))
		assert.True(t, shared.HasCode(p.EnsureDeletable(now, 0), CodeTransferLocked))
	})

	t.Run("completed transfer can be deleted but not edited", func(t *testing.T) {
		p, err := NewPair(uuid.New(), uuid.New(), newTestInput(newTestLine(uuid.New(), 10)), nil)
		require.NoError(t, err)
		_, err = p.ChangeStatus(StatusCompleted, uuid.New())
		require.NoError(t, err)

		assert.True(t, errors.Is(p.EnsureEditable(now, 0), ErrTransferLocked))
		assert.NoError(t, p.EnsureDeletable(now, 0))
	})
}

func TestPair_ChangeStatus(t *testing.T) {
	p, err := NewPair(uuid.New(), uuid.New(), newTestInput(newTestLine(uuid.New(), 1)), nil)
	require.NoError(t, err)
	p.Sell.ClearDomainEvents()

	kind, err := p.ChangeStatus(StatusInTransit, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, TransitionRelabel, kind)
	assert.Equal(t, "in_transit", p.Purchase.Status)

	kind, err = p.ChangeStatus(StatusCompleted, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, TransitionComplete, kind)
	assert.Equal(t, SellStatusFinal, p.Sell.Status)
	assert.Equal(t, PurchaseStatusReceived, p.Purchase.Status)

	kind, err = p.ChangeStatus(StatusCompleted, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, TransitionNoOp, kind)

	_, err = p.ChangeStatus(StatusPending, uuid.New())
	assert.True(t, errors.Is(err, shared.ErrInvalidState))

	types := make([]string, 0)
	for _, e := range p.Sell.GetDomainEvents() {
		types = append(types, e.EventType())
	}
	assert.Equal(t, []string{
		EventTypeTransferStatusChanged,
		EventTypeTransferStatusChanged,
		EventTypeTransferCompleted,
	}, types)
}
