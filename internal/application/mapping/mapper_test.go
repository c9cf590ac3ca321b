package mapping

import (
	"context"
	"testing"
	"time"

	"github.com/erp/stocktransfer/internal/domain/shared"
	"github.com/erp/stocktransfer/internal/domain/transfer"
	infrastrategy "github.com/erp/stocktransfer/internal/infrastructure/strategy"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPurchaseLineRepository struct {
	mock.Mock
}

func (m *MockPurchaseLineRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]transfer.PurchaseLine, error) {
	args := m.Called(ctx, tenantID, ids)
	return args.Get(0).([]transfer.PurchaseLine), args.Error(1)
}

func (m *MockPurchaseLineRepository) FindLocations(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	args := m.Called(ctx, tenantID, ids)
	return args.Get(0).(map[uuid.UUID]uuid.UUID), args.Error(1)
}

func (m *MockPurchaseLineRepository) FindAvailable(ctx context.Context, tenantID, locationID, variationID uuid.UUID) ([]transfer.SupplyLine, error) {
	args := m.Called(ctx, tenantID, locationID, variationID)
	return args.Get(0).([]transfer.SupplyLine), args.Error(1)
}

func (m *MockPurchaseLineRepository) Create(ctx context.Context, lines ...*transfer.PurchaseLine) error {
	return m.Called(ctx, lines).Error(0)
}

func (m *MockPurchaseLineRepository) Update(ctx context.Context, lines ...*transfer.PurchaseLine) error {
	return m.Called(ctx, lines).Error(0)
}

func (m *MockPurchaseLineRepository) SaveQuantitySold(ctx context.Context, line *transfer.PurchaseLine) error {
	return m.Called(ctx, line).Error(0)
}

func (m *MockPurchaseLineRepository) Delete(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) error {
	return m.Called(ctx, tenantID, ids).Error(0)
}

type MockLinkRepository struct {
	mock.Mock
}

func (m *MockLinkRepository) FindBySellLineIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]transfer.SellPurchaseLink, error) {
	args := m.Called(ctx, tenantID, ids)
	return args.Get(0).([]transfer.SellPurchaseLink), args.Error(1)
}

func (m *MockLinkRepository) Create(ctx context.Context, links ...*transfer.SellPurchaseLink) error {
	return m.Called(ctx, links).Error(0)
}

func (m *MockLinkRepository) UpdateQuantity(ctx context.Context, links ...*transfer.SellPurchaseLink) error {
	return m.Called(ctx, links).Error(0)
}

func (m *MockLinkRepository) DeleteBySellLineIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) error {
	return m.Called(ctx, tenantID, ids).Error(0)
}

type mockRepos struct {
	purchase *MockPurchaseLineRepository
	link     *MockLinkRepository
}

func (r *mockRepos) PurchaseLineRepo() transfer.PurchaseLineRepository { return r.purchase }
func (r *mockRepos) LinkRepo() transfer.LinkRepository                 { return r.link }

func newTestMapper(t *testing.T) (*Mapper, *mockRepos) {
	t.Helper()
	registry, err := infrastrategy.NewRegistryWithDefaults()
	require.NoError(t, err)
	repos := &mockRepos{purchase: new(MockPurchaseLineRepository), link: new(MockLinkRepository)}
	return New(repos, registry, nil), repos
}

func supplyLine(tenantID, variationID uuid.UUID, qty, sold int64, receivedAt time.Time) transfer.SupplyLine {
	pl := transfer.NewPurchaseLine(tenantID, uuid.New())
	pl.VariationID = variationID
	pl.Quantity = decimal.NewFromInt(qty)
	pl.QuantitySold = decimal.NewFromInt(sold)
	pl.PurchasePrice = decimal.NewFromInt(2)
	return transfer.SupplyLine{PurchaseLine: pl, ReceivedAt: receivedAt}
}

func sellLine(tenantID, variationID uuid.UUID, qty int64) *transfer.SellLine {
	sl := transfer.NewSellLine(tenantID, uuid.New(), transfer.LineInput{
		ProductID:   uuid.New(),
		VariationID: variationID,
		Quantity:    decimal.NewFromInt(qty),
		EnableStock: true,
	})
	return &sl
}

func TestMapper_MapPurchaseSell(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	locationID := uuid.New()
	variationID := uuid.New()
	biz := shared.BusinessContext{TenantID: tenantID, AccountingMethod: "fifo"}
	now := time.Now()

	t.Run("allocates oldest supply first across lots", func(t *testing.T) {
		mapper, repos := newTestMapper(t)
		older := supplyLine(tenantID, variationID, 10, 4, now.Add(-48*time.Hour))
		newer := supplyLine(tenantID, variationID, 10, 0, now.Add(-24*time.Hour))
		sl := sellLine(tenantID, variationID, 10)

		repos.link.On("FindBySellLineIDs", ctx, tenantID, []uuid.UUID{sl.ID}).Return([]transfer.SellPurchaseLink{}, nil)
		repos.purchase.On("FindAvailable", ctx, tenantID, locationID, variationID).
			Return([]transfer.SupplyLine{newer, older}, nil)
		repos.purchase.On("SaveQuantitySold", ctx, mock.MatchedBy(func(pl *transfer.PurchaseLine) bool {
			return pl.ID == older.ID && pl.QuantitySold.Equal(decimal.NewFromInt(10))
		})).Return(nil).Once()
		repos.purchase.On("SaveQuantitySold", ctx, mock.MatchedBy(func(pl *transfer.PurchaseLine) bool {
			return pl.ID == newer.ID && pl.QuantitySold.Equal(decimal.NewFromInt(4))
		})).Return(nil).Once()
		repos.link.On("Create", ctx, mock.MatchedBy(func(links []*transfer.SellPurchaseLink) bool {
			return len(links) == 2
		})).Return(nil)

		result, err := mapper.MapPurchaseSell(ctx, biz, locationID, []*transfer.SellLine{sl}, DirectionPurchase)

		require.NoError(t, err)
		assert.Equal(t, "10", result.Allocated.String())
		assert.False(t, result.HasShortfall())
		require.Len(t, result.Lines, 1)
		assert.Equal(t, "10", result.Lines[0].Allocated.String())
		repos.purchase.AssertExpectations(t)
		repos.link.AssertExpectations(t)
	})

	t.Run("fully linked lines allocate nothing", func(t *testing.T) {
		mapper, repos := newTestMapper(t)
		sl := sellLine(tenantID, variationID, 10)
		existing := []transfer.SellPurchaseLink{
			*transfer.NewSellPurchaseLink(tenantID, sl.ID, uuid.New(), decimal.NewFromInt(10)),
		}
		repos.link.On("FindBySellLineIDs", ctx, tenantID, []uuid.UUID{sl.ID}).Return(existing, nil)

		result, err := mapper.MapPurchaseSell(ctx, biz, locationID, []*transfer.SellLine{sl}, DirectionPurchase)

		require.NoError(t, err)
		assert.True(t, result.Allocated.IsZero())
		assert.Equal(t, "10", result.Lines[0].AlreadyLinked.String())
		repos.purchase.AssertNotCalled(t, "FindAvailable", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		repos.link.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("partially linked line extends its existing link", func(t *testing.T) {
		mapper, repos := newTestMapper(t)
		supply := supplyLine(tenantID, variationID, 20, 4, now)
		sl := sellLine(tenantID, variationID, 10)
		existing := []transfer.SellPurchaseLink{
			*transfer.NewSellPurchaseLink(tenantID, sl.ID, supply.ID, decimal.NewFromInt(4)),
		}
		repos.link.On("FindBySellLineIDs", ctx, tenantID, []uuid.UUID{sl.ID}).Return(existing, nil)
		repos.purchase.On("FindAvailable", ctx, tenantID, locationID, variationID).Return([]transfer.SupplyLine{supply}, nil)
		repos.purchase.On("SaveQuantitySold", ctx, mock.Anything).Return(nil)
		repos.link.On("UpdateQuantity", ctx, mock.MatchedBy(func(links []*transfer.SellPurchaseLink) bool {
			return len(links) == 1 && links[0].Quantity.Equal(decimal.NewFromInt(10))
		})).Return(nil)

		result, err := mapper.MapPurchaseSell(ctx, biz, locationID, []*transfer.SellLine{sl}, DirectionPurchase)

		require.NoError(t, err)
		assert.Equal(t, "6", result.Allocated.String())
		repos.link.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		repos.link.AssertExpectations(t)
	})

	t.Run("shortfall is reported without error", func(t *testing.T) {
		mapper, repos := newTestMapper(t)
		supply := supplyLine(tenantID, variationID, 3, 0, now)
		sl := sellLine(tenantID, variationID, 10)
		repos.link.On("FindBySellLineIDs", ctx, tenantID, []uuid.UUID{sl.ID}).Return([]transfer.SellPurchaseLink{}, nil)
		repos.purchase.On("FindAvailable", ctx, tenantID, locationID, variationID).Return([]transfer.SupplyLine{supply}, nil)
		repos.purchase.On("SaveQuantitySold", ctx, mock.Anything).Return(nil)
		repos.link.On("Create", ctx, mock.Anything).Return(nil)

		result, err := mapper.MapPurchaseSell(ctx, biz, locationID, []*transfer.SellLine{sl}, DirectionPurchase)

		require.NoError(t, err)
		assert.True(t, result.HasShortfall())
		assert.Equal(t, "3", result.Allocated.String())
		assert.Equal(t, "7", result.Shortfall.String())
	})

	t.Run("explicit lot is drawn first", func(t *testing.T) {
		mapper, repos := newTestMapper(t)
		older := supplyLine(tenantID, variationID, 10, 0, now.Add(-72*time.Hour))
		chosen := supplyLine(tenantID, variationID, 10, 0, now)
		sl := sellLine(tenantID, variationID, 5)
		sl.LotNoLineID = &chosen.ID

		repos.link.On("FindBySellLineIDs", ctx, tenantID, []uuid.UUID{sl.ID}).Return([]transfer.SellPurchaseLink{}, nil)
		repos.purchase.On("FindAvailable", ctx, tenantID, locationID, variationID).
			Return([]transfer.SupplyLine{older, chosen}, nil)
		repos.purchase.On("SaveQuantitySold", ctx, mock.MatchedBy(func(pl *transfer.PurchaseLine) bool {
			return pl.ID == chosen.ID
		})).Return(nil).Once()
		repos.link.On("Create", ctx, mock.MatchedBy(func(links []*transfer.SellPurchaseLink) bool {
			return len(links) == 1 && links[0].PurchaseLineID == chosen.ID
		})).Return(nil)

		_, err := mapper.MapPurchaseSell(ctx, biz, locationID, []*transfer.SellLine{sl}, DirectionPurchase)

		require.NoError(t, err)
		repos.purchase.AssertExpectations(t)
		repos.link.AssertExpectations(t)
	})

	t.Run("lines without stock tracking are skipped", func(t *testing.T) {
		mapper, repos := newTestMapper(t)
		sl := sellLine(tenantID, variationID, 10)
		sl.EnableStock = false
		repos.link.On("FindBySellLineIDs", ctx, tenantID, []uuid.UUID{sl.ID}).Return([]transfer.SellPurchaseLink{}, nil)

		result, err := mapper.MapPurchaseSell(ctx, biz, locationID, []*transfer.SellLine{sl}, DirectionPurchase)

		require.NoError(t, err)
		assert.Empty(t, result.Lines)
	})

	t.Run("unsupported direction", func(t *testing.T) {
		mapper, _ := newTestMapper(t)

		_, err := mapper.MapPurchaseSell(ctx, biz, locationID, nil, Direction("sell"))

		require.Error(t, err)
		assert.True(t, shared.HasCode(err, shared.CodeValidation))
	})
}

func TestMapper_Unmap(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("releases linked quantity and deletes links", func(t *testing.T) {
		mapper, repos := newTestMapper(t)
		first := supplyLine(tenantID, uuid.New(), 10, 7, time.Now()).PurchaseLine
		second := supplyLine(tenantID, uuid.New(), 10, 2, time.Now()).PurchaseLine
		sellIDs := []uuid.UUID{uuid.New(), uuid.New()}
		links := []transfer.SellPurchaseLink{
			*transfer.NewSellPurchaseLink(tenantID, sellIDs[0], first.ID, decimal.NewFromInt(3)),
			*transfer.NewSellPurchaseLink(tenantID, sellIDs[1], first.ID, decimal.NewFromInt(2)),
			*transfer.NewSellPurchaseLink(tenantID, sellIDs[1], second.ID, decimal.NewFromInt(2)),
		}

		repos.link.On("FindBySellLineIDs", ctx, tenantID, sellIDs).Return(links, nil)
		repos.purchase.On("FindByIDs", ctx, tenantID, []uuid.UUID{first.ID, second.ID}).
			Return([]transfer.PurchaseLine{first, second}, nil)
		repos.purchase.On("SaveQuantitySold", ctx, mock.MatchedBy(func(pl *transfer.PurchaseLine) bool {
			return pl.ID == first.ID && pl.QuantitySold.Equal(decimal.NewFromInt(2))
		})).Return(nil).Once()
		repos.purchase.On("SaveQuantitySold", ctx, mock.MatchedBy(func(pl *transfer.PurchaseLine) bool {
			return pl.ID == second.ID && pl.QuantitySold.IsZero()
		})).Return(nil).Once()
		repos.link.On("DeleteBySellLineIDs", ctx, tenantID, sellIDs).Return(nil)

		released, err := mapper.Unmap(ctx, tenantID, sellIDs)

		require.NoError(t, err)
		assert.Equal(t, "7", released.String())
		repos.purchase.AssertExpectations(t)
		repos.link.AssertExpectations(t)
	})

	t.Run("no links is a no-op", func(t *testing.T) {
		mapper, repos := newTestMapper(t)
		ids := []uuid.UUID{uuid.New()}
		repos.link.On("FindBySellLineIDs", ctx, tenantID, ids).Return([]transfer.SellPurchaseLink{}, nil)

		released, err := mapper.Unmap(ctx, tenantID, ids)

		require.NoError(t, err)
		assert.True(t, released.IsZero())
		repos.link.AssertNotCalled(t, "DeleteBySellLineIDs", mock.Anything, mock.Anything, mock.Anything)
	})
}
