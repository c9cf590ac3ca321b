package ledger

import (
	"context"

	"github.com/erp/stocktransfer/internal/domain/ledger"
	"github.com/erp/stocktransfer/internal/domain/transfer"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockQuantityRepository struct {
	mock.Mock
}

func (m *MockQuantityRepository) FindByKey(ctx context.Context, key ledger.Key) (*ledger.VariationLocationQuantity, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.VariationLocationQuantity), args.Error(1)
}

func (m *MockQuantityRepository) Create(ctx context.Context, q *ledger.VariationLocationQuantity) error {
	return m.Called(ctx, q).Error(0)
}

func (m *MockQuantityRepository) SaveWithLock(ctx context.Context, q *ledger.VariationLocationQuantity) error {
	return m.Called(ctx, q).Error(0)
}

func (m *MockQuantityRepository) List(ctx context.Context, tenantID uuid.UUID, filter ledger.QuantityFilter) ([]ledger.VariationLocationQuantity, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]ledger.VariationLocationQuantity), args.Get(1).(int64), args.Error(2)
}

type MockMovementRepository struct {
	mock.Mock
}

func (m *MockMovementRepository) Create(ctx context.Context, mv *ledger.StockMovement) error {
	return m.Called(ctx, mv).Error(0)
}

func (m *MockMovementRepository) FindBySource(ctx context.Context, tenantID, transactionID uuid.UUID) ([]ledger.StockMovement, error) {
	args := m.Called(ctx, tenantID, transactionID)
	return args.Get(0).([]ledger.StockMovement), args.Error(1)
}

type MockSellLineRepository struct {
	mock.Mock
}

func (m *MockSellLineRepository) Create(ctx context.Context, lines ...*transfer.SellLine) error {
	return m.Called(ctx, lines).Error(0)
}

func (m *MockSellLineRepository) Update(ctx context.Context, lines ...*transfer.SellLine) error {
	return m.Called(ctx, lines).Error(0)
}

func (m *MockSellLineRepository) Delete(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) error {
	return m.Called(ctx, tenantID, ids).Error(0)
}

func (m *MockSellLineRepository) FindCompletedAt(ctx context.Context, tenantID, locationID, variationID uuid.UUID) ([]transfer.SellLine, error) {
	args := m.Called(ctx, tenantID, locationID, variationID)
	return args.Get(0).([]transfer.SellLine), args.Error(1)
}

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
	quantity *MockQuantityRepository
	movement *MockMovementRepository
	sellLine *MockSellLineRepository
	purchase *MockPurchaseLineRepository
	link     *MockLinkRepository
}

func newMockRepos() *mockRepos {
	return &mockRepos{
		quantity: new(MockQuantityRepository),
		movement: new(MockMovementRepository),
		sellLine: new(MockSellLineRepository),
		purchase: new(MockPurchaseLineRepository),
		link:     new(MockLinkRepository),
	}
}

func (r *mockRepos) QuantityRepo() ledger.QuantityRepository           { return r.quantity }
func (r *mockRepos) MovementRepo() ledger.MovementRepository           { return r.movement }
func (r *mockRepos) SellLineRepo() transfer.SellLineRepository         { return r.sellLine }
func (r *mockRepos) PurchaseLineRepo() transfer.PurchaseLineRepository { return r.purchase }
func (r *mockRepos) LinkRepo() transfer.LinkRepository                 { return r.link }
