package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"storefront/internal/audit"
	"storefront/internal/models"
	"storefront/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection serializes transactions the way row locks would
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func newTestStore(t *testing.T) (repository.Store, *gorm.DB) {
	db := newTestDB(t)
	return repository.NewStore(db), db
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func createProduct(t *testing.T, store repository.Store, title, price string, stock int, division models.Division) *models.Product {
	t.Helper()
	p := &models.Product{
		ID:          uuid.NewString(),
		Title:       title,
		Slug:        Slugify(title) + "-" + uuid.NewString()[:8],
		Price:       dec(price),
		Stock:       stock,
		IsAvailable: true,
		Division:    division,
	}
	require.NoError(t, store.Products().Create(context.Background(), p))
	return p
}

func stockOf(t *testing.T, store repository.Store, id string) int {
	t.Helper()
	p, err := store.Products().GetByID(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func countOrders(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.Order{}).Count(&n).Error)
	return n
}

type fakeNotifier struct {
	mu     sync.Mutex
	calls  int
	err    error
	orders []string
}

func (f *fakeNotifier) NotifyNewOrder(_ context.Context, order *models.Order, _ *models.StoreConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.orders = append(f.orders, order.ID)
	return f.err
}

type memoryRecorder struct {
	mu      sync.Mutex
	entries []*audit.Entry
	err     error
}

func (m *memoryRecorder) Record(_ context.Context, entry *audit.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memoryRecorder) History(_ context.Context, entityID string, _ int64) ([]*audit.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*audit.Entry
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].EntityID == entityID {
			out = append(out, m.entries[i])
		}
	}
	return out, nil
}

func (m *memoryRecorder) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.Action)
	}
	return out
}

func newOrderService(store repository.Store, notifier Notifier, recorder audit.Recorder) OrderService {
	return NewOrderService(store, notifier, recorder, zap.NewNop(), OrderServiceOptions{})
}

func checkoutInput(lines ...LineInput) PlaceOrderInput {
	return PlaceOrderInput{
		ClientName:     "Ana Pérez",
		ClientPhone:    "1155551234",
		DeliveryMethod: models.DeliveryPickup,
		Division:       models.DivisionJugueteria,
		Items:          lines,
	}
}

func line(p *models.Product, quantity int) LineInput {
	return LineInput{ProductID: p.ID, Quantity: quantity, Price: p.Price}
}

func zapNop() *zap.Logger { return zap.NewNop() }

func repositoryFilter(status models.OrderStatus, page, size int) repository.OrderFilter {
	return repository.OrderFilter{Status: status, Page: page, PageSize: size}
}
