package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories that share one database handle. Inside
// Transaction every repository returned by the tx Store runs on the same
// database transaction.
type Store interface {
	Products() ProductRepository
	Categories() CategoryRepository
	Orders() OrderRepository
	OrderItems() OrderItemRepository
	Coupons() CouponRepository
	Users() UserRepository
	StoreConfigs() StoreConfigRepository
	Transaction(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
}

type gormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Products() ProductRepository         { return NewProductRepository(s.db) }
func (s *gormStore) Categories() CategoryRepository      { return NewCategoryRepository(s.db) }
func (s *gormStore) Orders() OrderRepository             { return NewOrderRepository(s.db) }
func (s *gormStore) OrderItems() OrderItemRepository     { return NewOrderItemRepository(s.db) }
func (s *gormStore) Coupons() CouponRepository           { return NewCouponRepository(s.db) }
func (s *gormStore) Users() UserRepository               { return NewUserRepository(s.db) }
func (s *gormStore) StoreConfigs() StoreConfigRepository { return NewStoreConfigRepository(s.db) }

func (s *gormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

func (s *gormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
