package usecase_test

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/infra/db"
	gormrepo "storefront/internal/infra/repository"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

// sqlite(in-memory)上の実リポジトリ一式
type testEnv struct {
	db         *gorm.DB
	users      *gormrepo.UserGormRepository
	products   *gormrepo.ProductGormRepository
	categories *gormrepo.CategoryGormRepository
	cartItems  *gormrepo.CartItemGormRepository
	orders     *gormrepo.OrderGormRepository
	orderItems *gormrepo.OrderItemGormRepository
	auditLogs  repo.AuditLogRepository
	tx         *gormrepo.TxManagerGorm
	clock      fixedClock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gdb, err := db.OpenSQLite(":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(gdb))
	t.Cleanup(func() { _ = db.Close(gdb) })

	return &testEnv{
		db:         gdb,
		users:      gormrepo.NewUserRepository(gdb),
		products:   gormrepo.NewProductGormRepository(gdb),
		categories: gormrepo.NewCategoryGormRepository(gdb),
		cartItems:  gormrepo.NewCartItemGormRepository(gdb),
		orders:     gormrepo.NewOrderGormRepository(gdb),
		orderItems: gormrepo.NewOrderItemGormRepository(gdb),
		auditLogs:  gormrepo.NewAuditLogGormRepository(gdb),
		tx:         gormrepo.NewTxManagerGorm(gdb),
		clock:      fixedClock{testNow},
	}
}

func (e *testEnv) seedUser(t *testing.T, email string) model.User {
	t.Helper()
	u := model.User{Email: email, PasswordHash: "x", Role: model.RoleUser}
	require.NoError(t, e.users.Create(context.Background(), &u))
	return u
}

func (e *testEnv) seedProduct(t *testing.T, slug string, price string, stock int64) model.Product {
	t.Helper()
	p := model.Product{Title: strings.ToUpper(slug), Slug: slug, Price: decimal.RequireFromString(price), Stock: stock}
	require.NoError(t, e.products.Create(context.Background(), &p))
	return p
}

func (e *testEnv) count(t *testing.T, m interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(m).Count(&n).Error)
	return n
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// メモリ上の画像ストア
type memStore struct {
	mu      sync.Mutex
	files   map[string]string
	removed []string
}

func newMemStore() *memStore {
	return &memStore{files: map[string]string{}}
}

func (s *memStore) Save(_ context.Context, name string, r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	url := "/uploads/id_" + name
	s.files[url] = string(b)
	return url, nil
}

func (s *memStore) Remove(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, url)
	s.removed = append(s.removed, url)
	return nil
}
