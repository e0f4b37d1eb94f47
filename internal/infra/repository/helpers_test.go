package repository

import (
	"testing"

	"storefront/internal/domain/model"
	"storefront/internal/infra/db"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := db.OpenSQLite(":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(gdb))
	t.Cleanup(func() { _ = db.Close(gdb) })
	return gdb
}

func seedUser(t *testing.T, gdb *gorm.DB, email string) model.User {
	t.Helper()
	u := model.User{Email: email, PasswordHash: "x", Role: model.RoleUser}
	require.NoError(t, gdb.Create(&u).Error)
	return u
}

func seedProduct(t *testing.T, gdb *gorm.DB, slug string, price string) model.Product {
	t.Helper()
	p := model.Product{Title: slug, Slug: slug, Price: decimal.RequireFromString(price), Stock: 10}
	require.NoError(t, gdb.Create(&p).Error)
	return p
}
