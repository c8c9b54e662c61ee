package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/catalog/internal/product/domain"
	"github.com/smallbiznis/catalog/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Product{}))
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return conn
}

func newProduct(name, price, sku string) *domain.Product {
	return &domain.Product{Name: name, Price: decimal.RequireFromString(price), SKU: sku}
}

func TestCreateAssignsID(t *testing.T) {
	conn := setupDB(t)
	r := Provide()
	ctx := context.Background()

	p := newProduct("Widget", "9.99", "WID-1")
	require.NoError(t, r.Create(ctx, conn, p))
	assert.Positive(t, p.ID)

	got, err := r.FindByID(ctx, conn, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Widget", got.Name)
	assert.Equal(t, "WID-1", got.SKU)
	assert.Equal(t, "9.99", got.Price.StringFixed(2))
}

func TestCreateRejectsDuplicateSKU(t *testing.T) {
	conn := setupDB(t)
	r := Provide()
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, conn, newProduct("A", "1", "SKU-1")))
	err := r.Create(ctx, conn, newProduct("B", "2", "SKU-1"))
	require.Error(t, err)
	assert.True(t, db.IsDuplicateKeyErr(err))

	require.NoError(t, r.Create(ctx, conn, newProduct("C", "3", "sku-1")))
}

func TestFindMissingReturnsNil(t *testing.T) {
	conn := setupDB(t)
	r := Provide()
	ctx := context.Background()

	got, err := r.FindByID(ctx, conn, 999)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = r.FindBySKU(ctx, conn, "NOPE")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFindAllOrdersByName(t *testing.T) {
	conn := setupDB(t)
	r := Provide()
	ctx := context.Background()

	for _, name := range []string{"Cherry", "Apple", "Banana"} {
		require.NoError(t, r.Create(ctx, conn, newProduct(name, "1.00", "SKU-"+name)))
	}

	items, err := r.FindAll(ctx, conn)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Apple", items[0].Name)
	assert.Equal(t, "Banana", items[1].Name)
	assert.Equal(t, "Cherry", items[2].Name)
}

func TestFindAllEmpty(t *testing.T) {
	items, err := Provide().FindAll(context.Background(), setupDB(t))
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestUpdateAndDelete(t *testing.T) {
	conn := setupDB(t)
	r := Provide()
	ctx := context.Background()

	p := newProduct("Widget", "9.99", "WID-1")
	require.NoError(t, r.Create(ctx, conn, p))

	p.Name = "Gadget"
	p.Price = decimal.RequireFromString("12.50")
	p.SKU = "GAD-1"
	require.NoError(t, r.Update(ctx, conn, p))

	got, err := r.FindByID(ctx, conn, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Gadget", got.Name)
	assert.Equal(t, "GAD-1", got.SKU)
	assert.Equal(t, "12.50", got.Price.StringFixed(2))

	affected, err := r.Delete(ctx, conn, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	affected, err = r.Delete(ctx, conn, p.ID)
	require.NoError(t, err)
	assert.Zero(t, affected)
}

func TestNilProduct(t *testing.T) {
	conn := setupDB(t)
	r := Provide()
	assert.ErrorIs(t, r.Create(context.Background(), conn, nil), gorm.ErrInvalidData)
	assert.ErrorIs(t, r.Update(context.Background(), conn, nil), gorm.ErrInvalidData)
}
