package seed

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	productdomain "github.com/smallbiznis/catalog/internal/product/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&productdomain.Product{}))
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return conn
}

func TestEnsureSampleProductsIsIdempotent(t *testing.T) {
	conn := newTestDB(t)

	created, err := EnsureSampleProducts(conn)
	require.NoError(t, err)
	assert.Equal(t, len(sampleProducts), created)

	created, err = EnsureSampleProducts(conn)
	require.NoError(t, err)
	assert.Zero(t, created)

	var count int64
	require.NoError(t, conn.Model(&productdomain.Product{}).Count(&count).Error)
	assert.Equal(t, int64(len(sampleProducts)), count)
}

func TestEnsureSampleProductsKeepsExistingRows(t *testing.T) {
	conn := newTestDB(t)
	existing := productdomain.Product{Name: "Custom Grinder", SKU: "GRD-BURR-01"}
	require.NoError(t, conn.Create(&existing).Error)

	created, err := EnsureSampleProducts(conn)
	require.NoError(t, err)
	assert.Equal(t, len(sampleProducts)-1, created)

	var got productdomain.Product
	require.NoError(t, conn.Where("sku = ?", "GRD-BURR-01").First(&got).Error)
	assert.Equal(t, "Custom Grinder", got.Name)
}

func TestEnsureSampleProductsRequiresDB(t *testing.T) {
	_, err := EnsureSampleProducts(nil)
	require.Error(t, err)
}
