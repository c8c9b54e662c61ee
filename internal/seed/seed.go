package seed

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	productdomain "github.com/smallbiznis/catalog/internal/product/domain"
	"gorm.io/gorm"
)

type sampleProduct struct {
	name  string
	price string
	sku   string
}

var sampleProducts = []sampleProduct{
	{name: "Espresso Beans 1kg", price: "18.50", sku: "COF-ESP-1KG"},
	{name: "Ceramic Pour Over", price: "24.00", sku: "BRW-POUR-01"},
	{name: "Paper Filters 100pk", price: "4.75", sku: "BRW-FLT-100"},
	{name: "Burr Grinder", price: "129.99", sku: "GRD-BURR-01"},
	{name: "Milk Jug 600ml", price: "15.20", sku: "ACC-JUG-600"},
}

// EnsureSampleProducts inserts the demo catalog rows that are missing by SKU.
// Rows already present are left untouched, so it is safe to call on every boot.
func EnsureSampleProducts(db *gorm.DB) (int, error) {
	if db == nil {
		return 0, errors.New("seed database handle is required")
	}

	ctx := context.Background()
	created := 0
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, sample := range sampleProducts {
			ok, err := ensureProductTx(ctx, tx, sample)
			if err != nil {
				return err
			}
			if ok {
				created++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

func ensureProductTx(ctx context.Context, tx *gorm.DB, sample sampleProduct) (bool, error) {
	var existing productdomain.Product
	err := tx.WithContext(ctx).Where("sku = ?", sample.sku).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	price, err := decimal.NewFromString(sample.price)
	if err != nil {
		return false, err
	}
	product := productdomain.Product{
		Name:  sample.name,
		Price: price,
		SKU:   sample.sku,
	}
	if err := tx.WithContext(ctx).Create(&product).Error; err != nil {
		return false, err
	}
	return true, nil
}
