package domain

import "github.com/shopspring/decimal"

type Product struct {
	ID    int64           `json:"id" gorm:"primaryKey;autoIncrement"`
	Name  string          `json:"name" gorm:"type:varchar(100);not null;index:ix_products_name"`
	Price decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	SKU   string          `json:"sku" gorm:"column:sku;type:varchar(50);not null;uniqueIndex:ux_products_sku"`
}

func (Product) TableName() string { return "products" }
