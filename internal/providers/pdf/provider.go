package pdf

import (
	"context"
	"io"
	"time"
)

type Provider interface {
	GeneratePriceList(ctx context.Context, data PriceListData) (io.Reader, error)
}

// PriceListData is the document model for a catalog price list.
type PriceListData struct {
	Title       string
	GeneratedAt time.Time
	Items       []PriceListItem
}

type PriceListItem struct {
	Name          string
	SKU           string
	Price         string
	MissingLetter string
}
