package domain

import "context"

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Product, error)
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id string) (*Product, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Product, error)
	Delete(ctx context.Context, id string) error
}

// CreateRequest carries a new product. A nil field is treated as missing;
// a NaN price means the client sent something that is not a number.
type CreateRequest struct {
	Name  *string
	Price *float64
	SKU   *string
}

// UpdateRequest carries the fields to replace. Nil fields are left untouched.
type UpdateRequest struct {
	Name  *string
	Price *float64
	SKU   *string
}

func (r UpdateRequest) IsEmpty() bool {
	return r.Name == nil && r.Price == nil && r.SKU == nil
}

// SKULocker guards the window between the SKU uniqueness check and the write.
type SKULocker interface {
	Lock(ctx context.Context, sku string) (unlock func(), err error)
}
