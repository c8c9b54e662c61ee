package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/catalog/internal/product/domain"
	"github.com/smallbiznis/catalog/internal/product/domain/mock"
	"github.com/smallbiznis/catalog/internal/product/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func strPtr(v string) *string { return &v }

func floatPtr(v float64) *float64 { return &v }

func setupService(t *testing.T) domain.Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Product{}))
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return New(Params{DB: conn, Log: zap.NewNop(), Repo: repository.Provide()})
}

func createReq(name string, price float64, sku string) domain.CreateRequest {
	return domain.CreateRequest{Name: strPtr(name), Price: floatPtr(price), SKU: strPtr(sku)}
}

func TestCreateThenGet(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, createReq("Widget", 9.99, "WID-001"))
	require.NoError(t, err)
	assert.Positive(t, created.ID)

	got, err := svc.Get(ctx, fmt.Sprint(created.ID))
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Widget", got.Name)
	assert.Equal(t, "WID-001", got.SKU)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("9.99")))
}

func TestCreateDuplicateSKU(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, createReq("Widget", 1, "WID-001"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, createReq("Other", 2, "WID-001"))
	require.ErrorIs(t, err, domain.ErrDuplicateSKU)
	assert.EqualError(t, err, "Product with SKU WID-001 already exists")

	_, err = svc.Create(ctx, createReq("Other", 2, "wid-001"))
	require.NoError(t, err)
}

func TestCreatePricePrecision(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, createReq("Widget", 9.999, "WID-001"))
	vErr, ok := domain.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, domain.CodeInvalidPrecision, vErr.Code)

	_, err = svc.Create(ctx, createReq("Widget", 9.99, "WID-001"))
	require.NoError(t, err)
}

func TestCreateRejectsBadSKU(t *testing.T) {
	svc := setupService(t)
	_, err := svc.Create(context.Background(), createReq("Widget", 1, "WID#1"))
	vErr, ok := domain.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "sku", vErr.Field)
}

func TestListSortedByName(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	for i, name := range []string{"pear", "apple", "mango"} {
		_, err := svc.Create(ctx, createReq(name, 1, fmt.Sprintf("SKU-%d", i)))
		require.NoError(t, err)
	}

	items, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, []string{"apple", "mango", "pear"}, []string{items[0].Name, items[1].Name, items[2].Name})
}

func TestGetInvalidID(t *testing.T) {
	svc := setupService(t)
	for _, id := range []string{"", "abc", "0", "-3", "1.5"} {
		_, err := svc.Get(context.Background(), id)
		assert.ErrorIs(t, err, domain.ErrInvalidID, "id %q", id)
	}
}

func TestGetNotFound(t *testing.T) {
	svc := setupService(t)
	_, err := svc.Get(context.Background(), "77")
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.EqualError(t, err, "Product with ID 77 not found")
}

func TestUpdate(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, createReq("Widget", 9.99, "WID-001"))
	require.NoError(t, err)
	id := fmt.Sprint(created.ID)

	updated, err := svc.Update(ctx, id, domain.UpdateRequest{Name: strPtr("Gadget"), Price: floatPtr(19.5)})
	require.NoError(t, err)
	assert.Equal(t, "Gadget", updated.Name)
	assert.Equal(t, "WID-001", updated.SKU)
	assert.Equal(t, "19.50", updated.Price.StringFixed(2))

	updated, err = svc.Update(ctx, id, domain.UpdateRequest{Name: strPtr("Gadget"), Price: floatPtr(19.5), SKU: strPtr("GAD-001")})
	require.NoError(t, err)
	assert.Equal(t, "GAD-001", updated.SKU)

	got, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "GAD-001", got.SKU)
	assert.Equal(t, "Gadget", got.Name)
}

func TestUpdateKeepsOwnSKU(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, createReq("Widget", 1, "WID-001"))
	require.NoError(t, err)

	_, err = svc.Update(ctx, fmt.Sprint(created.ID), domain.UpdateRequest{Name: strPtr("Widget"), Price: floatPtr(2), SKU: strPtr("WID-001")})
	require.NoError(t, err)
}

func TestUpdateDuplicateSKU(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, createReq("A", 1, "SKU-A"))
	require.NoError(t, err)
	b, err := svc.Create(ctx, createReq("B", 1, "SKU-B"))
	require.NoError(t, err)

	_, err = svc.Update(ctx, fmt.Sprint(b.ID), domain.UpdateRequest{Name: strPtr("B"), Price: floatPtr(1), SKU: strPtr("SKU-A")})
	require.ErrorIs(t, err, domain.ErrDuplicateSKU)
}

func TestUpdateErrors(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, createReq("Widget", 1, "WID-001"))
	require.NoError(t, err)
	id := fmt.Sprint(created.ID)

	_, err = svc.Update(ctx, "x", domain.UpdateRequest{Name: strPtr("A")})
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	_, err = svc.Update(ctx, id, domain.UpdateRequest{})
	assert.ErrorIs(t, err, domain.ErrEmptyUpdate)

	_, err = svc.Update(ctx, id, domain.UpdateRequest{Name: strPtr("Widget"), Price: floatPtr(9.999)})
	_, ok := domain.AsValidationError(err)
	assert.True(t, ok)

	_, err = svc.Update(ctx, "999", domain.UpdateRequest{Name: strPtr("Widget"), Price: floatPtr(1)})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDelete(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, createReq("Widget", 1, "WID-001"))
	require.NoError(t, err)
	id := fmt.Sprint(created.ID)

	require.NoError(t, svc.Delete(ctx, id))

	_, err = svc.Get(ctx, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = svc.Delete(ctx, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, "nope"), domain.ErrInvalidID)
}

func newMockedService(t *testing.T, locker domain.SKULocker) (domain.Service, *mock.MockRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := mock.NewMockRepository(ctrl)
	return New(Params{Log: zap.NewNop(), Repo: repo, Locker: locker}), repo
}

func TestCreateMapsUniqueViolation(t *testing.T) {
	svc, repo := newMockedService(t, nil)

	repo.EXPECT().FindBySKU(gomock.Any(), gomock.Any(), "WID-001").Return(nil, nil)
	repo.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Return(gorm.ErrDuplicatedKey)

	_, err := svc.Create(context.Background(), createReq("Widget", 1, "WID-001"))
	assert.ErrorIs(t, err, domain.ErrDuplicateSKU)
}

func TestCreatePropagatesStoreErrors(t *testing.T) {
	svc, repo := newMockedService(t, nil)
	boom := errors.New("connection reset")

	repo.EXPECT().FindBySKU(gomock.Any(), gomock.Any(), "WID-001").Return(nil, boom)

	_, err := svc.Create(context.Background(), createReq("Widget", 1, "WID-001"))
	assert.ErrorIs(t, err, boom)
}

func TestValidationSkipsStore(t *testing.T) {
	svc, _ := newMockedService(t, nil)

	_, err := svc.Create(context.Background(), createReq("", 1, "WID-001"))
	_, ok := domain.AsValidationError(err)
	assert.True(t, ok)
}

func TestListPropagatesStoreErrors(t *testing.T) {
	svc, repo := newMockedService(t, nil)
	boom := errors.New("timeout")
	repo.EXPECT().FindAll(gomock.Any(), gomock.Any()).Return(nil, boom)

	_, err := svc.List(context.Background())
	assert.ErrorIs(t, err, boom)
}

type recordingLocker struct {
	locked   []string
	unlocked []string
	err      error
}

func (l *recordingLocker) Lock(_ context.Context, sku string) (func(), error) {
	if l.err != nil {
		return nil, l.err
	}
	l.locked = append(l.locked, sku)
	return func() { l.unlocked = append(l.unlocked, sku) }, nil
}

func TestCreateHoldsSKULock(t *testing.T) {
	locker := &recordingLocker{}
	svc, repo := newMockedService(t, locker)

	gomock.InOrder(
		repo.EXPECT().FindBySKU(gomock.Any(), gomock.Any(), "WID-001").DoAndReturn(
			func(context.Context, *gorm.DB, string) (*domain.Product, error) {
				assert.Equal(t, []string{"WID-001"}, locker.locked)
				assert.Empty(t, locker.unlocked)
				return nil, nil
			}),
		repo.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, _ *gorm.DB, p *domain.Product) error {
				p.ID = 7
				return nil
			}),
	)

	created, err := svc.Create(context.Background(), createReq("Widget", 1, "WID-001"))
	require.NoError(t, err)
	assert.Equal(t, int64(7), created.ID)
	assert.Equal(t, []string{"WID-001"}, locker.unlocked)
}

func TestCreateSKULockBusy(t *testing.T) {
	locker := &recordingLocker{err: domain.SKUBusyError("WID-001")}
	svc, _ := newMockedService(t, locker)

	_, err := svc.Create(context.Background(), createReq("Widget", 1, "WID-001"))
	assert.ErrorIs(t, err, domain.ErrSKUBusy)
}

func TestUpdateLocksOnlyChangedSKU(t *testing.T) {
	locker := &recordingLocker{}
	svc, repo := newMockedService(t, locker)

	existing := &domain.Product{ID: 3, Name: "Widget", Price: decimal.NewFromInt(1), SKU: "WID-001"}
	repo.EXPECT().FindByID(gomock.Any(), gomock.Any(), int64(3)).Return(existing, nil)
	repo.EXPECT().Update(gomock.Any(), gomock.Any(), existing).Return(nil)

	_, err := svc.Update(context.Background(), "3", domain.UpdateRequest{Name: strPtr("Widget"), Price: floatPtr(2), SKU: strPtr("WID-001")})
	require.NoError(t, err)
	assert.Empty(t, locker.locked)
}
