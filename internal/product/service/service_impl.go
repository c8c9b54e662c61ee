package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	obscontext "github.com/smallbiznis/catalog/internal/observability/context"
	"github.com/smallbiznis/catalog/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/catalog/internal/observability/metrics"
	"github.com/smallbiznis/catalog/internal/product/domain"
	"github.com/smallbiznis/catalog/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Repo    domain.Repository
	Metrics *obsmetrics.Metrics `optional:"true"`
	Locker  domain.SKULocker    `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	repo    domain.Repository
	metrics *obsmetrics.Metrics
	locker  domain.SKULocker
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("product.service"),
		repo:    p.Repo,
		metrics: p.Metrics,
		locker:  p.Locker,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Product, error) {
	if err := domain.ValidateCreate(req); err != nil {
		s.reject(ctx, obsmetrics.OperationCreate, err)
		return nil, err
	}

	sku := *req.SKU
	ctx = obscontext.WithSKU(ctx, sku)

	unlock, err := s.lockSKU(ctx, sku)
	if err != nil {
		s.fail(ctx, obsmetrics.OperationCreate, err)
		return nil, err
	}
	defer unlock()

	// The lookup and the insert are not atomic. ux_products_sku decides
	// concurrent inserts; the loser is reported as a duplicate below.
	existing, err := s.repo.FindBySKU(ctx, s.db, sku)
	if err != nil {
		s.fail(ctx, obsmetrics.OperationCreate, err)
		return nil, err
	}
	if existing != nil {
		s.record(ctx, obsmetrics.OperationCreate, obsmetrics.OutcomeDuplicate)
		return nil, domain.DuplicateSKUError(sku)
	}

	p := &domain.Product{
		Name:  *req.Name,
		Price: decimal.NewFromFloat(*req.Price),
		SKU:   sku,
	}
	if err := s.repo.Create(ctx, s.db, p); err != nil {
		if db.IsDuplicateKeyErr(err) {
			s.record(ctx, obsmetrics.OperationCreate, obsmetrics.OutcomeDuplicate)
			return nil, domain.DuplicateSKUError(sku)
		}
		s.fail(ctx, obsmetrics.OperationCreate, err)
		return nil, err
	}

	s.record(ctx, obsmetrics.OperationCreate, obsmetrics.OutcomeOK)
	logger.WithContext(ctx, s.log).Info("product created", zap.Int64("product_id", p.ID))
	return p, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	return s.repo.FindAll(ctx, s.db)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	productID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.find(ctx, productID)
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateRequest) (*domain.Product, error) {
	productID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	if req.IsEmpty() {
		s.record(ctx, obsmetrics.OperationUpdate, obsmetrics.OutcomeRejected)
		return nil, domain.EmptyUpdateError()
	}
	if err := domain.ValidateUpdate(req); err != nil {
		s.reject(ctx, obsmetrics.OperationUpdate, err)
		return nil, err
	}

	item, err := s.find(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.record(ctx, obsmetrics.OperationUpdate, obsmetrics.OutcomeNotFound)
		}
		return nil, err
	}

	if req.SKU != nil && *req.SKU != item.SKU {
		sku := *req.SKU
		ctx = obscontext.WithSKU(ctx, sku)

		unlock, err := s.lockSKU(ctx, sku)
		if err != nil {
			s.fail(ctx, obsmetrics.OperationUpdate, err)
			return nil, err
		}
		defer unlock()

		taken, err := s.repo.FindBySKU(ctx, s.db, sku)
		if err != nil {
			s.fail(ctx, obsmetrics.OperationUpdate, err)
			return nil, err
		}
		if taken != nil && taken.ID != item.ID {
			s.record(ctx, obsmetrics.OperationUpdate, obsmetrics.OutcomeDuplicate)
			return nil, domain.DuplicateSKUError(sku)
		}
		item.SKU = sku
	}
	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Price != nil {
		item.Price = decimal.NewFromFloat(*req.Price)
	}

	if err := s.repo.Update(ctx, s.db, item); err != nil {
		if db.IsDuplicateKeyErr(err) {
			s.record(ctx, obsmetrics.OperationUpdate, obsmetrics.OutcomeDuplicate)
			return nil, domain.DuplicateSKUError(item.SKU)
		}
		s.fail(ctx, obsmetrics.OperationUpdate, err)
		return nil, err
	}

	s.record(ctx, obsmetrics.OperationUpdate, obsmetrics.OutcomeOK)
	logger.WithContext(ctx, s.log).Info("product updated", zap.Int64("product_id", item.ID))
	return item, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	productID, err := parseID(id)
	if err != nil {
		return err
	}

	affected, err := s.repo.Delete(ctx, s.db, productID)
	if err != nil {
		s.fail(ctx, obsmetrics.OperationDelete, err)
		return err
	}
	if affected == 0 {
		s.record(ctx, obsmetrics.OperationDelete, obsmetrics.OutcomeNotFound)
		return domain.NotFoundError(productID)
	}

	s.record(ctx, obsmetrics.OperationDelete, obsmetrics.OutcomeOK)
	logger.WithContext(ctx, s.log).Info("product deleted", zap.Int64("product_id", productID))
	return nil
}

func (s *Service) find(ctx context.Context, id int64) (*domain.Product, error) {
	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.NotFoundError(id)
	}
	return item, nil
}

func (s *Service) lockSKU(ctx context.Context, sku string) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}
	return s.locker.Lock(ctx, sku)
}

func (s *Service) reject(ctx context.Context, operation string, err error) {
	if vErr, ok := domain.AsValidationError(err); ok {
		s.metrics.RecordValidationError(ctx, vErr.Field, vErr.Code)
	}
	s.record(ctx, operation, obsmetrics.OutcomeRejected)
}

func (s *Service) fail(ctx context.Context, operation string, err error) {
	if errors.Is(err, domain.ErrSKUBusy) {
		s.record(ctx, operation, obsmetrics.OutcomeRejected)
		return
	}
	s.record(ctx, operation, obsmetrics.OutcomeError)
	logger.WithContext(ctx, s.log).Error("product write failed", zap.String("operation", operation), zap.Error(err))
}

func (s *Service) record(ctx context.Context, operation, outcome string) {
	s.metrics.RecordProductWrite(ctx, operation, outcome)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.InvalidIDError()
	}
	return id, nil
}
