package service

import (
	"context"
	"fmt"

	"warehouse-service/internal/broker"
	"warehouse-service/internal/models"
	"warehouse-service/internal/util"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductRepository is the product persistence ProductService needs
type ProductRepository interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	UpsertProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id string) error
}

// ProductService handles products
type ProductService struct {
	repo           ProductRepository
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

// NewProductService creates a new product service
func NewProductService(repo ProductRepository, eventPublisher *broker.EventPublisher) *ProductService {
	return &ProductService{
		repo:           repo,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// UpsertProductRequest is the full product record. Posting an existing id
// overwrites every field.
type UpsertProductRequest struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Category  string           `json:"category"`
	Zone      string           `json:"zone"`
	Shelf     string           `json:"shelf"`
	UnitValue *decimal.Decimal `json:"unit_value"`
	Quantity  int              `json:"quantity"`
	MinStock  int              `json:"minStock"`
	MaxStock  int              `json:"maxStock"`
}

func (r UpsertProductRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ID, validation.Required, validation.Length(1, 50)),
		validation.Field(&r.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.Category, validation.Length(0, 100)),
		validation.Field(&r.Zone, validation.Required, validation.Length(1, 50)),
		validation.Field(&r.Shelf, validation.Length(0, 50)),
		validation.Field(&r.UnitValue, nonNegative),
		validation.Field(&r.Quantity, validation.Min(0)),
		validation.Field(&r.MinStock, validation.Min(0)),
		validation.Field(&r.MaxStock, validation.Min(0)),
	)
}

// ListProducts returns every product
func (s *ProductService) ListProducts(ctx context.Context) ([]models.Product, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.ListProducts")
	defer span.End()

	return s.repo.ListProducts(ctx)
}

// UpsertProduct inserts or overwrites a product. An unknown zone fails with
// ErrInvalidReference.
func (s *ProductService) UpsertProduct(ctx context.Context, req *UpsertProductRequest) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.UpsertProduct")
	defer span.End()

	if err := validate(req); err != nil {
		return nil, err
	}

	product := &models.Product{
		ID:        req.ID,
		Name:      req.Name,
		Category:  req.Category,
		Zone:      req.Zone,
		Shelf:     req.Shelf,
		UnitValue: orZero(req.UnitValue),
		Quantity:  req.Quantity,
		MinStock:  req.MinStock,
		MaxStock:  req.MaxStock,
	}

	if err := s.repo.UpsertProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to save product: %w", err)
	}

	util.ProductUpsertsTotal.Inc()
	s.logger.Info("Product saved",
		zap.String("product_id", product.ID),
		zap.String("zone", product.Zone),
		zap.Int("quantity", product.Quantity))

	event := &models.ProductUpsertedEvent{
		ProductID: product.ID,
		Name:      product.Name,
		Zone:      product.Zone,
		Quantity:  product.Quantity,
		MinStock:  product.MinStock,
	}
	if err := s.eventPublisher.PublishProductUpserted(ctx, event); err != nil {
		s.logger.Error("Failed to publish ProductUpserted event", zap.Error(err))
	}

	return product, nil
}

// DeleteProduct removes a product
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	ctx, span := util.StartSpan(ctx, "ProductService.DeleteProduct")
	defer span.End()

	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Product deleted", zap.String("product_id", id))
	return nil
}
