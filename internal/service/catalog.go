package service

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/kasirpos/kasir/internal/apperr"
	"github.com/kasirpos/kasir/internal/domain"
	"github.com/kasirpos/kasir/internal/idgen"
	"github.com/kasirpos/kasir/internal/repository"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

// ProductInput carries optional name and price. Create requires both.
type ProductInput struct {
	Name  *string  `mapstructure:"name"`
	Price *float64 `mapstructure:"price"`
}

type CatalogService struct {
	products repository.ProductRepository
	ids      idgen.Generator
	embedder Embedder
	audit    auditor
	now      func() time.Time
}

func productNotFound() error {
	return apperr.NotFound(apperr.CodeProductNotFound, "Product not found")
}

func normalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// MaxPrice is the largest unit price accepted, in minor currency units
const MaxPrice = 1_000_000_000_000

func checkPrice(price float64) (int64, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 || price != math.Trunc(price) {
		return 0, apperr.Validation(apperr.CodeInvalidRequest, "Price must be a non-negative whole number")
	}
	if price > MaxPrice {
		return 0, apperr.Validation(apperr.CodeInvalidRequest, "Price is too large")
	}
	return int64(price), nil
}

// DecodeProductInput converts a JSON object into ProductInput. Values of the
// wrong type are a validation error, unknown keys are ignored.
func DecodeProductInput(fields map[string]interface{}) (ProductInput, error) {
	var in ProductInput
	if err := mapstructure.Decode(fields, &in); err != nil {
		return in, apperr.Validation(apperr.CodeInvalidRequest, "Invalid product fields")
	}
	return in, nil
}

func (s *CatalogService) embed(ctx context.Context, p *domain.Product) {
	if s.embedder == nil || !s.embedder.EmbeddingsEnabled() {
		return
	}
	vec, err := s.embedder.Embed(ctx, p.Name)
	if err != nil {
		zap.L().Warn("product embedding failed",
			zap.String("namespace", "catalog"),
			zap.Int64("product", p.ID),
			zap.Error(err))
		return
	}
	p.Embedding = vec
}

func (s *CatalogService) Create(ctx context.Context, owner string, in ProductInput) (*domain.Product, error) {
	if in.Name == nil || in.Price == nil || normalizeName(*in.Name) == "" {
		return nil, apperr.Validation(apperr.CodeInvalidRequest, "Product name and price are required")
	}
	price, err := checkPrice(*in.Price)
	if err != nil {
		return nil, err
	}

	now := s.now()
	p := &domain.Product{
		ID:        s.ids.NextID(),
		UserID:    owner,
		Name:      normalizeName(*in.Name),
		Price:     price,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.embed(ctx, p)
	if err := s.products.Create(ctx, p); err != nil {
		return nil, storeError(err, "Failed to create product")
	}
	s.audit.record(owner, "create", "product", strconv.FormatInt(p.ID, 10), p.Name)
	return p, nil
}

func (s *CatalogService) List(ctx context.Context, owner string) ([]*domain.Product, error) {
	products, err := s.products.List(ctx, owner)
	if err != nil {
		return nil, storeError(err, "Failed to fetch products")
	}
	if products == nil {
		products = []*domain.Product{}
	}
	return products, nil
}

func (s *CatalogService) Get(ctx context.Context, owner string, id int64) (*domain.Product, error) {
	p, err := s.products.GetByID(ctx, owner, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, productNotFound()
	}
	if err != nil {
		return nil, storeError(err, "Failed to fetch product")
	}
	return p, nil
}

// Update applies the name and price keys of fields to the product.
func (s *CatalogService) Update(ctx context.Context, owner string, id int64, fields map[string]interface{}) (*domain.Product, error) {
	in, err := DecodeProductInput(fields)
	if err != nil {
		return nil, err
	}
	p, err := s.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	renamed := false
	if in.Name != nil {
		name := normalizeName(*in.Name)
		if name == "" {
			return nil, apperr.Validation(apperr.CodeInvalidRequest, "Product name cannot be empty")
		}
		renamed = name != p.Name
		p.Name = name
	}
	if in.Price != nil {
		price, err := checkPrice(*in.Price)
		if err != nil {
			return nil, err
		}
		p.Price = price
	}
	p.UpdatedAt = s.now()
	if renamed {
		s.embed(ctx, p)
	}

	err = s.products.Update(ctx, p)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, productNotFound()
	}
	if err != nil {
		return nil, storeError(err, "Failed to update product")
	}
	s.audit.record(owner, "update", "product", strconv.FormatInt(p.ID, 10), p.Name)
	return p, nil
}

func (s *CatalogService) Delete(ctx context.Context, owner string, id int64) error {
	err := s.products.Delete(ctx, owner, id)
	if errors.Is(err, repository.ErrNotFound) {
		return productNotFound()
	}
	if err != nil {
		return storeError(err, "Failed to delete product")
	}
	s.audit.record(owner, "delete", "product", strconv.FormatInt(id, 10), "")
	return nil
}
