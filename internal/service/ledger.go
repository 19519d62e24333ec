package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/kasirpos/kasir/internal/apperr"
	"github.com/kasirpos/kasir/internal/domain"
	"github.com/kasirpos/kasir/internal/idgen"
	"github.com/kasirpos/kasir/internal/repository"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// ItemInput is one requested line. ProductID is the id as the client sent it.
type ItemInput struct {
	ProductID string
	Quantity  float64
}

type LedgerService struct {
	products     repository.ProductRepository
	transactions repository.TransactionRepository
	ids          idgen.Generator
	audit        auditor
	now          func() time.Time
	fanout       int
}

func transactionNotFound() error {
	return apperr.NotFound(apperr.CodeTxNotFound, "Transaction not found")
}

func checkItems(items []ItemInput) error {
	if len(items) == 0 {
		return apperr.Validation(apperr.CodeInvalidRequest, "Items are required")
	}
	for _, it := range items {
		if strings.TrimSpace(it.ProductID) == "" {
			return apperr.Validation(apperr.CodeInvalidRequest, "Each item requires a product_id")
		}
		if it.Quantity <= 0 || it.Quantity != math.Trunc(it.Quantity) || it.Quantity > math.MaxInt32 {
			return apperr.Validation(apperr.CodeInvalidRequest, "Quantity must be a positive integer")
		}
	}
	return nil
}

// price resolves every product under owner and builds the priced lines.
// Lookups run concurrently; the first missing product in request order wins.
func (s *LedgerService) price(ctx context.Context, owner string, items []ItemInput) ([]domain.TransactionItem, error) {
	if err := checkItems(items); err != nil {
		return nil, err
	}

	resolved := make([]*domain.Product, len(items))
	g, gctx := errgroup.WithContext(ctx)
	if s.fanout > 0 {
		g.SetLimit(s.fanout)
	}
	for i, it := range items {
		i, it := i, it
		g.Go(func() error {
			id, ok := idgen.Parse(strings.TrimSpace(it.ProductID))
			if !ok {
				return nil
			}
			p, err := s.products.GetByID(gctx, owner, id)
			if errors.Is(err, repository.ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			resolved[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, storeError(err, "Failed to resolve products")
	}

	lines := make([]domain.TransactionItem, 0, len(items))
	var total int64
	for i, p := range resolved {
		if p == nil {
			return nil, apperr.NotFound(apperr.CodeProductNotFound,
				fmt.Sprintf("Product with ID %s not found", items[i].ProductID))
		}
		line, ok := mulInt64(int64(items[i].Quantity), p.Price)
		if ok {
			total, ok = addInt64(total, line)
		}
		if !ok {
			return nil, apperr.Validation(apperr.CodeInvalidRequest, "Transaction total is too large")
		}
		lines = append(lines, domain.TransactionItem{
			ProductID:    p.ID,
			ProductName:  p.Name,
			Quantity:     int(items[i].Quantity),
			PricePerUnit: p.Price,
		})
	}
	return lines, nil
}

func mulInt64(a, b int64) (int64, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	if a != 0 && b > math.MaxInt64/a {
		return 0, false
	}
	return a * b, true
}

func addInt64(a, b int64) (int64, bool) {
	if b > math.MaxInt64-a {
		return 0, false
	}
	return a + b, true
}

func (s *LedgerService) Create(ctx context.Context, owner string, items []ItemInput) (*domain.Transaction, error) {
	lines, err := s.price(ctx, owner, items)
	if err != nil {
		return nil, err
	}
	now := s.now()
	t := &domain.Transaction{
		ID:        s.ids.NextID(),
		UserID:    owner,
		Timestamp: now,
		Items:     lines,
		UpdatedAt: now,
	}
	t.Recalculate()
	if err := s.transactions.Create(ctx, t); err != nil {
		return nil, storeError(err, "Failed to create transaction")
	}
	s.audit.record(owner, "create", "transaction", strconv.FormatInt(t.ID, 10), strconv.FormatInt(t.TotalPrice, 10))
	return t, nil
}

func (s *LedgerService) List(ctx context.Context, owner string, filter repository.TransactionFilter) ([]*domain.Transaction, error) {
	txs, err := s.transactions.List(ctx, owner, filter)
	if err != nil {
		return nil, storeError(err, "Failed to fetch transactions")
	}
	if txs == nil {
		txs = []*domain.Transaction{}
	}
	return txs, nil
}

func (s *LedgerService) Get(ctx context.Context, owner string, id int64) (*domain.Transaction, error) {
	t, err := s.transactions.GetByID(ctx, owner, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, transactionNotFound()
	}
	if err != nil {
		return nil, storeError(err, "Failed to fetch transaction")
	}
	return t, nil
}

// Update replaces the items of a transaction, re-pricing every line from the
// current catalog. The original timestamp is kept.
func (s *LedgerService) Update(ctx context.Context, owner string, id int64, items []ItemInput) (*domain.Transaction, error) {
	t, err := s.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	lines, err := s.price(ctx, owner, items)
	if err != nil {
		return nil, err
	}
	t.Items = lines
	t.UpdatedAt = s.now()
	t.Recalculate()

	err = s.transactions.Update(ctx, t)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, transactionNotFound()
	}
	if err != nil {
		return nil, storeError(err, "Failed to update transaction")
	}
	s.audit.record(owner, "update", "transaction", strconv.FormatInt(t.ID, 10), strconv.FormatInt(t.TotalPrice, 10))
	return t, nil
}

func (s *LedgerService) Delete(ctx context.Context, owner string, id int64) error {
	err := s.transactions.Delete(ctx, owner, id)
	if errors.Is(err, repository.ErrNotFound) {
		return transactionNotFound()
	}
	if err != nil {
		return storeError(err, "Failed to delete transaction")
	}
	s.audit.record(owner, "delete", "transaction", strconv.FormatInt(id, 10), "")
	return nil
}
