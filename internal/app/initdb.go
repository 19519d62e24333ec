package app

import (
	"context"
	"time"

	"github.com/kasirpos/kasir/internal/domain"
	"github.com/kasirpos/kasir/internal/identity"
	"github.com/kasirpos/kasir/internal/repository"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	demoUserID   = "user_1"
	demoEmail    = "alice@gmail.com"
	demoPassword = "alice123"
)

var demoProducts = []domain.Product{
	{ID: 1, Name: "Nasi Goreng Spesial", Price: 25000},
	{ID: 2, Name: "Es Teh Manis", Price: 10000},
	{ID: 3, Name: "Ayam Bakar", Price: 45000},
	{ID: 4, Name: "Mie Ayam Spesial", Price: 20000},
	{ID: 5, Name: "Es Jeruk", Price: 10000},
	{ID: 6, Name: "Sate Ayam", Price: 15000},
	{ID: 7, Name: "Es Campur", Price: 12500},
}

type demoLine struct {
	product  int64
	quantity int
}

var demoSales = []struct {
	id    int64
	at    time.Time
	lines []demoLine
}{
	{1, time.Date(2024, 11, 22, 14, 30, 0, 0, time.UTC), []demoLine{{1, 2}, {2, 3}, {3, 1}}},
	{2, time.Date(2024, 11, 22, 15, 0, 0, 0, time.UTC), []demoLine{{4, 2}, {5, 3}}},
	{3, time.Date(2024, 11, 22, 16, 0, 0, 0, time.UTC), []demoLine{{6, 5}, {7, 2}}},
}

// Seed loads the demo account. Records that already exist are left alone,
// so running it twice is harmless.
func (a *Application) Seed() error {
	ctx := context.Background()
	a.checkDemoUser(ctx)
	if err := a.checkDemoCredential(ctx); err != nil {
		return err
	}
	if err := a.checkDemoProducts(ctx); err != nil {
		return err
	}
	return a.checkDemoTransactions(ctx)
}

func (a *Application) checkDemoUser(ctx context.Context) {
	_, err := a.store.Users().GetByID(ctx, demoUserID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		now := time.Now()
		if err := a.store.Users().Create(ctx, &domain.User{
			ID:        demoUserID,
			Name:      "Alice",
			Email:     demoEmail,
			Address:   "123 Wonderland",
			CreatedAt: now,
			UpdatedAt: now,
		}); err != nil {
			zap.L().Error("failed to create demo user", zap.Error(err))
			return
		}
		zap.L().Info("initialized demo user", zap.String("email", demoEmail))
	case err != nil:
		zap.L().Error("failed to query demo user", zap.Error(err))
	}
}

func (a *Application) checkDemoCredential(ctx context.Context) error {
	if a.local == nil {
		zap.L().Warn("remote identity provider configured, demo credential not provisioned")
		return nil
	}
	err := a.local.Provision(ctx, demoUserID, demoEmail, demoPassword)
	if errors.Is(err, identity.ErrEmailExists) {
		return nil
	}
	return err
}

func (a *Application) checkDemoProducts(ctx context.Context) error {
	for i := range demoProducts {
		p := demoProducts[i]
		_, err := a.store.Products().GetByID(ctx, demoUserID, p.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		now := time.Now()
		p.UserID = demoUserID
		p.CreatedAt = now
		p.UpdatedAt = now
		if err := a.store.Products().Create(ctx, &p); err != nil {
			return errors.Wrapf(err, "seed product %d", p.ID)
		}
	}
	return nil
}

func (a *Application) checkDemoTransactions(ctx context.Context) error {
	names := make(map[int64]domain.Product, len(demoProducts))
	for _, p := range demoProducts {
		names[p.ID] = p
	}
	for _, sale := range demoSales {
		_, err := a.store.Transactions().GetByID(ctx, demoUserID, sale.id)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		tx := &domain.Transaction{
			ID:        sale.id,
			UserID:    demoUserID,
			Timestamp: sale.at,
			UpdatedAt: sale.at,
		}
		for _, l := range sale.lines {
			p := names[l.product]
			tx.Items = append(tx.Items, domain.TransactionItem{
				ProductID:    p.ID,
				ProductName:  p.Name,
				Quantity:     l.quantity,
				PricePerUnit: p.Price,
			})
		}
		tx.Recalculate()
		if err := a.store.Transactions().Create(ctx, tx); err != nil {
			return errors.Wrapf(err, "seed transaction %d", sale.id)
		}
	}
	zap.L().Info("demo data ready", zap.String("user_id", demoUserID))
	return nil
}
