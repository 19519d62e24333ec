package service

import (
	"context"
	"errors"
	"testing"

	"github.com/kasirpos/kasir/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogCreateThenGet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.product(t, "user_1", "  Tea  ", 10000)
	got, err := f.svc.Catalog.Get(ctx, "user_1", p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tea", got.Name)
	assert.Equal(t, int64(10000), got.Price)

	require.Len(t, f.bus.events, 1)
	assert.Equal(t, "create", f.bus.events[0].Action)
	assert.Equal(t, "product", f.bus.events[0].Target)
}

func TestCatalogNormalizesNames(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "user_1", "Cafe\u0301 Latte", 18000)
	assert.Equal(t, "Caf\u00e9 Latte", p.Name)
}

func TestCatalogValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []ProductInput{
		{Name: strPtr("Tea")},
		{Price: floatPtr(1)},
		{Name: strPtr("   "), Price: floatPtr(1)},
		{Name: strPtr("Tea"), Price: floatPtr(-1)},
		{Name: strPtr("Tea"), Price: floatPtr(10.5)},
		{Name: strPtr("Tea"), Price: floatPtr(1e18)},
	}
	for _, in := range cases {
		_, err := f.svc.Catalog.Create(ctx, "user_1", in)
		assertCode(t, err, apperr.CodeInvalidRequest)
	}

	free := f.product(t, "user_1", "Air Putih", 0)
	assert.Zero(t, free.Price)
}

func TestCatalogScopedByOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "user_1", "Tea", 10000)

	_, err := f.svc.Catalog.Get(ctx, "user_2", p.ID)
	assertCode(t, err, apperr.CodeProductNotFound)
	_, err = f.svc.Catalog.Update(ctx, "user_2", p.ID, map[string]interface{}{"price": 1.0})
	assertCode(t, err, apperr.CodeProductNotFound)
	assertCode(t, f.svc.Catalog.Delete(ctx, "user_2", p.ID), apperr.CodeProductNotFound)

	list, err := f.svc.Catalog.List(ctx, "user_2")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCatalogUpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "user_1", "Tea", 10000)

	updated, err := f.svc.Catalog.Update(ctx, "user_1", p.ID, map[string]interface{}{"price": 12000.0})
	require.NoError(t, err)
	assert.Equal(t, "Tea", updated.Name)
	assert.Equal(t, int64(12000), updated.Price)

	_, err = f.svc.Catalog.Update(ctx, "user_1", p.ID, map[string]interface{}{"price": "cheap"})
	assertCode(t, err, apperr.CodeInvalidRequest)
	_, err = f.svc.Catalog.Update(ctx, "user_1", p.ID, map[string]interface{}{"name": ""})
	assertCode(t, err, apperr.CodeInvalidRequest)

	require.NoError(t, f.svc.Catalog.Delete(ctx, "user_1", p.ID))
	assertCode(t, f.svc.Catalog.Delete(ctx, "user_1", p.ID), apperr.CodeProductNotFound)
}

func TestCatalogEmbeddings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.svc.Catalog.embedder = fakeEmbedder{enabled: true}
	p := f.product(t, "user_1", "Es Jeruk", 10000)
	assert.Equal(t, []float64{0.5, 0.25}, p.Embedding)

	f.svc.Catalog.embedder = fakeEmbedder{enabled: true, err: errors.New("service down")}
	p = f.product(t, "user_1", "Es Campur", 12500)
	assert.Nil(t, p.Embedding)

	got, err := f.svc.Catalog.Get(ctx, "user_1", p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Es Campur", got.Name)
}
