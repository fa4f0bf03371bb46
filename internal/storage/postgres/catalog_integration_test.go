//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/xenking/menukart/internal/domain/catalog"
)

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "menu",
				"POSTGRES_PASSWORD": "menu",
				"POSTGRES_DB":       "menu",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctr.Terminate(context.Background()) })

	host, err := ctr.Host(ctx)
	require.NoError(t, err)
	port, err := ctr.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://menu:menu@%s:%s/menu?sslmode=disable", host, port.Port())
}

func TestCatalogRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()

	pool, err := NewPool(ctx, startPostgres(t))
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, RunMigrations(ctx, pool))
	require.NoError(t, RunMigrations(ctx, pool), "migrations are idempotent")

	repo := NewCatalogRepository(pool)

	empty, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty.Products)

	want := &catalog.Catalog{
		Categories: []catalog.Category{
			{ID: "pizzas", Name: "Pizzas", Icon: "🍕"},
			{ID: "empanadas", Name: "Empanadas"},
		},
		Products: []catalog.Product{
			{
				ID: "2", Name: "Pizza Especial", Category: "pizzas", Kind: catalog.KindVariant, Available: true,
				BasePrice: decimal.Zero,
				Variants: []catalog.Option{
					{Name: "Chica", Price: decimal.NewFromInt(7000)},
					{Name: "Grande", Price: decimal.NewFromInt(11000)},
				},
			},
			{
				ID: "emp-u", Name: "Empanadas (Unidad)", Category: "empanadas", Kind: catalog.KindAddOns,
				Control: catalog.ControlCounter, BasePrice: decimal.NewFromInt(2000), Available: true,
				AddOns: []catalog.Option{{Name: "Carne", Price: decimal.Zero}, {Name: "Pollo", Price: decimal.Zero}},
			},
			{ID: "1", Name: "Muzzarella", Description: "Clásica", Category: "pizzas", BasePrice: decimal.NewFromInt(8500)},
		},
	}
	require.NoError(t, repo.Replace(ctx, want))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, catalog.Validate(got))

	assert.Equal(t, want.Categories, got.Categories)
	require.Len(t, got.Products, 3)
	for i, p := range got.Products {
		w := want.Products[i]
		assert.Equal(t, w.ID, p.ID)
		assert.Equal(t, w.Kind, p.Kind)
		assert.Equal(t, w.Control, p.Control)
		assert.Equal(t, w.Available, p.Available)
		assert.True(t, w.BasePrice.Equal(p.BasePrice), "product %s price", p.ID)
		require.Len(t, p.Variants, len(w.Variants))
		for j := range w.Variants {
			assert.Equal(t, w.Variants[j].Name, p.Variants[j].Name)
			assert.True(t, w.Variants[j].Price.Equal(p.Variants[j].Price))
		}
		require.Len(t, p.AddOns, len(w.AddOns))
	}

	// replacing drops products no longer present
	want.Products = want.Products[:1]
	require.NoError(t, repo.Replace(ctx, want))
	got, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got.Products, 1)
}
