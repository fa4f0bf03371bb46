package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/menukart/internal/domain/catalog"
)

const (
	listCategoriesSQL = `SELECT id, name, icon FROM categories ORDER BY position`

	listProductsSQL = `SELECT id, name, description, image, category, price, kind, add_on_control, available
		FROM products ORDER BY position`

	listOptionsSQL = `SELECT product_id, group_kind, name, price
		FROM product_options ORDER BY product_id, group_kind, position`
)

const (
	groupVariant = "variant"
	groupAddOn   = "addon"

	sourceName = "postgres"
)

var _ catalog.Source = (*CatalogRepository)(nil)

// CatalogRepository reads and replaces the catalog stored in PostgreSQL.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository returns a CatalogRepository that uses the given pool.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// Load reads the whole catalog in document order. Query failures are
// reported as *catalog.LoadError; unknown kinds as *catalog.FormatError.
func (r *CatalogRepository) Load(ctx context.Context) (*catalog.Catalog, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly, IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return nil, &catalog.LoadError{Source: sourceName, Err: err}
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, listCategoriesSQL)
	if err != nil {
		return nil, loadError("listing categories", err)
	}
	categories, err := pgx.CollectRows(rows, scanCategory)
	if err != nil {
		return nil, loadError("listing categories", err)
	}

	rows, err = tx.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, loadError("listing products", err)
	}
	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, loadError("listing products", err)
	}

	rows, err = tx.Query(ctx, listOptionsSQL)
	if err != nil {
		return nil, loadError("listing options", err)
	}
	options, err := pgx.CollectRows(rows, scanOption)
	if err != nil {
		return nil, loadError("listing options", err)
	}

	c := &catalog.Catalog{Categories: categories}
	byID := make(map[string]int, len(products))
	for i, p := range products {
		kind, err := catalog.ParseKind(p.kind)
		if err != nil {
			return nil, &catalog.FormatError{Err: fmt.Errorf("product %q: %w", p.ID, err)}
		}
		control, err := catalog.ParseControl(p.control)
		if err != nil {
			return nil, &catalog.FormatError{Err: fmt.Errorf("product %q: %w", p.ID, err)}
		}
		p.Kind = kind
		p.Control = control
		byID[p.ID] = i
		c.Products = append(c.Products, p.Product)
	}
	for _, o := range options {
		i, ok := byID[o.productID]
		if !ok {
			continue
		}
		p := &c.Products[i]
		switch o.group {
		case groupVariant:
			p.Variants = append(p.Variants, o.Option)
		case groupAddOn:
			p.AddOns = append(p.AddOns, o.Option)
		}
	}
	return c, nil
}

// Replace overwrites the stored catalog with c in a single transaction.
func (r *CatalogRepository) Replace(ctx context.Context, c *catalog.Catalog) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `TRUNCATE product_options, products, categories`); err != nil {
		return fmt.Errorf("clearing catalog: %w", err)
	}

	categoryRows := make([][]any, len(c.Categories))
	for i, cat := range c.Categories {
		categoryRows[i] = []any{cat.ID, i, cat.Name, cat.Icon}
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"categories"},
		[]string{"id", "position", "name", "icon"},
		pgx.CopyFromRows(categoryRows),
	); err != nil {
		return fmt.Errorf("copying categories: %w", err)
	}

	var (
		productRows = make([][]any, len(c.Products))
		optionRows  [][]any
	)
	for i, p := range c.Products {
		productRows[i] = []any{
			p.ID, i, p.Name, p.Description, p.Image, p.Category,
			p.BasePrice, p.Kind.String(), p.Control.String(), p.Available,
		}
		for j, v := range p.Variants {
			optionRows = append(optionRows, []any{p.ID, groupVariant, j, v.Name, v.Price})
		}
		for j, a := range p.AddOns {
			optionRows = append(optionRows, []any{p.ID, groupAddOn, j, a.Name, a.Price})
		}
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"products"},
		[]string{"id", "position", "name", "description", "image", "category", "price", "kind", "add_on_control", "available"},
		pgx.CopyFromRows(productRows),
	); err != nil {
		return fmt.Errorf("copying products: %w", err)
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"product_options"},
		[]string{"product_id", "group_kind", "position", "name", "price"},
		pgx.CopyFromRows(optionRows),
	); err != nil {
		return fmt.Errorf("copying options: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing catalog: %w", err)
	}
	return nil
}

type productRow struct {
	catalog.Product
	kind    string
	control string
}

type optionRow struct {
	catalog.Option
	productID string
	group     string
}

func scanCategory(row pgx.CollectableRow) (catalog.Category, error) {
	var c catalog.Category
	err := row.Scan(&c.ID, &c.Name, &c.Icon)
	return c, err
}

func scanProduct(row pgx.CollectableRow) (productRow, error) {
	var (
		p     productRow
		price decimal.Decimal
	)
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Image, &p.Category,
		&price, &p.kind, &p.control, &p.Available,
	)
	p.BasePrice = price
	return p, err
}

func scanOption(row pgx.CollectableRow) (optionRow, error) {
	var o optionRow
	err := row.Scan(&o.productID, &o.group, &o.Name, &o.Price)
	return o, err
}

func loadError(op string, err error) error {
	return &catalog.LoadError{Source: sourceName, Err: fmt.Errorf("%s: %w", op, err)}
}
