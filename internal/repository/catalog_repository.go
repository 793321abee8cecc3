package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"bowtique/internal/domain"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// Querier is the subset of database/sql shared by *sql.DB and *sql.Tx, so a
// repository can run either standalone or inside a caller's transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// CatalogRepository unifies the five category tables behind one product view.
// FindBySKU, List and Search are read-only; DecrementStock is the only
// mutator and is a single conditional update so stock can never go negative.
type CatalogRepository interface {
	FindBySKU(ctx context.Context, sku string) (*domain.Product, error)
	List(ctx context.Context, onlyAvailable bool) ([]*domain.Product, error)
	Search(ctx context.Context, query string) ([]*domain.Product, error)
	DecrementStock(ctx context.Context, sku string, quantity int) error

	// WithTx returns a copy of the repository bound to the given transaction.
	WithTx(tx *sql.Tx) CatalogRepository
}

type catalogRepository struct {
	db Querier
}

// NewCatalogRepository creates a new instance of CatalogRepository.
func NewCatalogRepository(db *sql.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) WithTx(tx *sql.Tx) CatalogRepository {
	return &catalogRepository{db: tx}
}

// categoryTables maps each category to its physical table, in the fixed scan
// order of domain.Categories.
var categoryTables = map[domain.Category]string{
	domain.CategoryRibbon:   "ribbon_products",
	domain.CategoryMum:      "mum_products",
	domain.CategoryBraid:    "braid_products",
	domain.CategoryWreath:   "wreath_products",
	domain.CategorySeasonal: "seasonal_products",
}

const sharedColumns = "sku, name, description, price, image_url, quantity, is_available, created_at, updated_at"

// FindBySKU probes each category table in fixed order until one holds the
// SKU. SKUs are unique across the whole catalog, so the first hit wins.
func (r *catalogRepository) FindBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	for _, category := range domain.Categories() {
		product, err := r.findInCategory(ctx, category, sku)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to find product by SKU: %w", err)
		}
		return product, nil
	}
	return nil, ErrProductNotFound
}

func (r *catalogRepository) findInCategory(ctx context.Context, category domain.Category, sku string) (*domain.Product, error) {
	table := categoryTables[category]

	product := &domain.Product{Category: category}
	var attrs domain.Attributes
	var err error

	switch category {
	case domain.CategoryRibbon:
		a := domain.RibbonAttributes{}
		var colors string
		err = r.db.QueryRowContext(ctx, `
			SELECT `+sharedColumns+`, ribbon_length, ribbon_width, ribbon_colors, ribbon_pattern
			FROM `+table+` WHERE sku = $1
		`, sku).Scan(
			&product.SKU, &product.Name, &product.Description, &product.Price,
			&product.ImageURL, &product.Quantity, &product.IsAvailable,
			&product.CreatedAt, &product.UpdatedAt,
			&a.Length, &a.Width, &colors, &a.Pattern,
		)
		a.Colors = splitList(colors)
		attrs = a
	case domain.CategoryMum:
		a := domain.MumAttributes{}
		var base, accent string
		err = r.db.QueryRowContext(ctx, `
			SELECT `+sharedColumns+`, size, base_colors, accent_colors, has_lights
			FROM `+table+` WHERE sku = $1
		`, sku).Scan(
			&product.SKU, &product.Name, &product.Description, &product.Price,
			&product.ImageURL, &product.Quantity, &product.IsAvailable,
			&product.CreatedAt, &product.UpdatedAt,
			&a.Size, &base, &accent, &a.HasLights,
		)
		a.BaseColors = splitList(base)
		a.AccentColors = splitList(accent)
		attrs = a
	case domain.CategoryBraid:
		a := domain.BraidAttributes{}
		var colors string
		err = r.db.QueryRowContext(ctx, `
			SELECT `+sharedColumns+`, braid_length, braid_colors, braid_pattern
			FROM `+table+` WHERE sku = $1
		`, sku).Scan(
			&product.SKU, &product.Name, &product.Description, &product.Price,
			&product.ImageURL, &product.Quantity, &product.IsAvailable,
			&product.CreatedAt, &product.UpdatedAt,
			&a.Length, &colors, &a.Pattern,
		)
		a.Colors = splitList(colors)
		attrs = a
	case domain.CategoryWreath:
		a := domain.WreathAttributes{}
		var decorations string
		err = r.db.QueryRowContext(ctx, `
			SELECT `+sharedColumns+`, diameter, base_type, season, decorations
			FROM `+table+` WHERE sku = $1
		`, sku).Scan(
			&product.SKU, &product.Name, &product.Description, &product.Price,
			&product.ImageURL, &product.Quantity, &product.IsAvailable,
			&product.CreatedAt, &product.UpdatedAt,
			&a.Diameter, &a.BaseType, &a.Season, &decorations,
		)
		a.Decorations = splitList(decorations)
		attrs = a
	case domain.CategorySeasonal:
		a := domain.SeasonalAttributes{}
		err = r.db.QueryRowContext(ctx, `
			SELECT `+sharedColumns+`, season, type, theme
			FROM `+table+` WHERE sku = $1
		`, sku).Scan(
			&product.SKU, &product.Name, &product.Description, &product.Price,
			&product.ImageURL, &product.Quantity, &product.IsAvailable,
			&product.CreatedAt, &product.UpdatedAt,
			&a.Season, &a.Type, &a.Theme,
		)
		attrs = a
	}

	if err != nil {
		return nil, err
	}

	product.Attributes = attrs
	return product, nil
}

// unionQuery aggregates the shared columns of every category table into one
// result set. Ordering is by name with SKU as tie-break so a fixed catalog
// state always lists in the same order.
func unionQuery(where string) string {
	arms := make([]string, 0, len(categoryTables))
	for _, category := range domain.Categories() {
		arms = append(arms, fmt.Sprintf(
			"SELECT %s, '%s' AS category FROM %s",
			sharedColumns, category, categoryTables[category],
		))
	}

	query := "SELECT * FROM (" + strings.Join(arms, " UNION ALL ") + ") AS products"
	if where != "" {
		query += " WHERE " + where
	}
	return query + " ORDER BY name ASC, sku ASC"
}

// List aggregates products across all categories, optionally restricted to
// available ones. Results carry the shared view only; category payloads are
// served by FindBySKU.
func (r *catalogRepository) List(ctx context.Context, onlyAvailable bool) ([]*domain.Product, error) {
	where := ""
	if onlyAvailable {
		where = "is_available = TRUE"
	}

	rows, err := r.db.QueryContext(ctx, unionQuery(where))
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	return scanSharedRows(rows)
}

// Search performs a case-insensitive substring match over name and
// description across all categories.
func (r *catalogRepository) Search(ctx context.Context, query string) ([]*domain.Product, error) {
	if strings.TrimSpace(query) == "" {
		return r.List(ctx, false)
	}

	pattern := "%" + query + "%"
	rows, err := r.db.QueryContext(ctx, unionQuery("name ILIKE $1 OR description ILIKE $1"), pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	defer rows.Close()

	return scanSharedRows(rows)
}

// DecrementStock reduces a product's quantity by a single conditional update.
// The WHERE clause both finds the row and checks sufficiency, so two
// concurrent orders can never drive the counter negative. A zero row count
// means either the SKU is absent or stock ran out; the follow-up read tells
// the two apart.
func (r *catalogRepository) DecrementStock(ctx context.Context, sku string, quantity int) error {
	for _, category := range domain.Categories() {
		table := categoryTables[category]

		result, err := r.db.ExecContext(ctx, `
			UPDATE `+table+`
			SET quantity = quantity - $2, updated_at = NOW()
			WHERE sku = $1 AND quantity >= $2
		`, sku, quantity)
		if err != nil {
			return fmt.Errorf("failed to decrement stock: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected > 0 {
			return nil
		}

		var available int
		err = r.db.QueryRowContext(ctx,
			"SELECT quantity FROM "+table+" WHERE sku = $1", sku,
		).Scan(&available)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to check stock: %w", err)
		}

		return &domain.InsufficientStockError{
			SKU:       sku,
			Requested: quantity,
			Available: available,
		}
	}
	return ErrProductNotFound
}

func scanSharedRows(rows *sql.Rows) ([]*domain.Product, error) {
	products := []*domain.Product{}
	for rows.Next() {
		product := &domain.Product{}
		err := rows.Scan(
			&product.SKU,
			&product.Name,
			&product.Description,
			&product.Price,
			&product.ImageURL,
			&product.Quantity,
			&product.IsAvailable,
			&product.CreatedAt,
			&product.UpdatedAt,
			&product.Category,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// List-valued attributes are stored as comma-separated text.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
