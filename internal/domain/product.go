package domain

import (
	"time"
)

// Category identifies which product line an item belongs to. Each category
// is stored in its own table but exposed through the shared Product view.
type Category string

const (
	CategoryRibbon   Category = "ribbon"
	CategoryMum      Category = "mum"
	CategoryBraid    Category = "braid"
	CategoryWreath   Category = "wreath"
	CategorySeasonal Category = "seasonal"
)

// Categories lists every product category in lookup order. The order is
// fixed so that cross-category scans behave the same on every request.
func Categories() []Category {
	return []Category{
		CategoryRibbon,
		CategoryMum,
		CategoryBraid,
		CategoryWreath,
		CategorySeasonal,
	}
}

// Valid reports whether the category is one of the known product lines.
func (c Category) Valid() bool {
	switch c {
	case CategoryRibbon, CategoryMum, CategoryBraid, CategoryWreath, CategorySeasonal:
		return true
	}
	return false
}

// Attributes holds the category-specific payload of a product. Ordering
// logic never inspects it; only catalog consumers do.
type Attributes interface {
	ProductCategory() Category
}

// RibbonAttributes describes a ribbon product.
type RibbonAttributes struct {
	Length  string   `json:"ribbonLength"`
	Width   string   `json:"ribbonWidth"`
	Colors  []string `json:"ribbonColors"`
	Pattern string   `json:"ribbonPattern"`
}

func (RibbonAttributes) ProductCategory() Category { return CategoryRibbon }

// MumAttributes describes a homecoming mum.
type MumAttributes struct {
	Size         string   `json:"size"`
	BaseColors   []string `json:"baseColors"`
	AccentColors []string `json:"accentColors"`
	HasLights    bool     `json:"hasLights"`
}

func (MumAttributes) ProductCategory() Category { return CategoryMum }

// BraidAttributes describes a braid product.
type BraidAttributes struct {
	Length  string   `json:"braidLength"`
	Colors  []string `json:"braidColors"`
	Pattern string   `json:"braidPattern"`
}

func (BraidAttributes) ProductCategory() Category { return CategoryBraid }

// WreathAttributes describes a wreath product.
type WreathAttributes struct {
	Diameter    string   `json:"diameter"`
	BaseType    string   `json:"baseType"`
	Season      string   `json:"season"`
	Decorations []string `json:"decorations"`
}

func (WreathAttributes) ProductCategory() Category { return CategoryWreath }

// SeasonalAttributes describes a seasonal product.
type SeasonalAttributes struct {
	Season string `json:"season"`
	Type   string `json:"type"`
	Theme  string `json:"theme"`
}

func (SeasonalAttributes) ProductCategory() Category { return CategorySeasonal }

// Product is the unified view over all category tables. SKU is unique across
// the whole catalog regardless of which table stores the row. Quantity is the
// single source of truth for stock and is mutated only through the order
// transaction's conditional decrement.
type Product struct {
	SKU         string     `json:"sku" db:"sku"`
	Name        string     `json:"name" db:"name"`
	Description string     `json:"description" db:"description"`
	Price       float64    `json:"price" db:"price"`
	ImageURL    string     `json:"image_url" db:"image_url"`
	Quantity    int        `json:"quantity" db:"quantity"`
	IsAvailable bool       `json:"is_available" db:"is_available"`
	Category    Category   `json:"category"`
	Attributes  Attributes `json:"attributes,omitempty"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}
