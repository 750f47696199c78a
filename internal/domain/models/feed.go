package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MaterialCategory groups raw materials for reporting.
type MaterialCategory string

const (
	CategoryGrain      MaterialCategory = "grain"
	CategoryHay        MaterialCategory = "hay"
	CategorySupplement MaterialCategory = "supplement"
	CategoryMineral    MaterialCategory = "mineral"
	CategoryOther      MaterialCategory = "other"
)

// ParseMaterialCategory normalizes a category and reports whether it is known.
func ParseMaterialCategory(value string) (MaterialCategory, bool) {
	c := MaterialCategory(strings.ToLower(strings.TrimSpace(value)))
	switch c {
	case CategoryGrain, CategoryHay, CategorySupplement, CategoryMineral, CategoryOther:
		return c, true
	default:
		return "", false
	}
}

// Units a raw material may be counted in.
var MaterialUnits = []string{"kg", "ton", "bag", "liter", "other"}

// ParseUnit normalizes a unit and reports whether it is known.
func ParseUnit(value string) (string, bool) {
	u := strings.ToLower(strings.TrimSpace(value))
	for _, known := range MaterialUnits {
		if u == known {
			return u, true
		}
	}
	return "", false
}

// QuantityScale is the number of decimal places stock quantities are stored with.
const QuantityScale = 3

// ExceedsQuantityScale reports whether qty carries more precision than the stock columns keep.
func ExceedsQuantityScale(qty decimal.Decimal) bool {
	return !qty.Equal(qty.Round(QuantityScale))
}

// RawMaterial is a feed inventory item.
type RawMaterial struct {
	ID           string           `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name         string           `gorm:"type:varchar(128);not null;index" json:"name"`
	Category     MaterialCategory `gorm:"type:varchar(32);not null;index" json:"category"`
	Unit         string           `gorm:"type:varchar(16);not null" json:"unit"`
	CurrentStock decimal.Decimal  `gorm:"type:decimal(14,3);not null" json:"currentStock"`
	MinStock     decimal.Decimal  `gorm:"type:decimal(14,3);not null" json:"minStock"`
	PricePerUnit decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"pricePerUnit"`
	SupplierID   *string          `gorm:"type:varchar(36);index" json:"supplierId"`
	Notes        string           `gorm:"type:text" json:"notes"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`

	Supplier *Supplier `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
}

func (m *RawMaterial) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// LowStock reports whether current stock is below the minimum threshold.
func (m RawMaterial) LowStock() bool {
	return m.CurrentStock.LessThan(m.MinStock)
}

// RawMaterialFilter narrows raw material listings.
type RawMaterialFilter struct {
	Category MaterialCategory
	LowStock bool
}

// StockOperation is the direction of a stock adjustment.
type StockOperation string

const (
	StockAdd      StockOperation = "add"
	StockSubtract StockOperation = "subtract"
)

// RawMaterialPurchase is feed bought into inventory.
type RawMaterialPurchase struct {
	ID            string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	RawMaterialID string          `gorm:"type:varchar(36);not null;index" json:"rawMaterialId"`
	SupplierID    string          `gorm:"type:varchar(36);not null;index" json:"supplierId"`
	PurchaseDate  time.Time       `gorm:"not null" json:"purchaseDate"`
	Quantity      decimal.Decimal `gorm:"type:decimal(14,3);not null" json:"quantity"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unitPrice"`
	TotalCost     decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"totalCost"`
	Notes         string          `gorm:"type:text" json:"notes"`
	CreatedAt     time.Time       `json:"createdAt"`
}

func (p *RawMaterialPurchase) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// FeedUsage is feed taken out of inventory.
type FeedUsage struct {
	ID            string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	RawMaterialID string          `gorm:"type:varchar(36);not null;index" json:"rawMaterialId"`
	RationID      *string         `gorm:"type:varchar(36);index" json:"rationId"`
	CattleGroupID string          `gorm:"type:varchar(64)" json:"cattleGroupId"`
	UserID        string          `gorm:"type:varchar(64);not null" json:"userId"`
	UsageDate     time.Time       `gorm:"not null;index" json:"usageDate"`
	Quantity      decimal.Decimal `gorm:"type:decimal(14,3);not null" json:"quantity"`
	Notes         string          `gorm:"type:text" json:"notes"`
	CreatedAt     time.Time       `json:"createdAt"`

	RawMaterial *RawMaterial `gorm:"foreignKey:RawMaterialID" json:"rawMaterial,omitempty"`
}

func (u *FeedUsage) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// UsageFilter narrows feed usage listings. Date bounds are inclusive.
type UsageFilter struct {
	RawMaterialID string
	CattleGroupID string
	From          *time.Time
	To            *time.Time
}

// Ration is a named feed formula.
type Ration struct {
	ID               string            `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name             string            `gorm:"type:varchar(128);not null;index" json:"name"`
	Description      string            `gorm:"type:text" json:"description"`
	NutritionalValue datatypes.JSONMap `json:"nutritionalValue,omitempty"`
	TargetGroup      string            `gorm:"type:varchar(64);index" json:"targetGroup"`
	IsActive         bool              `gorm:"not null" json:"isActive"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`

	Ingredients []RationIngredient `gorm:"foreignKey:RationID" json:"ingredients"`
}

func (r *Ration) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// RationIngredient is one line of a ration; Position keeps the formula order.
type RationIngredient struct {
	ID            string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	RationID      string          `gorm:"type:varchar(36);not null;index" json:"rationId"`
	RawMaterialID string          `gorm:"type:varchar(36);not null" json:"rawMaterialId"`
	Quantity      decimal.Decimal `gorm:"type:decimal(14,3);not null" json:"quantity"`
	Position      int             `gorm:"not null" json:"position"`
}

func (i *RationIngredient) BeforeCreate(*gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// RationFilter narrows ration listings.
type RationFilter struct {
	IsActive    *bool
	TargetGroup string
}
