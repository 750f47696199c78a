package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Sale is the terminal event for an animal. One per animal.
type Sale struct {
	ID           string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CattleID     string          `gorm:"type:varchar(36);not null;uniqueIndex" json:"cattleId"`
	UserID       string          `gorm:"type:varchar(64);not null" json:"userId"`
	FinalWeight  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"finalWeight"`
	SalePrice    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"salePrice"`
	BuyerName    string          `gorm:"type:varchar(128);not null" json:"buyerName"`
	BuyerContact string          `gorm:"type:varchar(128)" json:"buyerContact"`
	SaleDate     time.Time       `gorm:"not null;index" json:"saleDate"`
	Notes        string          `gorm:"type:text" json:"notes"`
	CreatedAt    time.Time       `json:"createdAt"`

	Cattle *Cattle `gorm:"foreignKey:CattleID" json:"cattle,omitempty"`
}

func (s *Sale) BeforeCreate(*gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// SaleFilter narrows sale listings. BuyerName matches case-insensitively as a substring.
type SaleFilter struct {
	CattleID  string
	BuyerName string
	From      *time.Time
	To        *time.Time
}

// SalesSummary aggregates every recorded sale.
type SalesSummary struct {
	TotalSales       int             `json:"totalSales"`
	TotalRevenue     decimal.Decimal `json:"totalRevenue"`
	AverageSalePrice decimal.Decimal `json:"averageSalePrice"`
	AverageWeight    decimal.Decimal `json:"averageWeight"`
}
