package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Gender of an animal.
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

// ParseGender normalizes a gender value and reports whether it is known.
func ParseGender(value string) (Gender, bool) {
	g := Gender(strings.ToUpper(strings.TrimSpace(value)))
	switch g {
	case GenderMale, GenderFemale:
		return g, true
	default:
		return "", false
	}
}

// CattleStatus tracks where an animal is in its feedlot lifecycle. SOLD is terminal.
type CattleStatus string

const (
	CattleActive     CattleStatus = "ACTIVE"
	CattleSold       CattleStatus = "SOLD"
	CattleSick       CattleStatus = "SICK"
	CattleQuarantine CattleStatus = "QUARANTINE"
)

// CattleStatuses lists every status in display order.
var CattleStatuses = []CattleStatus{CattleActive, CattleSold, CattleSick, CattleQuarantine}

// ParseCattleStatus normalizes a status value and reports whether it is known.
func ParseCattleStatus(value string) (CattleStatus, bool) {
	s := CattleStatus(strings.ToUpper(strings.TrimSpace(value)))
	for _, known := range CattleStatuses {
		if s == known {
			return s, true
		}
	}
	return "", false
}

// Cattle is one animal. Tag is the business identifier painted on the ear tag.
type Cattle struct {
	ID            string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Tag           string          `gorm:"type:varchar(64);not null;uniqueIndex" json:"tag"`
	Breed         string          `gorm:"type:varchar(128);not null" json:"breed"`
	Gender        Gender          `gorm:"type:varchar(16);not null" json:"gender"`
	InitialWeight decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"initialWeight"`
	CurrentWeight decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"currentWeight"`
	Status        CattleStatus    `gorm:"type:varchar(16);not null;index" json:"status"`
	Location      string          `gorm:"type:varchar(128);index" json:"location"`
	Notes         string          `gorm:"type:text" json:"notes"`
	CreatedAt     time.Time       `gorm:"index" json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func (Cattle) TableName() string { return "cattle" }

func (c *Cattle) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// CattleFilter narrows cattle listings. Empty fields do not filter.
type CattleFilter struct {
	Status   CattleStatus
	Location string
	Breed    string
}

// Purchase records how an animal was acquired. One per animal.
type Purchase struct {
	ID            string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CattleID      string          `gorm:"type:varchar(36);not null;uniqueIndex" json:"cattleId"`
	SupplierID    string          `gorm:"type:varchar(36);not null;index" json:"supplierId"`
	PurchaseDate  time.Time       `gorm:"not null" json:"purchaseDate"`
	InitialWeight decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"initialWeight"`
	PurchasePrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"purchasePrice"`
	Notes         string          `gorm:"type:text" json:"notes"`
	CreatedAt     time.Time       `json:"createdAt"`
}

func (p *Purchase) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// InductionStatus is the processing state recorded at intake.
type InductionStatus string

const (
	InductionQuarantine InductionStatus = "quarantine"
	InductionHealthy    InductionStatus = "healthy"
	InductionTreatment  InductionStatus = "treatment"
	InductionRecovered  InductionStatus = "recovered"
)

// ParseInductionStatus normalizes an induction status and reports whether it is known.
func ParseInductionStatus(value string) (InductionStatus, bool) {
	s := InductionStatus(strings.ToLower(strings.TrimSpace(value)))
	switch s {
	case InductionQuarantine, InductionHealthy, InductionTreatment, InductionRecovered:
		return s, true
	default:
		return "", false
	}
}

// Induction is the intake/quarantine processing event for newly acquired cattle.
type Induction struct {
	ID             string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CattleID       string          `gorm:"type:varchar(36);not null;index" json:"cattleId"`
	InductionDate  time.Time       `gorm:"not null" json:"inductionDate"`
	QuarantineDays int             `json:"quarantineDays"`
	Treatment      string          `gorm:"type:text" json:"treatment"`
	Status         InductionStatus `gorm:"type:varchar(16);not null" json:"status"`
	Notes          string          `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time       `json:"createdAt"`
}

func (i *Induction) BeforeCreate(*gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// Supplier sells cattle or feed to the operation.
type Supplier struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name      string    `gorm:"type:varchar(128);not null" json:"name"`
	Contact   string    `gorm:"type:varchar(128)" json:"contact"`
	Notes     string    `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
}

func (s *Supplier) BeforeCreate(*gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
