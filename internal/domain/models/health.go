package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HealthStatus is the state of one illness episode.
type HealthStatus string

const (
	HealthActive    HealthStatus = "active"
	HealthRecovered HealthStatus = "recovered"
	HealthChronic   HealthStatus = "chronic"
	HealthDeceased  HealthStatus = "deceased"
)

// ParseHealthStatus normalizes a health status and reports whether it is known.
func ParseHealthStatus(value string) (HealthStatus, bool) {
	s := HealthStatus(strings.ToLower(strings.TrimSpace(value)))
	switch s {
	case HealthActive, HealthRecovered, HealthChronic, HealthDeceased:
		return s, true
	default:
		return "", false
	}
}

// HealthRecord is one illness or treatment episode for an animal.
type HealthRecord struct {
	ID         string       `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CattleID   string       `gorm:"type:varchar(36);not null;index" json:"cattleId"`
	UserID     string       `gorm:"type:varchar(64);not null" json:"userId"`
	Symptoms   []string     `gorm:"type:text;serializer:json" json:"symptoms"`
	Diagnosis  string       `gorm:"type:text" json:"diagnosis"`
	Treatment  string       `gorm:"type:text" json:"treatment"`
	Medication string       `gorm:"type:text" json:"medication"`
	Status     HealthStatus `gorm:"type:varchar(16);not null;index" json:"status"`
	StartDate  time.Time    `gorm:"not null;index" json:"startDate"`
	EndDate    *time.Time   `json:"endDate"`
	Notes      string       `gorm:"type:text" json:"notes"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`

	Cattle *Cattle `gorm:"foreignKey:CattleID" json:"cattle,omitempty"`
}

func (h *HealthRecord) BeforeCreate(*gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	return nil
}

// NormalizeSymptoms trims entries, drops blanks and keeps the first occurrence of duplicates
// (case-insensitive), preserving order.
func NormalizeSymptoms(symptoms []string) []string {
	out := make([]string, 0, len(symptoms))
	seen := make(map[string]struct{}, len(symptoms))
	for _, s := range symptoms {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

// HealthFilter narrows health record listings. Date bounds apply to StartDate and are inclusive.
type HealthFilter struct {
	CattleID string
	Status   HealthStatus
	From     *time.Time
	To       *time.Time
}
