package domain

import (
	"time"
)

// ListedCompany represents metadata for a listed security
type ListedCompany struct {
	Symbol       string    `gorm:"primaryKey" json:"symbol"`
	Name         string    `json:"name"`
	LogoPath     string    `json:"logo_path"`
	IsActive     bool      `json:"is_active" gorm:"index"`
	LastSyncedAt time.Time `json:"last_synced_at"` // Last logo sync time
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CompanyNames is the built-in symbol -> display name table
var CompanyNames = map[string]string{
	"ABC":  "ACLEDA Bank PLC",
	"CGSM": "CAMGSM Plc.",
	"DBDE": "DBD Engineering PLC.",
	"GTI":  "Grand Twins International (Cambodia) PLC.",
	"JSL":  "JS Land",
	"MJQE": "MENGLY J. QUACH EDUCATION PLC.",
	"PAS":  "Sihanoukville Autonomous Port",
	"PEPC": "PESTECH (Cambodia) PLC.",
}

// StaticDirectory serves names from CompanyNames
type StaticDirectory struct{}

func (StaticDirectory) Company(symbol string) ListedCompany {
	name, ok := CompanyNames[symbol]
	if !ok {
		name = symbol
	}
	return ListedCompany{Symbol: symbol, Name: name, IsActive: ok}
}
