package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"csx_ticker/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Storage persists listed-company metadata
type Storage struct {
	db *gorm.DB
}

// NewStorage opens (or creates) the SQLite database at dbPath
func NewStorage(dbPath string) (*Storage, error) {
	// Ensure directory exists
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	// Connect to SQLite (Pure Go)
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return newStorage(db)
}

func newStorage(db *gorm.DB) (*Storage, error) {
	// Auto Migration
	if err := db.AutoMigrate(&domain.ListedCompany{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &Storage{db: db}, nil
}

// Close releases the underlying connection pool
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ======================================================================================
// Company Operations
// ======================================================================================

// SeedCompanies inserts the given names for symbols not yet stored.
// Existing rows keep their name and logo.
func (s *Storage) SeedCompanies(names map[string]string) error {
	for symbol, name := range names {
		existing, err := s.GetCompany(symbol)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		if err := s.UpsertCompany(&domain.ListedCompany{
			Symbol:    symbol,
			Name:      name,
			IsActive:  true,
			UpdatedAt: time.Now(),
		}); err != nil {
			return err
		}
	}
	return nil
}

// UpsertCompany creates or updates company metadata
func (s *Storage) UpsertCompany(company *domain.ListedCompany) error {
	return s.db.Save(company).Error
}

// GetCompany retrieves company metadata by symbol
func (s *Storage) GetCompany(symbol string) (*domain.ListedCompany, error) {
	var company domain.ListedCompany
	err := s.db.First(&company, "symbol = ?", symbol).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // Not found is not an error
	}
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// GetAllCompanies retrieves all companies
func (s *Storage) GetAllCompanies() ([]domain.ListedCompany, error) {
	var companies []domain.ListedCompany
	err := s.db.Order("symbol").Find(&companies).Error
	return companies, err
}

// SetLogoPath records a downloaded logo for a symbol
func (s *Storage) SetLogoPath(symbol, path string) error {
	return s.db.Model(&domain.ListedCompany{}).
		Where("symbol = ?", symbol).
		Updates(map[string]any{"logo_path": path, "last_synced_at": time.Now()}).Error
}

// Company implements domain.CompanyDirectory. Symbols missing from the database fall back
// to the built-in names.
func (s *Storage) Company(symbol string) domain.ListedCompany {
	company, err := s.GetCompany(symbol)
	if err != nil {
		slog.Warn("Company lookup failed", slog.String("symbol", symbol), slog.Any("error", err))
	}
	if company == nil {
		return domain.StaticDirectory{}.Company(symbol)
	}
	return *company
}
