package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"tourdesk-service/internal/domain/entity"
	"tourdesk-service/internal/domain/repository"
	"tourdesk-service/pkg/apperr"
)

// GormCountryRepository implements the CountryRepository interface
type GormCountryRepository struct {
	db *gorm.DB
}

// NewGormCountryRepository creates a new GORM country repository
func NewGormCountryRepository(db *gorm.DB) repository.CountryRepository {
	return &GormCountryRepository{
		db: db,
	}
}

// Countries GORM model for database mapping
type Countries struct {
	ID        uint           `gorm:"primaryKey"`
	Code      string         `gorm:"column:code;unique"`
	Name      string         `gorm:"column:name;unique"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the default table name
func (Countries) TableName() string {
	return "m_countries"
}

// GetByCode finds a country by ISO code
func (r *GormCountryRepository) GetByCode(ctx context.Context, code string) (*entity.Country, error) {
	var country Countries
	result := r.db.WithContext(ctx).Where("code = ?", code).First(&country)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFoundf("country with code %q", code)
	}
	if result.Error != nil {
		return nil, apperr.Store("countries.select", result.Error)
	}

	return toCountryEntity(&country), nil
}

// GetByName finds a country by its canonical name, case-insensitively
func (r *GormCountryRepository) GetByName(ctx context.Context, name string) (*entity.Country, error) {
	var country Countries
	result := r.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(&country)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFoundf("country %q", name)
	}
	if result.Error != nil {
		return nil, apperr.Store("countries.select", result.Error)
	}

	return toCountryEntity(&country), nil
}

func toCountryEntity(c *Countries) *entity.Country {
	return &entity.Country{
		ID:        c.ID,
		Code:      c.Code,
		Name:      c.Name,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		DeletedAt: c.DeletedAt,
	}
}
