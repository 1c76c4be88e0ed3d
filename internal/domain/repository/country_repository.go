package repository

import (
	"context"

	"tourdesk-service/internal/domain/entity"
)

// CountryRepository defines the interface for the country reference table
type CountryRepository interface {
	GetByCode(ctx context.Context, code string) (*entity.Country, error)
	GetByName(ctx context.Context, name string) (*entity.Country, error)
}
