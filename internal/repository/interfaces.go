// internal/repository/interfaces.go
package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/javajoker/shopinsights/internal/models"
	"github.com/javajoker/shopinsights/internal/utils"
)

// Store is the persistence surface the analysis services depend on.
type Store interface {
	FindByDomain(ctx context.Context, domain string) (*models.Brand, error)
	GetByID(ctx context.Context, id uuid.UUID, withRelations bool) (*models.Brand, error)
	List(ctx context.Context, params utils.PaginationParams) ([]models.Brand, int64, error)
	Save(ctx context.Context, brand *models.Brand) error
	SaveWithCatalog(ctx context.Context, brand *models.Brand, products []models.Product) error
	ListProducts(ctx context.Context, brandID uuid.UUID, params utils.PaginationParams) ([]models.Product, int64, error)
	CreateCompetitor(ctx context.Context, competitor *models.Competitor) error
	UpdateCompetitor(ctx context.Context, competitor *models.Competitor) error
	CreateAnalysis(ctx context.Context, analysis *models.Analysis) error
	Delete(ctx context.Context, id uuid.UUID) error
}

var _ Store = (*BrandRepository)(nil)
