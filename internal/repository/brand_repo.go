// internal/repository/brand_repo.go
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/shopinsights/internal/database"
	"github.com/javajoker/shopinsights/internal/models"
	"github.com/javajoker/shopinsights/internal/utils"
)

var ErrNotFound = errors.New("record not found")

const productBatchSize = 100

// BrandRepository persists brands together with the records they own.
type BrandRepository struct {
	db *gorm.DB
}

func NewBrandRepository(db *gorm.DB) *BrandRepository {
	return &BrandRepository{db: db}
}

func (r *BrandRepository) FindByDomain(ctx context.Context, domain string) (*models.Brand, error) {
	var brand models.Brand
	err := r.db.WithContext(ctx).Where("domain = ?", strings.ToLower(domain)).First(&brand).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &brand, nil
}

func (r *BrandRepository) GetByID(ctx context.Context, id uuid.UUID, withRelations bool) (*models.Brand, error) {
	query := r.db.WithContext(ctx)
	if withRelations {
		query = query.
			Preload("Products", func(db *gorm.DB) *gorm.DB { return db.Order("is_hero_product DESC, created_at ASC") }).
			Preload("Competitors", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
			Preload("Analyses", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") })
	}

	var brand models.Brand
	if err := query.First(&brand, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &brand, nil
}

func (r *BrandRepository) List(ctx context.Context, params utils.PaginationParams) ([]models.Brand, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Brand{})

	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR domain LIKE ?", searchTerm, searchTerm)
	}
	if params.Status != "" {
		query = query.Where("scraping_status = ?", params.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count brands: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "name", "domain", "last_scraped"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var brands []models.Brand
	if err := query.Find(&brands).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch brands: %w", err)
	}
	return brands, total, nil
}

// Save inserts or updates the brand row only.
func (r *BrandRepository) Save(ctx context.Context, brand *models.Brand) error {
	if err := r.db.WithContext(ctx).Omit("Products", "Competitors", "Analyses").Save(brand).Error; err != nil {
		return fmt.Errorf("failed to save brand: %w", err)
	}
	return nil
}

// SaveWithCatalog writes the brand and replaces its catalog in one transaction.
func (r *BrandRepository) SaveWithCatalog(ctx context.Context, brand *models.Brand, products []models.Product) error {
	return database.WithTransaction(r.db.WithContext(ctx), func(tx *gorm.DB) error {
		if err := tx.Omit("Products", "Competitors", "Analyses").Save(brand).Error; err != nil {
			return fmt.Errorf("failed to save brand: %w", err)
		}

		if err := tx.Where("brand_id = ?", brand.ID).Delete(&models.Product{}).Error; err != nil {
			return fmt.Errorf("failed to clear previous catalog: %w", err)
		}

		if len(products) == 0 {
			return nil
		}
		for i := range products {
			products[i].BrandID = brand.ID
		}
		if err := tx.CreateInBatches(products, productBatchSize).Error; err != nil {
			return fmt.Errorf("failed to insert catalog: %w", err)
		}
		return nil
	})
}

func (r *BrandRepository) ListProducts(ctx context.Context, brandID uuid.UUID, params utils.PaginationParams) ([]models.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{}).Where("brand_id = ?", brandID)

	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(product_type) LIKE ?", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	allowedSortFields := []string{"created_at", "title", "price", "product_type", "is_hero_product"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}
	return products, total, nil
}

func (r *BrandRepository) CreateCompetitor(ctx context.Context, competitor *models.Competitor) error {
	if err := r.db.WithContext(ctx).Create(competitor).Error; err != nil {
		return fmt.Errorf("failed to create competitor: %w", err)
	}
	return nil
}

func (r *BrandRepository) UpdateCompetitor(ctx context.Context, competitor *models.Competitor) error {
	if err := r.db.WithContext(ctx).Save(competitor).Error; err != nil {
		return fmt.Errorf("failed to update competitor: %w", err)
	}
	return nil
}

func (r *BrandRepository) CreateAnalysis(ctx context.Context, analysis *models.Analysis) error {
	if err := r.db.WithContext(ctx).Create(analysis).Error; err != nil {
		return fmt.Errorf("failed to create analysis: %w", err)
	}
	return nil
}

// Delete removes the brand and everything it owns.
func (r *BrandRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return database.WithTransaction(r.db.WithContext(ctx), func(tx *gorm.DB) error {
		for _, child := range []interface{}{&models.Analysis{}, &models.Competitor{}, &models.Product{}} {
			if err := tx.Where("brand_id = ?", id).Delete(child).Error; err != nil {
				return fmt.Errorf("failed to delete brand children: %w", err)
			}
		}

		result := tx.Delete(&models.Brand{}, "id = ?", id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete brand: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
