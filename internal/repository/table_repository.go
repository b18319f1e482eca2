package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"filetable-gateway/internal/model"
)

type tableRepository struct {
	db *gorm.DB
}

// NewTableRepository creates a new instance of TableRepository
func NewTableRepository(db *gorm.DB) TableRepository {
	return &tableRepository{db: db}
}

// Create a new table definition
func (r *tableRepository) Create(ctx context.Context, table *model.TableDefinition) error {
	err := r.db.WithContext(ctx).Create(table).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrTableExists
	}
	return err
}

// GetByID retrieves a table definition by its UUID
func (r *tableRepository) GetByID(ctx context.Context, id string) (*model.TableDefinition, error) {
	var table model.TableDefinition
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&table)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, result.Error
	}
	return &table, nil
}

// GetByName retrieves a table definition by its name
func (r *tableRepository) GetByName(ctx context.Context, name string) (*model.TableDefinition, error) {
	var table model.TableDefinition
	result := r.db.WithContext(ctx).Where("name = ?", name).First(&table)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, result.Error
	}
	return &table, nil
}

// GetAll retrieves all table definitions with optional filtering
func (r *tableRepository) GetAll(ctx context.Context, status model.TableStatus, limit, offset int) ([]*model.TableDefinition, int64, error) {
	var tables []*model.TableDefinition
	var total int64

	query := r.db.WithContext(ctx).Model(&model.TableDefinition{})

	// Apply status filter if provided
	if status != "" {
		query = query.Where("status = ?", status)
	}

	// Get total count
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Get table definitions with pagination
	result := query.Limit(limit).Offset(offset).Order("created_at DESC").Find(&tables)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	return tables, total, nil
}

// Update updates an existing table definition
func (r *tableRepository) Update(ctx context.Context, table *model.TableDefinition) error {
	return r.db.WithContext(ctx).Save(table).Error
}

// Delete removes a table definition
func (r *tableRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.TableDefinition{}).Error
}
