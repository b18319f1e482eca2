package repository

import (
	"context"

	"filetable-gateway/internal/model"
)

// TableRepository defines the interface for table definition operations
type TableRepository interface {
	// Create a new table definition
	Create(ctx context.Context, table *model.TableDefinition) error

	// GetByID retrieves a table definition by its UUID
	GetByID(ctx context.Context, id string) (*model.TableDefinition, error)

	// GetByName retrieves a table definition by its name
	GetByName(ctx context.Context, name string) (*model.TableDefinition, error)

	// GetAll retrieves all table definitions with optional filtering
	GetAll(ctx context.Context, status model.TableStatus, limit, offset int) ([]*model.TableDefinition, int64, error)

	// Update updates an existing table definition
	Update(ctx context.Context, table *model.TableDefinition) error

	// Delete removes a table definition
	Delete(ctx context.Context, id string) error
}
