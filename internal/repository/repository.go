// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., postgres) inside this directory.
package repository

import (
	"context"

	"checklistapi/internal/model"
)

// ChecklistRepository defines data access for checklists using SQL queries only.
// No business logic here: media resolution and completion rules belong to the service layer.
type ChecklistRepository interface {
	// Upsert inserts the checklist or replaces the row with the same ID and returns the stored record.
	// The original insertion time is kept on conflict so list ordering is stable.
	Upsert(ctx context.Context, c *model.Checklist) (*model.Checklist, error)

	// FindByID returns a checklist by its ID, or sql.ErrNoRows.
	FindByID(ctx context.Context, id string) (*model.Checklist, error)

	// List returns every checklist ordered newest first.
	List(ctx context.Context) ([]model.Checklist, error)

	// Delete removes a checklist by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error

	// TableExists reports whether the backing table is present.
	TableExists(ctx context.Context) (bool, error)

	// TableName is the name of the backing table, reported by health diagnostics.
	TableName() string
}
