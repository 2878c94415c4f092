package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"checklistapi/internal/database/migration"
	"checklistapi/internal/model"
	"checklistapi/internal/repository"
)

const checklistColumns = `id, title, created_label, initial_data, verifications, inspections, complete`

// ChecklistPostgres is a PostgreSQL implementation of repository.ChecklistRepository.
// Nested vehicle data and item lists are stored as JSONB documents.
type ChecklistPostgres struct {
	db *sql.DB
}

// NewChecklistPostgres creates a new ChecklistPostgres repository.
func NewChecklistPostgres(db *sql.DB) *ChecklistPostgres {
	return &ChecklistPostgres{db: db}
}

var _ repository.ChecklistRepository = (*ChecklistPostgres)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

// Upsert inserts a checklist row, or updates the existing row with the same id.
func (r *ChecklistPostgres) Upsert(ctx context.Context, c *model.Checklist) (*model.Checklist, error) {
	initial, err := json.Marshal(c.InitialData)
	if err != nil {
		return nil, fmt.Errorf("encode initial data: %w", err)
	}
	verifications, err := json.Marshal(nonNilVerifications(c.Verifications))
	if err != nil {
		return nil, fmt.Errorf("encode verifications: %w", err)
	}
	inspections, err := json.Marshal(nonNilInspections(c.Inspections))
	if err != nil {
		return nil, fmt.Errorf("encode inspections: %w", err)
	}

	const q = `
		INSERT INTO checklists (id, title, created_label, initial_data, verifications, inspections, complete)
		VALUES ($1, $2, $3, $4::jsonb, $5::jsonb, $6::jsonb, $7)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			created_label = EXCLUDED.created_label,
			initial_data = EXCLUDED.initial_data,
			verifications = EXCLUDED.verifications,
			inspections = EXCLUDED.inspections,
			complete = EXCLUDED.complete,
			updated_at = now()
		RETURNING ` + checklistColumns

	row := r.db.QueryRowContext(ctx, q,
		c.ID,
		c.Title,
		c.CreatedAt,
		string(initial),
		string(verifications),
		string(inspections),
		c.Complete,
	)
	return scanChecklist(row)
}

// FindByID fetches a single checklist by its ID.
func (r *ChecklistPostgres) FindByID(ctx context.Context, id string) (*model.Checklist, error) {
	q := `SELECT ` + checklistColumns + ` FROM checklists WHERE id = $1`
	return scanChecklist(r.db.QueryRowContext(ctx, q, id))
}

// List returns all checklists, newest insertion first.
func (r *ChecklistPostgres) List(ctx context.Context) ([]model.Checklist, error) {
	q := `SELECT ` + checklistColumns + ` FROM checklists ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Checklist, 0)
	for rows.Next() {
		c, err := scanChecklist(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Delete removes a checklist by ID. It does not return an error if the row does not exist.
func (r *ChecklistPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM checklists WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

// TableExists probes the catalog for the checklists table.
func (r *ChecklistPostgres) TableExists(ctx context.Context) (bool, error) {
	var exists bool
	q := "SELECT to_regclass('public." + migration.TableName + "') IS NOT NULL"
	if err := r.db.QueryRowContext(ctx, q).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// TableName returns the backing table name.
func (r *ChecklistPostgres) TableName() string {
	return migration.TableName
}

func scanChecklist(s rowScanner) (*model.Checklist, error) {
	var c model.Checklist
	var initial, verifications, inspections []byte
	if err := s.Scan(
		&c.ID,
		&c.Title,
		&c.CreatedAt,
		&initial,
		&verifications,
		&inspections,
		&c.Complete,
	); err != nil {
		return nil, err
	}

	if len(initial) > 0 && string(initial) != "null" {
		if err := json.Unmarshal(initial, &c.InitialData); err != nil {
			return nil, fmt.Errorf("decode initial_data of %s: %w", c.ID, err)
		}
	}
	if len(verifications) > 0 {
		if err := json.Unmarshal(verifications, &c.Verifications); err != nil {
			return nil, fmt.Errorf("decode verifications of %s: %w", c.ID, err)
		}
	}
	if len(inspections) > 0 {
		if err := json.Unmarshal(inspections, &c.Inspections); err != nil {
			return nil, fmt.Errorf("decode inspections of %s: %w", c.ID, err)
		}
	}
	c.Normalize()
	return &c, nil
}

func nonNilVerifications(v []model.VerificationItem) []model.VerificationItem {
	if v == nil {
		return []model.VerificationItem{}
	}
	return v
}

func nonNilInspections(v []model.InspectionItem) []model.InspectionItem {
	if v == nil {
		return []model.InspectionItem{}
	}
	return v
}
