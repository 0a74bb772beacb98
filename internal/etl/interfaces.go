package etl

import (
	"context"

	"github.com/BartekS5/ufmigrate/pkg/models"
	"github.com/google/uuid"
)

// LegacyStore is the read-only view of the legacy forms schema.
type LegacyStore interface {
	PreValueSources(ctx context.Context) ([]models.LegacyPreValueSource, error)
	// Forms returns every form with pages, fieldsets, fields, conditions
	// and rules populated and sorted.
	Forms(ctx context.Context) ([]*models.LegacyForm, error)
	FieldSettings(ctx context.Context, fieldID uuid.UUID) ([]models.Setting, error)
	PreValues(ctx context.Context, fieldID uuid.UUID) ([]models.LegacyPreValue, error)
	Workflows(ctx context.Context, formID uuid.UUID) ([]models.LegacyWorkflow, error)
	Records(ctx context.Context, formID uuid.UUID) ([]*models.LegacyRecord, error)
}

// SchemaSQL executes raw statements against the legacy database.
type SchemaSQL interface {
	Exec(ctx context.Context, query string) (int64, error)
	ScalarInt(ctx context.Context, query string) (int, error)
}

// Destination is the new forms store.
//
// InsertPreValueSource always mints a new id; UpdatePreValueSource stores
// the source under the caller's id. InsertForm keeps a caller-supplied form
// id. InsertRecord mints the record id and stamps Created/Updated with the
// current time; UpdateRecordTimestamps rewrites only those two columns.
type Destination interface {
	InsertPreValueSource(ctx context.Context, pvs *models.PreValueSource) error
	UpdatePreValueSource(ctx context.Context, pvs *models.PreValueSource) error
	PreValueSources(ctx context.Context) ([]models.PreValueSource, error)

	InsertForm(ctx context.Context, form *models.Form) (*models.Form, error)
	UpdateForm(ctx context.Context, form *models.Form) error

	InsertWorkflow(ctx context.Context, form *models.Form, wf *models.Workflow) error

	InsertRecord(ctx context.Context, rec *models.Record, form *models.Form) error
	UpdateRecordTimestamps(ctx context.Context, rec *models.Record) error
}
