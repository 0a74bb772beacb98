package etl

import (
	"context"
	"fmt"
	"time"

	"github.com/BartekS5/ufmigrate/pkg/logger"
	"github.com/BartekS5/ufmigrate/pkg/models"
)

// Migrator runs the whole migration once, top to bottom: schema repair,
// pre-value sources, then each form with its workflows and records.
type Migrator struct {
	Legacy      LegacyStore
	Schema      SchemaSQL
	Destination Destination
	Policy      Policy
	DryRun      bool

	Stats Stats
}

func NewMigrator(legacy LegacyStore, schema SchemaSQL, dest Destination, policy Policy, dryRun bool) *Migrator {
	return &Migrator{
		Legacy:      legacy,
		Schema:      schema,
		Destination: dest,
		Policy:      policy,
		DryRun:      dryRun,
	}
}

func (m *Migrator) Run(ctx context.Context) error {
	m.Stats = Stats{StartTime: time.Now()}
	defer func() { m.Stats.EndTime = time.Now() }()

	logger.Infof("Starting migration. MigrateRecords: %v, PopulateObsoleteIDs: %v, DryRun: %v",
		m.Policy.MigrateRecords, m.Policy.PopulateObsoleteIDs, m.DryRun)

	if err := FixDataTypes(ctx, m.Schema, m.DryRun); err != nil {
		return err
	}

	eligible, err := m.migratePreValueSources(ctx)
	if err != nil {
		return err
	}

	if m.Policy.MigrateRecords {
		widened, err := FixDataStringLength(ctx, m.Schema, m.DryRun)
		if err != nil {
			return err
		}
		m.Stats.StringColumnWidened = widened
	}

	forms, err := m.Legacy.Forms(ctx)
	if err != nil {
		return err
	}
	logger.Infof("Found %d forms to migrate", len(forms))

	transformer := NewTransformer(m.Legacy, m.Policy, eligible)
	validator := NewValidator()
	for _, lf := range forms {
		progress := &FormProgress{ID: lf.ID, Name: lf.Name}
		if err := m.migrateForm(ctx, transformer, validator, lf, progress); err != nil {
			m.Stats.Aborted = progress
			progress.Log(err)
			return err
		}
	}

	logger.Info("Migration finished successfully.")
	return nil
}

// migratePreValueSources copies every supported source under its own id
// and returns the ids present in the destination afterwards.
func (m *Migrator) migratePreValueSources(ctx context.Context) (EligibleSources, error) {
	sources, err := m.Legacy.PreValueSources(ctx)
	if err != nil {
		return nil, err
	}

	for _, src := range sources {
		pvs := TransformPreValueSource(src)
		if pvs == nil {
			logger.Warnf("Skipping pre-value source %s (%q): unsupported type", src.ID, src.Name)
			m.Stats.PreValueSourcesSkipped++
			continue
		}
		// Insert would assign a new id and break field references.
		if err := m.Destination.UpdatePreValueSource(ctx, pvs); err != nil {
			return nil, err
		}
		logger.Debugf("Migrated pre-value source %s (%q)", pvs.ID, pvs.Name)
		m.Stats.PreValueSourcesMigrated++
	}

	present, err := m.Destination.PreValueSources(ctx)
	if err != nil {
		return nil, err
	}
	return NewEligibleSources(present), nil
}

func (m *Migrator) migrateForm(ctx context.Context, t *Transformer, v *Validator, lf *models.LegacyForm, progress *FormProgress) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	log := logger.L().With().Str("form", lf.Name).Str("form_id", lf.ID.String()).Logger()

	form, err := t.TransformForm(ctx, lf)
	if err != nil {
		return err
	}
	warnings, err := v.ValidateForm(form)
	if err != nil {
		return fmt.Errorf("form %s: %w", lf.ID, err)
	}
	for _, w := range warnings {
		log.Warn().Msg(w)
	}

	form, err = m.Destination.InsertForm(ctx, form)
	if err != nil {
		return err
	}
	// The update restores the legacy creation time and makes the
	// destination assign field aliases.
	form.Created = lf.Created
	if err := m.Destination.UpdateForm(ctx, form); err != nil {
		return err
	}
	progress.Written = true
	m.Stats.FormsMigrated++

	workflows, err := m.Legacy.Workflows(ctx, lf.ID)
	if err != nil {
		return err
	}
	for _, lw := range workflows {
		wf, err := TransformWorkflow(lw, form)
		if err != nil {
			return err
		}
		if err := m.Destination.InsertWorkflow(ctx, form, wf); err != nil {
			return err
		}
		progress.Workflows++
		m.Stats.WorkflowsMigrated++
	}

	if m.Policy.MigrateRecords {
		if err := m.migrateRecords(ctx, lf, form, progress); err != nil {
			return err
		}
	}

	log.Info().Int("workflows", progress.Workflows).Int("records", progress.Records).Msg("Form migrated")
	return nil
}

func (m *Migrator) migrateRecords(ctx context.Context, lf *models.LegacyForm, form *models.Form, progress *FormProgress) error {
	records, err := m.Legacy.Records(ctx, lf.ID)
	if err != nil {
		return err
	}

	for _, lr := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, err := TransformRecord(lr, form)
		if err != nil {
			return err
		}
		// Values are attached after the scalars so the destination writes
		// them once on insert.
		dangling, err := AttachRecordFields(rec, lr, form)
		if err != nil {
			return err
		}
		for _, key := range dangling {
			logger.Warnf("Record %s: field value %s references a field missing from form %s", lr.ID, key, form.ID)
		}
		m.Stats.DanglingRecordFields += len(dangling)

		if rec.RecordData, err = rec.GenerateRecordData(); err != nil {
			return err
		}
		if err := m.Destination.InsertRecord(ctx, rec, form); err != nil {
			return err
		}

		// Insert stamped the current time.
		rec.Created = lr.Created
		rec.Updated = lr.Updated
		if err := m.Destination.UpdateRecordTimestamps(ctx, rec); err != nil {
			return err
		}
		progress.Records++
		m.Stats.RecordsMigrated++
		logger.Debugf("Migrated record %s as %s", lr.ID, rec.ID)
	}
	return nil
}
