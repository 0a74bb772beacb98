package etl

import (
	"time"

	"github.com/BartekS5/ufmigrate/pkg/logger"
	"github.com/google/uuid"
)

// Stats tracks how far a migration got. It is reported even when the run
// fails part way.
type Stats struct {
	StartTime time.Time
	EndTime   time.Time

	PreValueSourcesMigrated int
	PreValueSourcesSkipped  int
	FormsMigrated           int
	WorkflowsMigrated       int
	RecordsMigrated         int
	DanglingRecordFields    int
	StringColumnWidened     bool

	// Aborted is the form the run stopped at, nil after a complete run.
	Aborted *FormProgress
}

// FormProgress is how far the migration of one form got. A form that is
// Written but aborted has only some of its workflows and records.
type FormProgress struct {
	ID        uuid.UUID
	Name      string
	Written   bool
	Workflows int
	Records   int
}

func (p *FormProgress) Log(err error) {
	logger.L().Error().Err(err).
		Str("form", p.Name).
		Str("form_id", p.ID.String()).
		Bool("form_written", p.Written).
		Int("workflows_written", p.Workflows).
		Int("records_written", p.Records).
		Msg("Migration stopped part way through form")
}

func (s *Stats) Log() {
	logger.L().Info().
		Dur("duration", s.EndTime.Sub(s.StartTime).Round(time.Millisecond)).
		Int("prevalue_sources", s.PreValueSourcesMigrated).
		Int("prevalue_sources_skipped", s.PreValueSourcesSkipped).
		Int("forms", s.FormsMigrated).
		Int("workflows", s.WorkflowsMigrated).
		Int("records", s.RecordsMigrated).
		Int("dangling_record_fields", s.DanglingRecordFields).
		Bool("string_column_widened", s.StringColumnWidened).
		Bool("aborted", s.Aborted != nil).
		Msg("Migration summary")
}
