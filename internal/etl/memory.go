package etl

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/BartekS5/ufmigrate/pkg/models"
	"github.com/google/uuid"
)

// MemoryDestination keeps everything in memory. It backs dry runs and
// follows the same id and timestamp rules as MongoDestination. Inserting a
// form twice stores it twice.
type MemoryDestination struct {
	Now func() time.Time

	Sources      map[uuid.UUID]models.PreValueSource
	Forms        []*models.Form
	Workflows    []*models.Workflow
	Records      []*models.Record
	RecordFields []*models.RecordField
}

func NewMemoryDestination() *MemoryDestination {
	return &MemoryDestination{
		Now:     time.Now,
		Sources: make(map[uuid.UUID]models.PreValueSource),
	}
}

func (m *MemoryDestination) InsertPreValueSource(_ context.Context, pvs *models.PreValueSource) error {
	pvs.ID = uuid.New()
	m.Sources[pvs.ID] = *pvs
	return nil
}

func (m *MemoryDestination) UpdatePreValueSource(_ context.Context, pvs *models.PreValueSource) error {
	if pvs.ID == uuid.Nil {
		return fmt.Errorf("pre-value source %q has no id", pvs.Name)
	}
	m.Sources[pvs.ID] = *pvs
	return nil
}

func (m *MemoryDestination) PreValueSources(_ context.Context) ([]models.PreValueSource, error) {
	out := make([]models.PreValueSource, 0, len(m.Sources))
	for _, s := range m.Sources {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryDestination) InsertForm(_ context.Context, form *models.Form) (*models.Form, error) {
	if form.ID == uuid.Nil {
		form.ID = uuid.New()
	}
	form.Created = m.Now()
	form.Updated = form.Created
	stored := *form
	m.Forms = append(m.Forms, &stored)
	return form, nil
}

func (m *MemoryDestination) UpdateForm(_ context.Context, form *models.Form) error {
	for i := len(m.Forms) - 1; i >= 0; i-- {
		if m.Forms[i].ID == form.ID {
			form.AssignAliases()
			form.Updated = m.Now()
			stored := *form
			m.Forms[i] = &stored
			return nil
		}
	}
	return fmt.Errorf("form %s not found", form.ID)
}

// Form returns the last stored form with the given id.
func (m *MemoryDestination) Form(id uuid.UUID) *models.Form {
	for i := len(m.Forms) - 1; i >= 0; i-- {
		if m.Forms[i].ID == id {
			return m.Forms[i]
		}
	}
	return nil
}

func (m *MemoryDestination) InsertWorkflow(_ context.Context, form *models.Form, wf *models.Workflow) error {
	wf.Form = form.ID
	stored := *wf
	m.Workflows = append(m.Workflows, &stored)
	return nil
}

func (m *MemoryDestination) InsertRecord(_ context.Context, rec *models.Record, form *models.Form) error {
	rec.ID = uuid.New()
	rec.Form = form.ID
	rec.Created = m.Now()
	rec.Updated = rec.Created

	stored := *rec
	m.Records = append(m.Records, &stored)
	for _, rf := range rec.RecordFields {
		rf.Record = rec.ID
		row := *rf
		m.RecordFields = append(m.RecordFields, &row)
	}
	return nil
}

func (m *MemoryDestination) UpdateRecordTimestamps(_ context.Context, rec *models.Record) error {
	for _, r := range m.Records {
		if r.ID == rec.ID {
			r.Created = rec.Created
			r.Updated = rec.Updated
			return nil
		}
	}
	return fmt.Errorf("record %s not found", rec.ID)
}
