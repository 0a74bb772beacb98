package etl

import (
	"context"
	"fmt"
	"sort"

	"github.com/BartekS5/ufmigrate/pkg/models"
	"github.com/google/uuid"
)

// Policy controls which parts of the legacy data are carried over.
type Policy struct {
	// PopulateObsoleteIDs copies Page, FieldSet.Page, Condition and Rule
	// ids. The new schema no longer reads them.
	PopulateObsoleteIDs bool
	// MigrateRecords copies form submissions.
	MigrateRecords bool
}

// EligibleSources is the set of pre-value source ids present in the
// destination. Fields may only reference ids in this set.
type EligibleSources map[uuid.UUID]struct{}

func NewEligibleSources(sources []models.PreValueSource) EligibleSources {
	set := make(EligibleSources, len(sources))
	for _, s := range sources {
		set[s.ID] = struct{}{}
	}
	return set
}

func (e EligibleSources) Contains(id uuid.UUID) bool {
	_, ok := e[id]
	return ok
}

// Transformer maps legacy entities to the new schema. Per-field pre-values
// and settings are fetched from Legacy while the form graph is walked.
type Transformer struct {
	Legacy   LegacyStore
	Policy   Policy
	Eligible EligibleSources
}

func NewTransformer(legacy LegacyStore, policy Policy, eligible EligibleSources) *Transformer {
	return &Transformer{Legacy: legacy, Policy: policy, Eligible: eligible}
}

// TransformPreValueSource returns nil for sources of an unsupported type.
func TransformPreValueSource(src models.LegacyPreValueSource) *models.PreValueSource {
	if !src.Type.Valid {
		return nil
	}
	return &models.PreValueSource{
		ID:       src.ID,
		Name:     src.Name,
		Type:     src.Type.UUID,
		Settings: src.Settings,
	}
}

func (t *Transformer) TransformForm(ctx context.Context, lf *models.LegacyForm) (*models.Form, error) {
	indication, err := MapFieldIndication(lf.FieldIndicationType)
	if err != nil {
		return nil, fmt.Errorf("form %s: %w", lf.ID, err)
	}

	form := &models.Form{
		ID:                       lf.ID,
		Name:                     lf.Name,
		DisableDefaultStylesheet: lf.DisableDefaultStylesheet,
		FieldIndicationType:      indication,
		GoToPageOnSubmit:         lf.GoToPageOnSubmit,
		HideFieldValidation:      lf.HideFieldValidation,
		Indicator:                lf.Indicator,
		InvalidErrorMessage:      lf.InvalidErrorMessage,
		ManualApproval:           lf.ManualApproval,
		MessageOnSubmit:          lf.MessageOnSubmit,
		RequiredErrorMessage:     lf.RequiredErrorMessage,
		ShowValidationSummary:    lf.ShowValidationSummary,
		StoreRecordsLocally:      lf.StoreRecordsLocally,
		XPathOnSubmit:            lf.XPathOnSubmit,
	}

	for _, lp := range lf.Pages {
		page := &models.Page{Caption: lp.Caption}
		if t.Policy.PopulateObsoleteIDs {
			page.ID = lp.ID
			page.Form = form.ID
		}

		for _, lfs := range lp.FieldSets {
			fieldset := &models.FieldSet{ID: lfs.ID, Caption: lfs.Caption}
			if t.Policy.PopulateObsoleteIDs {
				fieldset.Page = page.ID
			}

			container := &models.FieldsetContainer{Width: models.FullWidth}
			for _, lfield := range lfs.Fields {
				field, err := t.transformField(ctx, lfield)
				if err != nil {
					return nil, fmt.Errorf("form %s: %w", lf.ID, err)
				}
				container.Fields = append(container.Fields, field)
			}

			fieldset.Containers = append(fieldset.Containers, container)
			page.FieldSets = append(page.FieldSets, fieldset)
		}

		form.Pages = append(form.Pages, page)
	}

	return form, nil
}

func (t *Transformer) transformField(ctx context.Context, lf *models.LegacyField) (*models.Field, error) {
	prevalues, err := t.Legacy.PreValues(ctx, lf.ID)
	if err != nil {
		return nil, err
	}
	settings, err := t.Legacy.FieldSettings(ctx, lf.ID)
	if err != nil {
		return nil, err
	}
	return MapField(lf, prevalues, settings, t.Eligible, t.Policy)
}

// MapField builds the new-schema field from a legacy field and its
// separately stored pre-values and settings.
func MapField(lf *models.LegacyField, prevalues []models.LegacyPreValue, settings []models.Setting,
	eligible EligibleSources, policy Policy) (*models.Field, error) {
	field := &models.Field{
		ID:                   lf.ID,
		Caption:              lf.Caption,
		ToolTip:              lf.ToolTip,
		FieldTypeID:          lf.FieldTypeID,
		InvalidErrorMessage:  lf.InvalidErrorMessage,
		Mandatory:            lf.Mandatory,
		RequiredErrorMessage: lf.RequiredErrorMessage,
		RegEx:                lf.RegEx,
		PreValues:            orderedPreValues(prevalues),
		Settings:             make(map[string]string, len(settings)),
	}

	if lf.PreValueSourceID != uuid.Nil && eligible.Contains(lf.PreValueSourceID) {
		field.PreValueSourceID = lf.PreValueSourceID
	}

	cond, err := mapCondition(lf.Condition, policy)
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", lf.ID, err)
	}
	field.Condition = cond

	for _, s := range settings {
		field.Settings[s.Key] = s.Value
	}
	return field, nil
}

// orderedPreValues sorts by SortOrder and keeps only the values.
func orderedPreValues(prevalues []models.LegacyPreValue) []string {
	sorted := make([]models.LegacyPreValue, len(prevalues))
	copy(sorted, prevalues)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SortOrder < sorted[j].SortOrder
	})

	values := make([]string, 0, len(sorted))
	for _, pv := range sorted {
		values = append(values, pv.Value)
	}
	return values
}

func mapCondition(lc models.LegacyCondition, policy Policy) (*models.FieldCondition, error) {
	action, err := MapActionType(lc.ActionType)
	if err != nil {
		return nil, err
	}
	logic, err := MapLogicType(lc.LogicType)
	if err != nil {
		return nil, err
	}

	cond := &models.FieldCondition{
		Enabled:    lc.Enabled,
		ActionType: action,
		LogicType:  logic,
		Rules:      make([]*models.FieldConditionRule, 0, len(lc.Rules)),
	}
	if policy.PopulateObsoleteIDs {
		cond.ID = lc.ID
	}

	for _, lr := range lc.Rules {
		op, err := MapRuleOperator(lr.Operator)
		if err != nil {
			return nil, err
		}
		rule := &models.FieldConditionRule{
			Field:    lr.Field,
			Operator: op,
			Value:    lr.Value,
		}
		if policy.PopulateObsoleteIDs {
			rule.ID = lr.ID
		}
		cond.Rules = append(cond.Rules, rule)
	}
	return cond, nil
}

func TransformWorkflow(lw models.LegacyWorkflow, form *models.Form) (*models.Workflow, error) {
	executesOn, err := MapFormState(lw.ExecutesOn)
	if err != nil {
		return nil, fmt.Errorf("workflow %s: %w", lw.ID, err)
	}
	return &models.Workflow{
		ID:         lw.ID,
		Form:       form.ID,
		Name:       lw.Name,
		Type:       lw.Type,
		ExecutesOn: executesOn,
		Active:     lw.Active,
		SortOrder:  lw.SortOrder,
		Settings:   lw.Settings,
	}, nil
}

// TransformRecord copies the record scalars. Field values are attached
// separately by AttachRecordFields.
func TransformRecord(lr *models.LegacyRecord, form *models.Form) (*models.Record, error) {
	state, err := MapFormState(lr.State)
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", lr.ID, err)
	}
	return &models.Record{
		Form:          form.ID,
		Created:       lr.Created,
		Updated:       lr.Updated,
		State:         state,
		CurrentPage:   lr.CurrentPage,
		UmbracoPageID: lr.UmbracoPageID,
		IP:            lr.IP,
		MemberKey:     lr.MemberKey,
	}, nil
}

// AttachRecordFields sets the record's field values, each linked to the
// matching field of the already written form. It returns the keys of
// values whose field no longer exists in the form.
func AttachRecordFields(rec *models.Record, lr *models.LegacyRecord, form *models.Form) ([]uuid.UUID, error) {
	var dangling []uuid.UUID
	rec.RecordFields = make(map[uuid.UUID]*models.RecordField, len(lr.RecordFields))
	for key, lrf := range lr.RecordFields {
		dt, err := MapDataType(lrf.DataType)
		if err != nil {
			return nil, fmt.Errorf("record field %s: %w", key, err)
		}
		rf := &models.RecordField{
			Key:           lrf.Key,
			FieldID:       lrf.FieldID,
			Field:         form.FieldByID(lrf.FieldID),
			DataType:      dt,
			DataTypeAlias: lrf.DataTypeAlias,
			Values:        lrf.Values,
		}
		if rf.Field == nil {
			dangling = append(dangling, key)
		} else {
			rf.Alias = rf.Field.Alias
		}
		rec.RecordFields[key] = rf
	}
	return dangling, nil
}
