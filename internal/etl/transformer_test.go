package etl

import (
	"context"
	"testing"

	"github.com/BartekS5/ufmigrate/pkg/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformPreValueSource(t *testing.T) {
	fx := newLegacyFixture()

	pvs := TransformPreValueSource(fx.legacy.sources[0])
	require.NotNil(t, pvs)
	assert.Equal(t, fx.goodSourceID, pvs.ID)
	assert.Equal(t, "Countries", pvs.Name)
	assert.Equal(t, fx.legacy.sources[0].Type.UUID, pvs.Type)
	assert.Equal(t, map[string]string{"DocType": "country"}, pvs.Settings)

	assert.Nil(t, TransformPreValueSource(fx.legacy.sources[1]), "null type is never migrated")
}

func TestMapField_PreValuesOrderedBySortOrder(t *testing.T) {
	lf := &models.LegacyField{ID: uuid.New(), Caption: "Color"}
	prevalues := []models.LegacyPreValue{
		{Value: "c", SortOrder: 30},
		{Value: "a", SortOrder: 10},
		{Value: "b", SortOrder: 20},
	}

	field, err := MapField(lf, prevalues, nil, EligibleSources{}, Policy{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, field.PreValues)
	assert.Equal(t, "c", prevalues[0].Value, "input is not reordered")
}

func TestMapField_PreValueSourceEligibility(t *testing.T) {
	migrated := uuid.New()
	eligible := EligibleSources{migrated: {}}

	tests := []struct {
		name   string
		source uuid.UUID
		want   uuid.UUID
	}{
		{"migrated source kept", migrated, migrated},
		{"unknown source dropped", uuid.New(), uuid.Nil},
		{"no source", uuid.Nil, uuid.Nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lf := &models.LegacyField{ID: uuid.New(), PreValueSourceID: tt.source}
			field, err := MapField(lf, nil, nil, eligible, Policy{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, field.PreValueSourceID)
		})
	}
}

func TestMapField_VerbatimCopyAndSettings(t *testing.T) {
	lf := &models.LegacyField{
		ID:                   uuid.New(),
		Caption:              "Email",
		ToolTip:              "Where we reach you",
		FieldTypeID:          uuid.New(),
		InvalidErrorMessage:  "Bad email",
		RequiredErrorMessage: "Email is required",
		Mandatory:            true,
		RegEx:                `^\S+@\S+$`,
	}
	settings := []models.Setting{{Key: "Placeholder", Value: "you@example.com"}, {Key: "DefaultValue", Value: ""}}

	field, err := MapField(lf, nil, settings, EligibleSources{}, Policy{})
	require.NoError(t, err)
	assert.Equal(t, lf.ID, field.ID)
	assert.Equal(t, lf.Caption, field.Caption)
	assert.Equal(t, lf.ToolTip, field.ToolTip)
	assert.Equal(t, lf.FieldTypeID, field.FieldTypeID)
	assert.Equal(t, lf.InvalidErrorMessage, field.InvalidErrorMessage)
	assert.Equal(t, lf.RequiredErrorMessage, field.RequiredErrorMessage)
	assert.True(t, field.Mandatory)
	assert.Equal(t, lf.RegEx, field.RegEx)
	assert.Equal(t, map[string]string{"Placeholder": "you@example.com", "DefaultValue": ""}, field.Settings)
	assert.Empty(t, field.PreValues)
	assert.Empty(t, field.Alias, "aliases are assigned by the destination")
}

func TestMapField_UnknownEnumFails(t *testing.T) {
	lf := &models.LegacyField{
		ID:        uuid.New(),
		Condition: models.LegacyCondition{ActionType: models.LegacyFieldConditionActionType(9)},
	}
	_, err := MapField(lf, nil, nil, EligibleSources{}, Policy{})
	assert.ErrorContains(t, err, "condition action type")
}

func TestTransformForm_ContainersAndFieldsets(t *testing.T) {
	fx := newLegacyFixture()
	tr := NewTransformer(fx.legacy, Policy{PopulateObsoleteIDs: true}, EligibleSources{fx.goodSourceID: {}})

	lf := fx.legacy.forms[0]
	form, err := tr.TransformForm(context.Background(), lf)
	require.NoError(t, err)

	require.Len(t, form.Pages, len(lf.Pages))
	for pi, lp := range lf.Pages {
		page := form.Pages[pi]
		require.Len(t, page.FieldSets, len(lp.FieldSets))
		for fi, lfs := range lp.FieldSets {
			fs := page.FieldSets[fi]
			assert.Equal(t, lfs.ID, fs.ID)
			require.Len(t, fs.Containers, 1)
			assert.Equal(t, 12, fs.Containers[0].Width)

			var got []uuid.UUID
			for _, f := range fs.Containers[0].Fields {
				got = append(got, f.ID)
			}
			var want []uuid.UUID
			for _, f := range lfs.Fields {
				want = append(want, f.ID)
			}
			assert.Equal(t, want, got)
		}
	}
}

func TestTransformForm_FormLevelFields(t *testing.T) {
	fx := newLegacyFixture()
	tr := NewTransformer(fx.legacy, Policy{}, EligibleSources{})

	form, err := tr.TransformForm(context.Background(), fx.legacy.forms[0])
	require.NoError(t, err)

	assert.Equal(t, fx.formID, form.ID)
	assert.Equal(t, "Contact", form.Name)
	assert.Equal(t, models.MarkOptionalFields, form.FieldIndicationType)
	assert.Equal(t, "*", form.Indicator)
	assert.Equal(t, "Thanks", form.MessageOnSubmit)
	assert.Equal(t, 1050, form.GoToPageOnSubmit)
	assert.Equal(t, "//thanks", form.XPathOnSubmit)
	assert.True(t, form.ManualApproval)
	assert.True(t, form.StoreRecordsLocally)
	assert.False(t, form.DisableDefaultStylesheet)

	color := form.FieldByID(fx.colorFieldID)
	require.NotNil(t, color)
	assert.Equal(t, []string{"red", "green", "blue"}, color.PreValues)
	assert.Equal(t, uuid.Nil, color.PreValueSourceID, "null-type source was never migrated")

	name := form.FieldByID(fx.nameFieldID)
	require.NotNil(t, name)
	assert.Equal(t, map[string]string{"Placeholder": "Jane Doe"}, name.Settings)
}

func TestTransformForm_ObsoleteProperties(t *testing.T) {
	fx := newLegacyFixture()
	lf := fx.legacy.forms[0]

	t.Run("populated when policy allows", func(t *testing.T) {
		tr := NewTransformer(fx.legacy, Policy{PopulateObsoleteIDs: true}, EligibleSources{})
		form, err := tr.TransformForm(context.Background(), lf)
		require.NoError(t, err)

		page := form.Pages[0]
		assert.Equal(t, fx.pageID, page.ID)
		assert.Equal(t, fx.formID, page.Form)
		assert.Equal(t, fx.pageID, page.FieldSets[0].Page)

		cond := form.FieldByID(fx.colorFieldID).Condition
		assert.Equal(t, fx.conditionID, cond.ID)
		require.Len(t, cond.Rules, 1)
		assert.Equal(t, fx.ruleID, cond.Rules[0].ID)
	})

	t.Run("left empty when ignored", func(t *testing.T) {
		tr := NewTransformer(fx.legacy, Policy{PopulateObsoleteIDs: false}, EligibleSources{})
		form, err := tr.TransformForm(context.Background(), lf)
		require.NoError(t, err)

		page := form.Pages[0]
		assert.Equal(t, uuid.Nil, page.ID)
		assert.Equal(t, uuid.Nil, page.Form)
		assert.Equal(t, uuid.Nil, page.FieldSets[0].Page)

		cond := form.FieldByID(fx.colorFieldID).Condition
		assert.Equal(t, uuid.Nil, cond.ID)
		require.Len(t, cond.Rules, 1)
		assert.Equal(t, uuid.Nil, cond.Rules[0].ID)

		// Identities that the rest of the data depends on survive.
		assert.Equal(t, fx.formID, form.ID)
		assert.Equal(t, fx.fieldsetAID, page.FieldSets[0].ID)
		assert.Equal(t, fx.colorFieldID, form.FieldByID(fx.colorFieldID).ID)
		assert.Equal(t, fx.nameFieldID, cond.Rules[0].Field)
	})
}

func TestTransformForm_ConditionEnums(t *testing.T) {
	fx := newLegacyFixture()
	tr := NewTransformer(fx.legacy, Policy{}, EligibleSources{})

	form, err := tr.TransformForm(context.Background(), fx.legacy.forms[0])
	require.NoError(t, err)

	cond := form.FieldByID(fx.colorFieldID).Condition
	assert.True(t, cond.Enabled)
	assert.Equal(t, models.ConditionActionHide, cond.ActionType)
	assert.Equal(t, models.ConditionLogicAny, cond.LogicType)
	assert.Equal(t, models.RuleOperatorContains, cond.Rules[0].Operator)
	assert.Equal(t, "bob", cond.Rules[0].Value)
}

func TestTransformWorkflow(t *testing.T) {
	fx := newLegacyFixture()
	form := &models.Form{ID: fx.formID}

	wf, err := TransformWorkflow(fx.legacy.workflows[fx.formID][0], form)
	require.NoError(t, err)
	assert.Equal(t, fx.workflowID, wf.ID)
	assert.Equal(t, fx.formID, wf.Form)
	assert.Equal(t, "Send email", wf.Name)
	assert.Equal(t, models.FormStateSubmitted, wf.ExecutesOn)
	assert.True(t, wf.Active)
	assert.Equal(t, map[string]string{"Email": "admin@example.com"}, wf.Settings)
}

func TestAttachRecordFields(t *testing.T) {
	fx := newLegacyFixture()
	tr := NewTransformer(fx.legacy, Policy{}, EligibleSources{})
	form, err := tr.TransformForm(context.Background(), fx.legacy.forms[0])
	require.NoError(t, err)
	form.AssignAliases()

	lr := fx.legacy.records[fx.formID][0]
	rec, err := TransformRecord(lr, form)
	require.NoError(t, err)
	assert.Equal(t, models.FormStateApproved, rec.State)
	assert.Equal(t, "10.0.0.1", rec.IP)
	assert.Empty(t, rec.RecordFields, "values are attached in a second step")

	dangling, err := AttachRecordFields(rec, lr, form)
	require.NoError(t, err)
	assert.Empty(t, dangling)
	require.Len(t, rec.RecordFields, 2)
	for _, rf := range rec.RecordFields {
		require.NotNil(t, rf.Field)
		assert.Same(t, form.FieldByID(rf.FieldID), rf.Field)
		assert.Equal(t, rf.Field.Alias, rf.Alias)
	}

	orphan := fx.legacy.records[fx.formID][1]
	rec2, err := TransformRecord(orphan, form)
	require.NoError(t, err)
	dangling, err = AttachRecordFields(rec2, orphan, form)
	require.NoError(t, err)
	assert.Len(t, dangling, 1)
}
