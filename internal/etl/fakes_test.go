package etl

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/BartekS5/ufmigrate/pkg/models"
	"github.com/google/uuid"
)

type fakeLegacy struct {
	sources   []models.LegacyPreValueSource
	forms     []*models.LegacyForm
	settings  map[uuid.UUID][]models.Setting
	prevalues map[uuid.UUID][]models.LegacyPreValue
	workflows map[uuid.UUID][]models.LegacyWorkflow
	records   map[uuid.UUID][]*models.LegacyRecord

	recordsCalls int
}

func newFakeLegacy() *fakeLegacy {
	return &fakeLegacy{
		settings:  make(map[uuid.UUID][]models.Setting),
		prevalues: make(map[uuid.UUID][]models.LegacyPreValue),
		workflows: make(map[uuid.UUID][]models.LegacyWorkflow),
		records:   make(map[uuid.UUID][]*models.LegacyRecord),
	}
}

func (f *fakeLegacy) PreValueSources(context.Context) ([]models.LegacyPreValueSource, error) {
	return f.sources, nil
}

func (f *fakeLegacy) Forms(context.Context) ([]*models.LegacyForm, error) {
	return f.forms, nil
}

func (f *fakeLegacy) FieldSettings(_ context.Context, id uuid.UUID) ([]models.Setting, error) {
	return f.settings[id], nil
}

func (f *fakeLegacy) PreValues(_ context.Context, id uuid.UUID) ([]models.LegacyPreValue, error) {
	return f.prevalues[id], nil
}

func (f *fakeLegacy) Workflows(_ context.Context, id uuid.UUID) ([]models.LegacyWorkflow, error) {
	return f.workflows[id], nil
}

func (f *fakeLegacy) Records(_ context.Context, id uuid.UUID) ([]*models.LegacyRecord, error) {
	f.recordsCalls++
	return f.records[id], nil
}

// fakeSQL records executed statements and answers the max-length and
// column width lookups. A zero columnWidth reads as the default width.
type fakeSQL struct {
	maxLength   int
	columnWidth int
	failOn      string
	executed    []string
	scalarReads int
}

func (f *fakeSQL) Exec(_ context.Context, query string) (int64, error) {
	if f.failOn != "" && query == f.failOn {
		return 0, errors.New("deadlock victim")
	}
	f.executed = append(f.executed, query)
	return 1, nil
}

func (f *fakeSQL) ScalarInt(_ context.Context, query string) (int, error) {
	f.scalarReads++
	if strings.Contains(query, "INFORMATION_SCHEMA") {
		if f.columnWidth == 0 {
			return DefaultStringValueLength, nil
		}
		return f.columnWidth, nil
	}
	return f.maxLength, nil
}

// legacyFixture is a small legacy database: one form with two pages, a
// condition, pre-values, a workflow and two records.
type legacyFixture struct {
	legacy *fakeLegacy

	formID, pageID, fieldsetAID, fieldsetBID uuid.UUID
	nameFieldID, colorFieldID, agreeFieldID  uuid.UUID
	conditionID, ruleID                      uuid.UUID
	goodSourceID, nullSourceID, goneSourceID uuid.UUID
	workflowID                               uuid.UUID

	created, recordCreated, recordUpdated time.Time
}

func newLegacyFixture() *legacyFixture {
	fx := &legacyFixture{
		legacy:        newFakeLegacy(),
		formID:        uuid.MustParse("11111111-0000-0000-0000-000000000001"),
		pageID:        uuid.MustParse("22222222-0000-0000-0000-000000000001"),
		fieldsetAID:   uuid.MustParse("33333333-0000-0000-0000-000000000001"),
		fieldsetBID:   uuid.MustParse("33333333-0000-0000-0000-000000000002"),
		nameFieldID:   uuid.MustParse("44444444-0000-0000-0000-000000000001"),
		colorFieldID:  uuid.MustParse("44444444-0000-0000-0000-000000000002"),
		agreeFieldID:  uuid.MustParse("44444444-0000-0000-0000-000000000003"),
		conditionID:   uuid.MustParse("55555555-0000-0000-0000-000000000001"),
		ruleID:        uuid.MustParse("66666666-0000-0000-0000-000000000001"),
		goodSourceID:  uuid.MustParse("77777777-0000-0000-0000-000000000001"),
		nullSourceID:  uuid.MustParse("77777777-0000-0000-0000-000000000002"),
		goneSourceID:  uuid.MustParse("77777777-0000-0000-0000-000000000003"),
		workflowID:    uuid.MustParse("88888888-0000-0000-0000-000000000001"),
		created:       time.Date(2012, 5, 1, 9, 0, 0, 0, time.UTC),
		recordCreated: time.Date(2013, 1, 2, 3, 4, 5, 0, time.UTC),
		recordUpdated: time.Date(2013, 2, 3, 4, 5, 6, 0, time.UTC),
	}
	l := fx.legacy

	l.sources = []models.LegacyPreValueSource{
		{
			ID:       fx.goodSourceID,
			Name:     "Countries",
			Type:     uuid.NullUUID{UUID: uuid.MustParse("99999999-0000-0000-0000-000000000001"), Valid: true},
			Settings: map[string]string{"DocType": "country"},
		},
		{ID: fx.nullSourceID, Name: "Old SQL source"},
	}

	l.forms = []*models.LegacyForm{{
		ID:                  fx.formID,
		Name:                "Contact",
		Created:             fx.created,
		FieldIndicationType: models.LegacyMarkOptionalFields,
		Indicator:           "*",
		MessageOnSubmit:     "Thanks",
		GoToPageOnSubmit:    1050,
		XPathOnSubmit:       "//thanks",
		ManualApproval:      true,
		StoreRecordsLocally: true,
		Pages: []*models.LegacyPage{{
			ID:      fx.pageID,
			FormID:  fx.formID,
			Caption: "Page one",
			FieldSets: []*models.LegacyFieldSet{
				{
					ID:      fx.fieldsetAID,
					PageID:  fx.pageID,
					Caption: "About you",
					Fields: []*models.LegacyField{
						{ID: fx.nameFieldID, Caption: "Your name", Mandatory: true, RegEx: "^.+$"},
						{
							ID:               fx.colorFieldID,
							Caption:          "Favourite color",
							PreValueSourceID: fx.nullSourceID,
							Condition: models.LegacyCondition{
								ID:         fx.conditionID,
								Enabled:    true,
								ActionType: models.LegacyActionHide,
								LogicType:  models.LegacyLogicAny,
								Rules: []models.LegacyRule{{
									ID:       fx.ruleID,
									Field:    fx.nameFieldID,
									Operator: models.LegacyOperatorContains,
									Value:    "bob",
								}},
							},
						},
					},
				},
				{
					ID:      fx.fieldsetBID,
					PageID:  fx.pageID,
					Caption: "Consent",
					Fields: []*models.LegacyField{
						{ID: fx.agreeFieldID, Caption: "I agree", PreValueSourceID: fx.goodSourceID},
					},
				},
			},
		}},
	}}

	l.prevalues[fx.colorFieldID] = []models.LegacyPreValue{
		{Value: "blue", SortOrder: 2},
		{Value: "red", SortOrder: 0},
		{Value: "green", SortOrder: 1},
	}
	l.settings[fx.nameFieldID] = []models.Setting{{Key: "Placeholder", Value: "Jane Doe"}}

	l.workflows[fx.formID] = []models.LegacyWorkflow{{
		ID:         fx.workflowID,
		FormID:     fx.formID,
		Name:       "Send email",
		Type:       uuid.MustParse("99999999-0000-0000-0000-000000000002"),
		ExecutesOn: models.LegacyStateSubmitted,
		Active:     true,
		Settings:   map[string]string{"Email": "admin@example.com"},
	}}

	nameKey := uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000001")
	agreeKey := uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000002")
	goneKey := uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000003")
	l.records[fx.formID] = []*models.LegacyRecord{
		{
			ID:        uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000001"),
			FormID:    fx.formID,
			Created:   fx.recordCreated,
			Updated:   fx.recordUpdated,
			State:     models.LegacyStateApproved,
			IP:        "10.0.0.1",
			MemberKey: "1234",
			RecordFields: map[uuid.UUID]*models.LegacyRecordField{
				nameKey:  {Key: nameKey, FieldID: fx.nameFieldID, DataType: models.LegacyDataString, Values: []interface{}{"Bob"}},
				agreeKey: {Key: agreeKey, FieldID: fx.agreeFieldID, DataType: models.LegacyDataBit, Values: []interface{}{true}},
			},
		},
		{
			ID:      uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000002"),
			FormID:  fx.formID,
			Created: fx.recordCreated.Add(time.Hour),
			Updated: fx.recordCreated.Add(time.Hour),
			State:   models.LegacyStateSubmitted,
			RecordFields: map[uuid.UUID]*models.LegacyRecordField{
				goneKey: {Key: goneKey, FieldID: uuid.MustParse("44444444-0000-0000-0000-0000000000ff"), DataType: models.LegacyDataString, Values: []interface{}{"orphan"}},
			},
		},
	}
	return fx
}
