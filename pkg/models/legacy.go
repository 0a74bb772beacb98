// Package models holds the entity graphs on both sides of the migration:
// the legacy (Contour-era) forms schema as read from SQL Server, and the
// new forms schema as written to the destination store.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Setting is one (key, value) row of the legacy UFSettings table.
type Setting struct {
	Key   string
	Value string
}

// LegacyPreValueSource is a row of UFPrevalueSources plus its settings.
// A null Type means the provider is not supported by the new schema.
type LegacyPreValueSource struct {
	ID       uuid.UUID
	Name     string
	Type     uuid.NullUUID
	Settings map[string]string
}

// LegacyForm is a legacy form with its full nested graph.
type LegacyForm struct {
	ID                       uuid.UUID
	Name                     string
	Created                  time.Time
	Archived                 bool
	DisableDefaultStylesheet bool
	FieldIndicationType      LegacyFormFieldIndication
	Indicator                string
	GoToPageOnSubmit         int
	HideFieldValidation      bool
	ShowValidationSummary    bool
	ManualApproval           bool
	StoreRecordsLocally      bool
	MessageOnSubmit          string
	RequiredErrorMessage     string
	InvalidErrorMessage      string
	XPathOnSubmit            string

	Pages []*LegacyPage
}

type LegacyPage struct {
	ID        uuid.UUID
	FormID    uuid.UUID
	Caption   string
	SortOrder int

	FieldSets []*LegacyFieldSet
}

type LegacyFieldSet struct {
	ID        uuid.UUID
	PageID    uuid.UUID
	Caption   string
	SortOrder int

	Fields []*LegacyField
}

// LegacyField is a form field. PreValueSourceID is uuid.Nil when the field
// has no pre-value source.
type LegacyField struct {
	ID                   uuid.UUID
	FieldSetID           uuid.UUID
	Caption              string
	ToolTip              string
	FieldTypeID          uuid.UUID
	InvalidErrorMessage  string
	RequiredErrorMessage string
	Mandatory            bool
	RegEx                string
	PreValueSourceID     uuid.UUID
	SortOrder            int

	Condition LegacyCondition
}

type LegacyCondition struct {
	ID         uuid.UUID
	Enabled    bool
	ActionType LegacyFieldConditionActionType
	LogicType  LegacyFieldConditionLogicType

	Rules []LegacyRule
}

// LegacyRule compares the value of Field against Value.
type LegacyRule struct {
	ID       uuid.UUID
	Field    uuid.UUID
	Operator LegacyFieldConditionRuleOperator
	Value    string
}

type LegacyPreValue struct {
	ID        uuid.UUID
	FieldID   uuid.UUID
	Value     string
	SortOrder int
}

type LegacyWorkflow struct {
	ID         uuid.UUID
	FormID     uuid.UUID
	Name       string
	Type       uuid.UUID
	ExecutesOn LegacyFormState
	Active     bool
	SortOrder  int
	Settings   map[string]string
}

// LegacyRecord is one submission of a legacy form. RecordFields is keyed by
// the record field key.
type LegacyRecord struct {
	ID            uuid.UUID
	FormID        uuid.UUID
	Created       time.Time
	Updated       time.Time
	State         LegacyFormState
	CurrentPage   uuid.UUID
	UmbracoPageID int
	IP            string
	MemberKey     string

	RecordFields map[uuid.UUID]*LegacyRecordField
}

type LegacyRecordField struct {
	Key           uuid.UUID
	RecordID      uuid.UUID
	FieldID       uuid.UUID
	DataType      LegacyFieldDataType
	DataTypeAlias string
	Values        []interface{}
}
