package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// FullWidth is the width of the single container every migrated fieldset gets.
const FullWidth = 12

type PreValueSource struct {
	ID       uuid.UUID         `bson:"_id" json:"id"`
	Name     string            `bson:"name" json:"name"`
	Type     uuid.UUID         `bson:"type" json:"type"`
	Settings map[string]string `bson:"settings" json:"settings"`
}

type Form struct {
	ID                       uuid.UUID           `bson:"_id" json:"id"`
	Name                     string              `bson:"name" json:"name"`
	Created                  time.Time           `bson:"created" json:"created"`
	Updated                  time.Time           `bson:"updated" json:"updated"`
	DisableDefaultStylesheet bool                `bson:"disableDefaultStylesheet" json:"disableDefaultStylesheet"`
	FieldIndicationType      FormFieldIndication `bson:"fieldIndicationType" json:"fieldIndicationType"`
	Indicator                string              `bson:"indicator" json:"indicator"`
	GoToPageOnSubmit         int                 `bson:"goToPageOnSubmit" json:"goToPageOnSubmit"`
	HideFieldValidation      bool                `bson:"hideFieldValidation" json:"hideFieldValidation"`
	ShowValidationSummary    bool                `bson:"showValidationSummary" json:"showValidationSummary"`
	ManualApproval           bool                `bson:"manualApproval" json:"manualApproval"`
	StoreRecordsLocally      bool                `bson:"storeRecordsLocally" json:"storeRecordsLocally"`
	MessageOnSubmit          string              `bson:"messageOnSubmit" json:"messageOnSubmit"`
	RequiredErrorMessage     string              `bson:"requiredErrorMessage" json:"requiredErrorMessage"`
	InvalidErrorMessage      string              `bson:"invalidErrorMessage" json:"invalidErrorMessage"`
	XPathOnSubmit            string              `bson:"xPathOnSubmit" json:"xPathOnSubmit"`

	Pages []*Page `bson:"pages" json:"pages"`
}

// Page.ID and Page.Form are obsolete in the new schema and may be left empty.
type Page struct {
	ID      uuid.UUID `bson:"id" json:"id"`
	Form    uuid.UUID `bson:"form" json:"form"`
	Caption string    `bson:"caption" json:"caption"`

	FieldSets []*FieldSet `bson:"fieldSets" json:"fieldSets"`
}

type FieldSet struct {
	ID      uuid.UUID `bson:"id" json:"id"`
	Page    uuid.UUID `bson:"page" json:"page"`
	Caption string    `bson:"caption" json:"caption"`

	Containers []*FieldsetContainer `bson:"containers" json:"containers"`
}

// FieldsetContainer is a layout column inside a fieldset. Width is on a
// 12 column grid.
type FieldsetContainer struct {
	Caption string   `bson:"caption" json:"caption"`
	Width   int      `bson:"width" json:"width"`
	Fields  []*Field `bson:"fields" json:"fields"`
}

type Field struct {
	ID                   uuid.UUID         `bson:"id" json:"id"`
	Alias                string            `bson:"alias" json:"alias"`
	Caption              string            `bson:"caption" json:"caption"`
	ToolTip              string            `bson:"toolTip" json:"toolTip"`
	FieldTypeID          uuid.UUID         `bson:"fieldTypeId" json:"fieldTypeId"`
	InvalidErrorMessage  string            `bson:"invalidErrorMessage" json:"invalidErrorMessage"`
	RequiredErrorMessage string            `bson:"requiredErrorMessage" json:"requiredErrorMessage"`
	Mandatory            bool              `bson:"mandatory" json:"mandatory"`
	RegEx                string            `bson:"regex" json:"regex"`
	PreValueSourceID     uuid.UUID         `bson:"preValueSourceId" json:"preValueSourceId"`
	PreValues            []string          `bson:"preValues" json:"preValues"`
	Settings             map[string]string `bson:"settings" json:"settings"`
	Condition            *FieldCondition   `bson:"condition" json:"condition"`
}

type FieldCondition struct {
	ID         uuid.UUID                `bson:"id" json:"id"`
	Enabled    bool                     `bson:"enabled" json:"enabled"`
	ActionType FieldConditionActionType `bson:"actionType" json:"actionType"`
	LogicType  FieldConditionLogicType  `bson:"logicType" json:"logicType"`

	Rules []*FieldConditionRule `bson:"rules" json:"rules"`
}

type FieldConditionRule struct {
	ID       uuid.UUID                  `bson:"id" json:"id"`
	Field    uuid.UUID                  `bson:"field" json:"field"`
	Operator FieldConditionRuleOperator `bson:"operator" json:"operator"`
	Value    string                     `bson:"value" json:"value"`
}

type Workflow struct {
	ID         uuid.UUID         `bson:"_id" json:"id"`
	Form       uuid.UUID         `bson:"form" json:"form"`
	Name       string            `bson:"name" json:"name"`
	Type       uuid.UUID         `bson:"type" json:"type"`
	ExecutesOn FormState         `bson:"executesOn" json:"executesOn"`
	Active     bool              `bson:"active" json:"active"`
	SortOrder  int               `bson:"sortOrder" json:"sortOrder"`
	Settings   map[string]string `bson:"settings" json:"settings"`
}

// Record is one submission. RecordFields are stored as separate rows and
// RecordData is the serialized composite of their values.
type Record struct {
	ID            uuid.UUID `bson:"_id" json:"id"`
	Form          uuid.UUID `bson:"form" json:"form"`
	Created       time.Time `bson:"created" json:"created"`
	Updated       time.Time `bson:"updated" json:"updated"`
	State         FormState `bson:"state" json:"state"`
	CurrentPage   uuid.UUID `bson:"currentPage" json:"currentPage"`
	UmbracoPageID int       `bson:"umbracoPageId" json:"umbracoPageId"`
	IP            string    `bson:"ip" json:"ip"`
	MemberKey     string    `bson:"memberKey" json:"memberKey"`
	RecordData    string    `bson:"recordData" json:"recordData"`

	RecordFields map[uuid.UUID]*RecordField `bson:"-" json:"-"`
}

type RecordField struct {
	Key           uuid.UUID     `bson:"_id" json:"key"`
	Record        uuid.UUID     `bson:"record" json:"record"`
	FieldID       uuid.UUID     `bson:"field" json:"field"`
	Alias         string        `bson:"alias" json:"alias"`
	DataType      FieldDataType `bson:"dataType" json:"dataType"`
	DataTypeAlias string        `bson:"dataTypeAlias" json:"dataTypeAlias"`
	Values        []interface{} `bson:"values" json:"values"`

	// Field is the destination field this value belongs to. Only values
	// with a materialized field end up in RecordData.
	Field *Field `bson:"-" json:"-"`
}

type recordDataEntry struct {
	Alias    string   `json:"alias"`
	Caption  string   `json:"caption"`
	DataType string   `json:"dataType"`
	Values   []string `json:"values"`
}

// GenerateRecordData serializes the values of all record fields with a
// materialized Field, keyed by field id.
func (r *Record) GenerateRecordData() (string, error) {
	data := make(map[string]recordDataEntry, len(r.RecordFields))
	for _, rf := range r.RecordFields {
		if rf.Field == nil {
			continue
		}
		values := make([]string, 0, len(rf.Values))
		for _, v := range rf.Values {
			values = append(values, FormatValue(v))
		}
		data[rf.Field.ID.String()] = recordDataEntry{
			Alias:    rf.Field.Alias,
			Caption:  rf.Field.Caption,
			DataType: rf.DataType.String(),
			Values:   values,
		}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to serialize record data: %w", err)
	}
	return string(b), nil
}

// FormatValue renders a stored record value the way it is shown in
// record data.
func FormatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.Format(time.RFC3339Nano)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// Fields returns all fields of the form in page, fieldset, container order.
func (f *Form) Fields() []*Field {
	var out []*Field
	for _, p := range f.Pages {
		for _, fs := range p.FieldSets {
			for _, c := range fs.Containers {
				out = append(out, c.Fields...)
			}
		}
	}
	return out
}

// FieldByID does a linear search through the form graph. It returns nil
// when the form has no such field.
func (f *Form) FieldByID(id uuid.UUID) *Field {
	for _, p := range f.Pages {
		for _, fs := range p.FieldSets {
			for _, c := range fs.Containers {
				for _, field := range c.Fields {
					if field.ID == id {
						return field
					}
				}
			}
		}
	}
	return nil
}

// AssignAliases gives every field without an alias one derived from its
// caption. Aliases are unique within the form.
func (f *Form) AssignAliases() {
	used := make(map[string]bool)
	fields := f.Fields()
	for _, field := range fields {
		if field.Alias != "" {
			used[field.Alias] = true
		}
	}
	for _, field := range fields {
		if field.Alias != "" {
			continue
		}
		base := GenerateAlias(field.Caption)
		if base == "" {
			base = "field"
		}
		alias := base
		for i := 2; used[alias]; i++ {
			alias = base + strconv.Itoa(i)
		}
		used[alias] = true
		field.Alias = alias
	}
}

// GenerateAlias turns a caption into a camelCase identifier, dropping
// everything that is not a letter or digit.
func GenerateAlias(caption string) string {
	words := strings.FieldsFunc(caption, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	var b strings.Builder
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		if i > 0 {
			runes[0] = unicode.ToUpper(runes[0])
		}
		b.WriteString(string(runes))
	}
	alias := b.String()
	if alias != "" && unicode.IsDigit([]rune(alias)[0]) {
		alias = "f" + alias
	}
	return alias
}
