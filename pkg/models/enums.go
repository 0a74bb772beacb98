package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Legacy enumerations. Values are the integers stored by the legacy schema.

type LegacyFormFieldIndication int

const (
	LegacyNoIndicator LegacyFormFieldIndication = iota
	LegacyMarkMandatoryFields
	LegacyMarkOptionalFields

	LegacyFormFieldIndicationCount
)

type LegacyFieldConditionActionType int

const (
	LegacyActionShow LegacyFieldConditionActionType = iota
	LegacyActionHide

	LegacyFieldConditionActionTypeCount
)

type LegacyFieldConditionLogicType int

const (
	LegacyLogicAll LegacyFieldConditionLogicType = iota
	LegacyLogicAny

	LegacyFieldConditionLogicTypeCount
)

type LegacyFieldConditionRuleOperator int

const (
	LegacyOperatorIs LegacyFieldConditionRuleOperator = iota
	LegacyOperatorIsNot
	LegacyOperatorGreaterThen
	LegacyOperatorLessThen
	LegacyOperatorContains
	LegacyOperatorStartsWith
	LegacyOperatorEndsWith

	LegacyFieldConditionRuleOperatorCount
)

type LegacyFormState int

const (
	LegacyStateOpened LegacyFormState = iota
	LegacyStateResumed
	LegacyStatePartiallySubmitted
	LegacyStateSubmitted
	LegacyStateApproved
	LegacyStateDeleted

	LegacyFormStateCount
)

var legacyFormStateNames = [...]string{
	LegacyStateOpened:             "Opened",
	LegacyStateResumed:            "Resumed",
	LegacyStatePartiallySubmitted: "PartiallySubmitted",
	LegacyStateSubmitted:          "Submitted",
	LegacyStateApproved:           "Approved",
	LegacyStateDeleted:            "Deleted",
}

// ParseLegacyFormState accepts either the stored state name or its number.
func ParseLegacyFormState(s string) (LegacyFormState, error) {
	s = strings.TrimSpace(s)
	for i, name := range legacyFormStateNames {
		if strings.EqualFold(name, s) {
			return LegacyFormState(i), nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 && n < int(LegacyFormStateCount) {
		return LegacyFormState(n), nil
	}
	return 0, fmt.Errorf("unknown legacy form state %q", s)
}

// LegacyFieldDataType is the discriminator stored in UFRecordFields.DataType.
type LegacyFieldDataType int

const (
	LegacyDataString LegacyFieldDataType = iota
	LegacyDataLongString
	LegacyDataInteger
	LegacyDataDateTime
	LegacyDataBit

	LegacyFieldDataTypeCount
)

var legacyDataTypeTags = [...]string{
	LegacyDataString:     "String",
	LegacyDataLongString: "LongString",
	LegacyDataInteger:    "Integer",
	LegacyDataDateTime:   "DateTime",
	LegacyDataBit:        "Bit",
}

// Tag returns the value stored in the DataType column.
func (d LegacyFieldDataType) Tag() string {
	if d < 0 || int(d) >= len(legacyDataTypeTags) {
		return strconv.Itoa(int(d))
	}
	return legacyDataTypeTags[d]
}

// ParseLegacyFieldDataType maps a stored DataType tag to its enum value.
func ParseLegacyFieldDataType(tag string) (LegacyFieldDataType, error) {
	tag = strings.TrimSpace(tag)
	for i, t := range legacyDataTypeTags {
		if strings.EqualFold(t, tag) {
			return LegacyFieldDataType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown legacy data type %q", tag)
}

// New schema enumerations.

type FormFieldIndication int

const (
	NoIndicator FormFieldIndication = iota
	MarkMandatoryFields
	MarkOptionalFields
)

type FieldConditionActionType int

const (
	ConditionActionShow FieldConditionActionType = iota
	ConditionActionHide
)

type FieldConditionLogicType int

const (
	ConditionLogicAll FieldConditionLogicType = iota
	ConditionLogicAny
)

type FieldConditionRuleOperator int

const (
	RuleOperatorIs FieldConditionRuleOperator = iota
	RuleOperatorIsNot
	RuleOperatorGreaterThen
	RuleOperatorLessThen
	RuleOperatorContains
	RuleOperatorStartsWith
	RuleOperatorEndsWith
)

type FormState int

const (
	FormStateOpened FormState = iota
	FormStateResumed
	FormStatePartiallySubmitted
	FormStateSubmitted
	FormStateApproved
	FormStateDeleted
)

var formStateNames = [...]string{
	FormStateOpened:             "Opened",
	FormStateResumed:            "Resumed",
	FormStatePartiallySubmitted: "PartiallySubmitted",
	FormStateSubmitted:          "Submitted",
	FormStateApproved:           "Approved",
	FormStateDeleted:            "Deleted",
}

func (s FormState) String() string {
	if s < 0 || int(s) >= len(formStateNames) {
		return "FormState(" + strconv.Itoa(int(s)) + ")"
	}
	return formStateNames[s]
}

type FieldDataType int

const (
	DataTypeString FieldDataType = iota
	DataTypeLongString
	DataTypeInteger
	DataTypeDateTime
	DataTypeBit
)

var fieldDataTypeNames = [...]string{
	DataTypeString:     "String",
	DataTypeLongString: "LongString",
	DataTypeInteger:    "Integer",
	DataTypeDateTime:   "DateTime",
	DataTypeBit:        "Bit",
}

func (d FieldDataType) String() string {
	if d < 0 || int(d) >= len(fieldDataTypeNames) {
		return "FieldDataType(" + strconv.Itoa(int(d)) + ")"
	}
	return fieldDataTypeNames[d]
}
