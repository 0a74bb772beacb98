package etl

import (
	"fmt"

	"github.com/BartekS5/ufmigrate/pkg/models"
)

// Legacy to new enum tables, indexed by the legacy value. The blank
// declarations below fail to compile when a table does not cover exactly
// the legacy value range.

var fieldIndicationMap = [...]models.FormFieldIndication{
	models.LegacyNoIndicator:         models.NoIndicator,
	models.LegacyMarkMandatoryFields: models.MarkMandatoryFields,
	models.LegacyMarkOptionalFields:  models.MarkOptionalFields,
}

var actionTypeMap = [...]models.FieldConditionActionType{
	models.LegacyActionShow: models.ConditionActionShow,
	models.LegacyActionHide: models.ConditionActionHide,
}

var logicTypeMap = [...]models.FieldConditionLogicType{
	models.LegacyLogicAll: models.ConditionLogicAll,
	models.LegacyLogicAny: models.ConditionLogicAny,
}

var ruleOperatorMap = [...]models.FieldConditionRuleOperator{
	models.LegacyOperatorIs:          models.RuleOperatorIs,
	models.LegacyOperatorIsNot:       models.RuleOperatorIsNot,
	models.LegacyOperatorGreaterThen: models.RuleOperatorGreaterThen,
	models.LegacyOperatorLessThen:    models.RuleOperatorLessThen,
	models.LegacyOperatorContains:    models.RuleOperatorContains,
	models.LegacyOperatorStartsWith:  models.RuleOperatorStartsWith,
	models.LegacyOperatorEndsWith:    models.RuleOperatorEndsWith,
}

var formStateMap = [...]models.FormState{
	models.LegacyStateOpened:             models.FormStateOpened,
	models.LegacyStateResumed:            models.FormStateResumed,
	models.LegacyStatePartiallySubmitted: models.FormStatePartiallySubmitted,
	models.LegacyStateSubmitted:          models.FormStateSubmitted,
	models.LegacyStateApproved:           models.FormStateApproved,
	models.LegacyStateDeleted:            models.FormStateDeleted,
}

var dataTypeMap = [...]models.FieldDataType{
	models.LegacyDataString:     models.DataTypeString,
	models.LegacyDataLongString: models.DataTypeLongString,
	models.LegacyDataInteger:    models.DataTypeInteger,
	models.LegacyDataDateTime:   models.DataTypeDateTime,
	models.LegacyDataBit:        models.DataTypeBit,
}

var (
	_ = [1]struct{}{}[len(fieldIndicationMap)-int(models.LegacyFormFieldIndicationCount)]
	_ = [1]struct{}{}[len(actionTypeMap)-int(models.LegacyFieldConditionActionTypeCount)]
	_ = [1]struct{}{}[len(logicTypeMap)-int(models.LegacyFieldConditionLogicTypeCount)]
	_ = [1]struct{}{}[len(ruleOperatorMap)-int(models.LegacyFieldConditionRuleOperatorCount)]
	_ = [1]struct{}{}[len(formStateMap)-int(models.LegacyFormStateCount)]
	_ = [1]struct{}{}[len(dataTypeMap)-int(models.LegacyFieldDataTypeCount)]
)

func mapEnum[L ~int, N any](table []N, v L, name string) (N, error) {
	if int(v) < 0 || int(v) >= len(table) {
		var zero N
		return zero, fmt.Errorf("unknown legacy %s value %d", name, int(v))
	}
	return table[v], nil
}

func MapFieldIndication(v models.LegacyFormFieldIndication) (models.FormFieldIndication, error) {
	return mapEnum(fieldIndicationMap[:], v, "field indication")
}

func MapActionType(v models.LegacyFieldConditionActionType) (models.FieldConditionActionType, error) {
	return mapEnum(actionTypeMap[:], v, "condition action type")
}

func MapLogicType(v models.LegacyFieldConditionLogicType) (models.FieldConditionLogicType, error) {
	return mapEnum(logicTypeMap[:], v, "condition logic type")
}

func MapRuleOperator(v models.LegacyFieldConditionRuleOperator) (models.FieldConditionRuleOperator, error) {
	return mapEnum(ruleOperatorMap[:], v, "rule operator")
}

func MapFormState(v models.LegacyFormState) (models.FormState, error) {
	return mapEnum(formStateMap[:], v, "form state")
}

func MapDataType(v models.LegacyFieldDataType) (models.FieldDataType, error) {
	return mapEnum(dataTypeMap[:], v, "data type")
}
