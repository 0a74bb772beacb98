package etl

import (
	"testing"

	"github.com/BartekS5/ufmigrate/pkg/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func formWith(containers ...*models.FieldsetContainer) *models.Form {
	return &models.Form{
		ID: uuid.New(),
		Pages: []*models.Page{{
			FieldSets: []*models.FieldSet{{ID: uuid.New(), Containers: containers}},
		}},
	}
}

func TestValidateForm_Valid(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	form := formWith(&models.FieldsetContainer{Width: 12, Fields: []*models.Field{
		{ID: a},
		{ID: b, Condition: &models.FieldCondition{Rules: []*models.FieldConditionRule{{Field: a}}}},
	}})

	warnings, err := NewValidator().ValidateForm(form)
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestValidateForm_ContainerLayoutErrors(t *testing.T) {
	_, err := NewValidator().ValidateForm(formWith())
	assert.ErrorContains(t, err, "0 containers")

	_, err = NewValidator().ValidateForm(formWith(&models.FieldsetContainer{Width: 6}))
	assert.ErrorContains(t, err, "width 6")

	_, err = NewValidator().ValidateForm(formWith(
		&models.FieldsetContainer{Width: 12},
		&models.FieldsetContainer{Width: 12},
	))
	assert.ErrorContains(t, err, "2 containers")
}

func TestValidateForm_Warnings(t *testing.T) {
	a := uuid.New()
	form := formWith(&models.FieldsetContainer{Width: 12, Fields: []*models.Field{
		{ID: a},
		{ID: a, Condition: &models.FieldCondition{Rules: []*models.FieldConditionRule{{Field: uuid.New()}}}},
	}})

	warnings, err := NewValidator().ValidateForm(form)
	require.NoError(t, err)
	assert.Len(t, warnings, 2)
}
