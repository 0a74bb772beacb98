package etl

import (
	"fmt"

	"github.com/BartekS5/ufmigrate/pkg/models"
	"github.com/google/uuid"
)

type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// ValidateForm checks a mapped form before it is written. A broken
// container layout is an error; the returned warnings are not.
func (v *Validator) ValidateForm(form *models.Form) (warnings []string, err error) {
	seen := make(map[uuid.UUID]bool)
	for _, p := range form.Pages {
		for _, fs := range p.FieldSets {
			if len(fs.Containers) != 1 {
				return nil, fmt.Errorf("fieldset %s has %d containers, expected 1", fs.ID, len(fs.Containers))
			}
			if w := fs.Containers[0].Width; w != models.FullWidth {
				return nil, fmt.Errorf("fieldset %s container has width %d, expected %d", fs.ID, w, models.FullWidth)
			}
			for _, f := range fs.Containers[0].Fields {
				if seen[f.ID] {
					warnings = append(warnings, fmt.Sprintf("field %s appears more than once", f.ID))
				}
				seen[f.ID] = true
			}
		}
	}

	for _, f := range form.Fields() {
		if f.Condition == nil {
			continue
		}
		for _, r := range f.Condition.Rules {
			if !seen[r.Field] {
				warnings = append(warnings, fmt.Sprintf("field %s has a condition rule on unknown field %s", f.ID, r.Field))
			}
		}
	}
	return warnings, nil
}
