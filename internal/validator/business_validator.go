package validator

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the wire layout of calendar dates.
const DateLayout = "2006-01-02"

// registerBusinessRules registers the custom tags used by serializers
func (v *Validator) registerBusinessRules() {
	// calendar_date: a YYYY-MM-DD string
	_ = v.validate.RegisterValidation("calendar_date", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(DateLayout, fl.Field().String())
		return err == nil
	})
}
