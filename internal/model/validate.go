package model

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	if err := RegisterValidations(v); err != nil {
		panic(err)
	}
	return v
}

// RegisterValidations adds the hhmm, ymd and weekday tags to v. The HTTP layer
// registers them on gin's engine so binding and Validate agree.
func RegisterValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		_, err := ParseClock(fl.Field().String())
		return err == nil
	}); err != nil {
		return err
	}
	if err := v.RegisterValidation("ymd", func(fl validator.FieldLevel) bool {
		_, err := ParseDate(fl.Field().String(), nil)
		return err == nil
	}); err != nil {
		return err
	}
	return v.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
		return Day(fl.Field().String()).Valid()
	})
}

// Validate checks the binding tags of in.
func Validate(in any) error {
	if err := validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}
