package common

import "github.com/go-playground/validator/v10"

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

var Validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// "max" counts runes; bcrypt limits bytes.
	_ = v.RegisterValidation("bcryptlen", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= MaxPasswordBytes
	})
	return v
}
