package handler

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators installs custom binding validators on gin's validator
// engine. Safe to call more than once.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	// variation: single uppercase letter A-Z
	return v.RegisterValidation("variation", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return len(s) == 1 && s[0] >= 'A' && s[0] <= 'Z'
	})
}
