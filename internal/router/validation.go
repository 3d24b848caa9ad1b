package router

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/medisuite/hms-api/internal/accesscontrol"
)

// registerValidations installs custom binding validations on gin's
// validator engine. `role` checks a field against the role table.
func registerValidations() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return accesscontrol.Valid(fl.Field().String())
	})
}
