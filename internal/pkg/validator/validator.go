package validator

import (
	"regexp"

	"github.com/go-playground/validator/v10"

	"marketadmin/internal/domain"
)

var validate *validator.Validate

var phonePattern = regexp.MustCompile(`^\+?[0-9\-().\s]{7,32}$`)

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		v := fl.Field().String()
		return v == "" || phonePattern.MatchString(v)
	})
	_ = validate.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		v := fl.Field().String()
		return v == "" || domain.Role(v).Valid()
	})
}

// Validate struct fields
func Validate(v interface{}) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"_": err.Error()}
	}

	errors := make(map[string]string)
	for _, err := range verrs {
		errors[err.Field()] = err.Tag()
	}
	return errors
}
