package dto

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/otp"
)

// RegisterValidators adds the custom rules used by request DTOs and reports
// field names by their JSON key.
func RegisterValidators(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v.RegisterValidation("vnphone", validatePhone)
}

func validatePhone(fl validator.FieldLevel) bool {
	_, err := otp.NormalizePhone(fl.Field().String())
	return err == nil
}
