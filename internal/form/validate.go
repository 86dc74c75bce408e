package form

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/utilitycover/debitnote/pkg/models"
)

// FieldError describes one field that is not ready for submission.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func recordValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		// Report JSON field names, which are also the form input names.
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("insurance_type", func(fl validator.FieldLevel) bool {
			return models.InsuranceType(fl.Field().String()).Valid()
		})
		validate = v
	})
	return validate
}

// Validate reports the fields that keep rec from being submitted. An empty
// result means the submit control may be enabled. Validation never alters
// the record.
func Validate(rec models.PolicyRecord) []FieldError {
	err := recordValidator().Struct(rec)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "", Rule: "invalid", Message: err.Error()}}
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: describe(fe),
		})
	}
	return out
}

// Ready reports whether rec passes Validate.
func Ready(rec models.PolicyRecord) bool {
	return len(Validate(rec)) == 0
}

func describe(fe validator.FieldError) string {
	label := strings.ReplaceAll(fe.Field(), "_", " ")
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", label, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must not be negative", label)
	case "insurance_type":
		return fmt.Sprintf("%s must be one of comprehensive, third_party, third_party_fire_theft", label)
	}
	return fmt.Sprintf("%s failed %s", label, fe.Tag())
}
