package ledger

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/mmynk/tripledger/internal/apperr"
	"github.com/mmynk/tripledger/internal/models"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Decimals compare as numbers for gt/lt tags.
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return models.Category(fl.Field().String()).Valid()
	}); err != nil {
		panic(err)
	}

	return v
}

func categoryNames() string {
	names := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

// check validates input and reports the first failing field.
func (e *Engine) check(input any) error {
	err := e.validate.Struct(input)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return e.reject(reasonField, apperr.Validation("invalid request: %v", err))
	}

	fe := verrs[0]
	field := fe.Field()

	var verr *apperr.Error
	switch fe.Tag() {
	case "required":
		verr = apperr.Validation("%s is required", field)
	case "gt":
		verr = apperr.Validation("%s must be greater than 0", field)
	case "max":
		verr = apperr.Validation("%s must be at most %s characters", field, fe.Param())
	case "category":
		verr = apperr.Validation("%s must be one of: %s", field, categoryNames())
	case "datetime":
		verr = apperr.Validation("%s must be a calendar date in YYYY-MM-DD format", field)
	case "iso4217":
		verr = apperr.Validation("%s must be an ISO 4217 currency code", field)
	default:
		verr = apperr.Validation("%s failed %s validation", field, fe.Tag())
	}
	return e.reject(reasonField, verr)
}
