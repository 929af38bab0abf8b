package validate

import (
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const TagPrice = "price"

// New returns a validator that understands decimal.Decimal fields tagged
// with `price`. It panics when the tag cannot be registered.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterCustomTypeFunc(PriceValue, decimal.Decimal{})
	if err := v.RegisterValidation(TagPrice, ValidatePrice); err != nil {
		panic(fmt.Errorf("failed registering validation tag=%s with error=%w", TagPrice, err))
	}
	return v
}

// ValidatePrice accepts a non-negative decimal string.
func ValidatePrice(fl validator.FieldLevel) bool {
	value, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return false
	}
	return !d.IsNegative()
}

func PriceValue(v reflect.Value) interface{} {
	n, ok := v.Interface().(decimal.Decimal)
	if !ok {
		return nil
	}
	return n.String()
}
