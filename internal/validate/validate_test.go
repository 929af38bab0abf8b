package validate

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type priced struct {
	Name  string          `validate:"required"`
	Price decimal.Decimal `validate:"price"`
}

func TestNew(t *testing.T) {
	assert.NotPanics(t, func() {
		v := New()
		err := v.Var(decimal.NewFromInt(-1), TagPrice)
		assert.Error(t, err)
	})
}

func TestValidatePrice(t *testing.T) {
	v := New()
	tests := []struct {
		name    string
		input   priced
		wantErr bool
	}{
		{name: "positive price", input: priced{Name: "a", Price: decimal.RequireFromString("12.50")}},
		{name: "zero price", input: priced{Name: "a", Price: decimal.Zero}},
		{name: "negative price", input: priced{Name: "a", Price: decimal.NewFromInt(-1)}, wantErr: true},
		{name: "missing name", input: priced{Price: decimal.NewFromInt(1)}, wantErr: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := v.Struct(test.input)
			if test.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
