// Package validation plugs go-playground/validator into echo's
// Validator hook and registers the ride-domain tag aliases the request
// DTOs share.
package validation

import (
	"github.com/go-playground/validator/v10"
)

type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New()
	// every endpoint that takes a ride kind validates against the same
	// enum; the alias keeps the list in one place
	v.RegisterAlias("ridekind", "oneof=motor mobil barang titip")
	return &Validator{v: v}
}

func (v *Validator) Validate(i interface{}) error {
	return v.v.Struct(i)
}
