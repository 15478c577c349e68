// Package plugins provides the built-in typets plugins: enumerations,
// function signatures, framework models and plugins declared in
// configuration.
package plugins

import (
	"github.com/go-playground/validator/v10"

	"github.com/broady/typets"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateOptions checks an options struct and maps failures to the typets
// error envelope.
func validateOptions(opts any) error {
	if err := validate.Struct(opts); err != nil {
		return typets.AsError(err)
	}
	return nil
}

// Defaults returns the plugins every translator wants: enums in the default
// style, then functions and methods.
func Defaults() []typets.Plugin {
	return []typets.Plugin{&Enum{}, &Function{}}
}
