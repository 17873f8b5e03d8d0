// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// `Resolve` calls `validateStruct` once the pipeline has finished.  Field
// absence is never an error at this layer because every field has a default;
// the rules only reject values that cannot work, such as a port outside
// 1..65535 or an unknown log encoder.
package config

import "github.com/go-playground/validator/v10"

var v = validator.New()

// validateStruct returns the first validation error, or nil on success.
func validateStruct(c *Config) error {
	return v.Struct(c)
}
