// Package validation validates configuration structs using
// go-playground/validator struct tags (`validate:"required,oneof=auto cpu
// cuda"`). Validation failures are reported as errors.AppError values with
// per-field details so handlers can render them uniformly.
package validation
