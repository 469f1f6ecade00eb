// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// yearMonthRegex matches the "2006-01" bucketing key format.
var yearMonthRegex = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("transaction_type", validateTransactionType)
		_ = v.RegisterValidation("category_kind", validateCategoryKind)
		_ = v.RegisterValidation("year_month", validateYearMonth)
	}
}

// validateTransactionType checks that a field is a valid transaction type.
func validateTransactionType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "INCOME", "EXPENSE":
		return true
	}
	return false
}

// validateCategoryKind checks that a field is a valid category kind.
func validateCategoryKind(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "STANDARD", "CUSTOM":
		return true
	}
	return false
}

// validateYearMonth checks that a field is a year-month key such as "2024-05".
func validateYearMonth(fl validator.FieldLevel) bool {
	return yearMonthRegex.MatchString(fl.Field().String())
}
