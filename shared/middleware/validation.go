package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

// MaxFractionDigits is the precision of every monetary amount: cents.
const MaxFractionDigits = 2

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

type ValidationErrorResponse struct {
	Detail string            `json:"detail"`
	Errors []ValidationError `json:"errors"`
}

func ValidateRequest(obj any) []ValidationError {
	var validationErrors []ValidationError

	err := validate.Struct(obj)
	if err == nil {
		return nil
	}

	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return []ValidationError{{Field: "", Message: err.Error(), Type: "invalid"}}
	}
	for _, err := range fieldErrors {
		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: getErrorMsg(err),
			Type:    err.Tag(),
		})
	}

	return validationErrors
}

// ValidateAmount checks a monetary value: at most two fractional digits and,
// when positive is set, strictly greater than zero.
func ValidateAmount(field string, amount decimal.Decimal, positive bool) *ValidationError {
	if positive && !amount.IsPositive() {
		return &ValidationError{Field: field, Message: "Value must be greater than 0", Type: "gt"}
	}
	if amount.Exponent() < -MaxFractionDigits && !amount.Equal(amount.Truncate(MaxFractionDigits)) {
		return &ValidationError{Field: field, Message: "Value must have at most two decimal places", Type: "cents"}
	}
	return nil
}

func getErrorMsg(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "This field is required"
	case "min":
		return "Value is too short"
	case "max":
		return "Value is too long"
	case "alphanum":
		return "Only letters and digits are allowed"
	case "gt":
		return "Value must be greater than " + err.Param()
	case "gte":
		return "Value must be greater than or equal to " + err.Param()
	default:
		return "Invalid value"
	}
}

func RespondWithValidationError(c *gin.Context, validationErrors []ValidationError) {
	c.JSON(http.StatusUnprocessableEntity, ValidationErrorResponse{
		Detail: "Invalid request data",
		Errors: validationErrors,
	})
}

func RespondWithError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{
		"detail": message,
	})
}

func RespondWithResult(c *gin.Context, code int, result any) {
	c.JSON(code, gin.H{
		"response": result,
	})
}
