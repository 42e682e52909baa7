package serverutils

import (
	"github.com/Wollie333/vilo-sub013/internal/pkg/apperrors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest runs the struct validation tags on a request DTO and maps
// failures onto the validation error kind so the error handler returns 422.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		return apperrors.Validation("invalid request: %v", err)
	}
	return nil
}
