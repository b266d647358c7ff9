// file: internals/helpers/app_error.go
package helper

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"bimbelku_backend/internals/apperr"
)

// JsonAppError memetakan error bertipe dari service ke response HTTP.
// Service tidak tahu-menahu soal HTTP; mapping hanya terjadi di sini.
func JsonAppError(c *fiber.Ctx, err error) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		switch ae.Kind {
		case apperr.KindValidation:
			if len(ae.Fields) > 0 {
				return JsonValidationError(c, ae.Fields)
			}
			return JsonError(c, fiber.StatusBadRequest, ae.Message)
		case apperr.KindConflict:
			if ae.Entity != nil {
				return JsonErrorWithDetail(c, fiber.StatusConflict, ae.Message, ae.Entity)
			}
			return JsonError(c, fiber.StatusConflict, ae.Message)
		case apperr.KindNotFound:
			return JsonError(c, fiber.StatusNotFound, ae.Message)
		case apperr.KindInvalidState:
			return JsonError(c, fiber.StatusBadRequest, ae.Message)
		}
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return JsonError(c, fe.Code, fe.Message)
	}

	return JsonError(c, fiber.StatusInternalServerError, "Terjadi kesalahan pada server")
}

// ValidatorErrors meratakan validator.ValidationErrors ke map field → pesan.
func ValidatorErrors(err error) map[string][]string {
	out := map[string][]string{}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fieldErr := range ve {
			out[fieldErr.Field()] = append(out[fieldErr.Field()], fieldErr.Tag())
		}
	}
	return out
}
