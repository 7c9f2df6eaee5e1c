package fiber

import (
	"net/http"

	"github.com/gofiber/fiber/v3"
	"github.com/lborres/quora/core"
)

const (
	codeInternal    = "GEN-001"
	messageInternal = "Something went wrong. Try again later"
)

// handleError renders coded errors as {code, message}. Anything else is
// logged and reported as a generic 500.
func (a *Adapter) handleError(c fiber.Ctx, err error) error {
	if coded, ok := core.AsError(err); ok {
		return c.Status(mapKindToStatus(coded.Kind)).JSON(core.ErrorResponse{
			Code:    coded.Code,
			Message: coded.Message,
		})
	}

	a.log.Error(c.Context(), "request failed",
		"method", c.Method(),
		"path", c.Path(),
		"error", err,
	)
	return c.Status(http.StatusInternalServerError).JSON(core.ErrorResponse{
		Code:    codeInternal,
		Message: messageInternal,
	})
}

func mapKindToStatus(kind core.Kind) int {
	switch kind {
	case core.KindAuthentication:
		return http.StatusUnauthorized
	case core.KindAuthorization:
		return http.StatusForbidden
	case core.KindConflict:
		return http.StatusConflict
	case core.KindNotFound:
		return http.StatusNotFound
	case core.KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
