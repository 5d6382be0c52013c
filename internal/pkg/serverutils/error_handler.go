package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"quantcloud-be/internal/dto"
	"quantcloud-be/internal/entity"
)

// ErrorHandlerMiddleware lets controllers return domain errors directly
// and converts them to JSON responses on the way out.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if err := ctx.Next(); err != nil {
			return ErrorHandler(ctx, err)
		}
		return nil
	}
}

// ErrorHandler maps domain errors to HTTP status codes so controllers can
// simply return them.
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Message, nil))
	}

	var insufficient *dto.InsufficientCreditError
	if errors.As(err, &insufficient) {
		return ctx.Status(fiber.StatusPaymentRequired).JSON(ErrorResponse(insufficient.Error(), insufficient))
	}

	var combo *dto.InvalidCombinationError
	if errors.As(err, &combo) {
		return ctx.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse(combo.Error(), combo))
	}

	var integrity *dto.IntegrityError
	if errors.As(err, &integrity) {
		return ctx.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse(integrity.Error(), nil))
	}

	var transition *entity.InvalidTransitionError
	if errors.As(err, &transition) {
		return ctx.Status(fiber.StatusConflict).JSON(ErrorResponse(transition.Error(), nil))
	}

	switch {
	case errors.Is(err, dto.ErrNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(ErrorResponse("not found", nil))
	case errors.Is(err, dto.ErrForbidden):
		return ctx.Status(fiber.StatusForbidden).JSON(ErrorResponse("forbidden", nil))
	case errors.Is(err, dto.ErrTokenInvalid):
		return ctx.Status(fiber.StatusNotFound).JSON(ErrorResponse(dto.ErrTokenInvalid.Error(), nil))
	}

	return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse("internal server error", nil))
}
