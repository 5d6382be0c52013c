package controller

import (
	"quantcloud-be/internal/pkg/serverutils"
	"quantcloud-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

// The redeem route is unauthenticated on purpose: the token string is
// the whole capability.
type IDownloadController interface {
	RegisterRoutes(r fiber.Router)
	Redeem(ctx *fiber.Ctx) error
}

type downloadController struct {
	tokenService service.ITokenService
}

func NewDownloadController(tokenService service.ITokenService) IDownloadController {
	return &downloadController{
		tokenService: tokenService,
	}
}

func (c *downloadController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/download/v1")
	h.Get(":token", c.Redeem)
}

func (c *downloadController) Redeem(ctx *fiber.Ctx) error {
	res, err := c.tokenService.Redeem(ctx.Context(), ctx.Params("token"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}
