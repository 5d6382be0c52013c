package controller

import (
	"quantcloud-be/internal/dto"
	"quantcloud-be/internal/pkg/serverutils"
	"quantcloud-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IBillingController interface {
	RegisterRoutes(r fiber.Router)
	Balance(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	ChangePlan(ctx *fiber.Ctx) error
}

type billingController struct {
	ledgerService service.ILedgerService
}

func NewBillingController(ledgerService service.ILedgerService) IBillingController {
	return &billingController{
		ledgerService: ledgerService,
	}
}

func (c *billingController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/billing/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("balance", c.Balance)
	h.Get("history", c.History)
	h.Put("plan", c.ChangePlan)
}

func (c *billingController) Balance(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	res, err := c.ledgerService.GetBalance(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *billingController) History(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	limit := ctx.QueryInt("limit", 50)
	offset := ctx.QueryInt("offset", 0)

	res, err := c.ledgerService.GetHistory(ctx.Context(), userId, limit, offset)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *billingController) ChangePlan(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	var req dto.ChangePlanRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.ledgerService.ChangePlan(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Plan changed", res))
}
