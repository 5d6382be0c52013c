package controller

import (
	"quantcloud-be/internal/dto"
	"quantcloud-be/internal/pkg/serverutils"
	"quantcloud-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IJobController interface {
	RegisterRoutes(r fiber.Router)
	Submit(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Report(ctx *fiber.Ctx) error
	Cancel(ctx *fiber.Ctx) error
	Resubmit(ctx *fiber.Ctx) error
	Estimate(ctx *fiber.Ctx) error
}

type jobController struct {
	jobService service.IJobService
}

func NewJobController(jobService service.IJobService) IJobController {
	return &jobController{
		jobService: jobService,
	}
}

func (c *jobController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/job/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Submit)
	h.Get("", c.List)
	h.Get("stats", c.Stats)
	h.Get("estimate", c.Estimate)
	h.Get(":id", c.Show)
	h.Get(":id/report", c.Report)
	h.Post(":id/cancel", c.Cancel)
	h.Post(":id/resubmit", c.Resubmit)
}

// currentUserId reads the id the auth middleware validated and stored.
func currentUserId(ctx *fiber.Ctx) uuid.UUID {
	userId, _ := ctx.Locals("user_id").(uuid.UUID)
	return userId
}

func (c *jobController) Submit(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	var req dto.SubmitJobRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.jobService.Submit(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Job submitted", res))
}

func (c *jobController) List(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	status := ctx.Query("status")
	limit := ctx.QueryInt("limit", 50)
	offset := ctx.QueryInt("offset", 0)

	res, err := c.jobService.List(ctx.Context(), userId, status, limit, offset)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *jobController) Stats(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	res, err := c.jobService.Stats(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *jobController) Show(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return dto.ErrNotFound
	}

	res, err := c.jobService.Show(ctx.Context(), userId, id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *jobController) Report(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return dto.ErrNotFound
	}

	res, err := c.jobService.GetReport(ctx.Context(), userId, id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *jobController) Cancel(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return dto.ErrNotFound
	}

	res, err := c.jobService.Cancel(ctx.Context(), userId, id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Job cancelled", res))
}

func (c *jobController) Resubmit(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return dto.ErrNotFound
	}

	var req dto.ResubmitJobRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.jobService.Resubmit(ctx.Context(), userId, id, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Job resubmitted", res))
}

func (c *jobController) Estimate(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	fileId, err := uuid.Parse(ctx.Query("file_id"))
	if err != nil {
		return dto.ErrNotFound
	}
	method := ctx.Query("method")

	res, err := c.jobService.EstimateCost(ctx.Context(), userId, fileId, method)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}
