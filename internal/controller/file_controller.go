package controller

import (
	"quantcloud-be/internal/dto"
	"quantcloud-be/internal/pkg/serverutils"
	"quantcloud-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IFileController interface {
	RegisterRoutes(r fiber.Router)
	Register(ctx *fiber.Ctx) error
	Finalize(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	MarkExpiring(ctx *fiber.Ctx) error
	IssueToken(ctx *fiber.Ctx) error
	RevokeToken(ctx *fiber.Ctx) error
}

type fileController struct {
	fileService  service.IFileService
	tokenService service.ITokenService
}

func NewFileController(fileService service.IFileService, tokenService service.ITokenService) IFileController {
	return &fileController{
		fileService:  fileService,
		tokenService: tokenService,
	}
}

func (c *fileController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/file/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Register)
	h.Get("", c.List)
	h.Get(":id", c.Show)
	h.Delete(":id", c.Delete)
	h.Post(":id/finalize", c.Finalize)
	h.Put(":id/expiry", c.MarkExpiring)
	h.Post(":id/token", c.IssueToken)
	h.Delete(":id/token", c.RevokeToken)
}

func (c *fileController) Register(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	var req dto.RegisterFileRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.fileService.Register(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("File registered", res))
}

func (c *fileController) Finalize(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return dto.ErrNotFound
	}

	var req dto.FinalizeFileRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.fileService.Finalize(ctx.Context(), userId, id, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("File finalized", res))
}

func (c *fileController) List(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	limit := ctx.QueryInt("limit", 50)
	offset := ctx.QueryInt("offset", 0)

	res, err := c.fileService.List(ctx.Context(), userId, limit, offset)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *fileController) Show(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return dto.ErrNotFound
	}

	res, err := c.fileService.Show(ctx.Context(), userId, id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *fileController) Delete(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return dto.ErrNotFound
	}

	if err := c.fileService.Delete(ctx.Context(), userId, id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("File deleted", nil))
}

func (c *fileController) MarkExpiring(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return dto.ErrNotFound
	}

	var req dto.MarkExpiringRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.fileService.MarkExpiring(ctx.Context(), userId, id, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Expiry updated", res))
}

func (c *fileController) IssueToken(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return dto.ErrNotFound
	}

	var req dto.IssueTokenRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.tokenService.Issue(ctx.Context(), userId, id, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Token issued", res))
}

func (c *fileController) RevokeToken(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return dto.ErrNotFound
	}

	if err := c.tokenService.Revoke(ctx.Context(), userId, id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Token revoked", nil))
}
