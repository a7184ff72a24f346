package controller

import (
	"docai-platform-be/internal/dto"
	"docai-platform-be/internal/pkg/serverutils"
	"docai-platform-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IVersionController interface {
	RegisterRoutes(r fiber.Router)
	History(ctx *fiber.Ctx) error
	Diff(ctx *fiber.Ctx) error
	ManualLink(ctx *fiber.Ctx) error
	UpdateStatus(ctx *fiber.Ctx) error
}

type versionController struct {
	versionService service.IVersionService
}

func NewVersionController(versionService service.IVersionService) IVersionController {
	return &versionController{
		versionService: versionService,
	}
}

func (c *versionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/version/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("diff", c.Diff)
	h.Get(":id/history", c.History)
	h.Post(":id/link", c.ManualLink)
	h.Patch(":id/status", c.UpdateStatus)
}

func (c *versionController) History(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid document id")
	}

	res, err := c.versionService.History(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show version history", res))
}

func (c *versionController) Diff(ctx *fiber.Ctx) error {
	var req dto.ComputeDiffRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.versionService.Diff(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success compute version diff", res))
}

func (c *versionController) ManualLink(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid document id")
	}

	var req dto.ManualLinkRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.versionService.ManualLink(ctx.Context(), id, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success link versions", res))
}

func (c *versionController) UpdateStatus(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid document id")
	}

	var req dto.UpdateStatusRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.versionService.UpdateStatus(ctx.Context(), id, &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success update version status", nil))
}
