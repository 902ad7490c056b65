package controller

import (
	"sheetroom-be/internal/dto"
	"sheetroom-be/internal/pkg/serverutils"
	"sheetroom-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IWorkbookController interface {
	RegisterRoutes(r fiber.Router)
	GetAll(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	GrantPermission(ctx *fiber.Ctx) error
	GetPermissions(ctx *fiber.Ctx) error
}

type workbookController struct {
	service service.IWorkbookService
}

func NewWorkbookController(service service.IWorkbookService) IWorkbookController {
	return &workbookController{service: service}
}

func (c *workbookController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/workbooks")
	h.Get("", c.GetAll)
	h.Post("", c.Create)
	h.Get(":id", c.Show)
	h.Put(":id", c.Update)
	h.Delete(":id", c.Delete)
	h.Get(":id/permissions", c.GetPermissions)
	h.Post(":id/permissions", c.GrantPermission)
}

func (c *workbookController) GetAll(ctx *fiber.Ctx) error {
	res, err := c.service.GetAll(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get all workbooks", res))
}

func (c *workbookController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateWorkbookRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Create(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create workbook", res))
}

func (c *workbookController) Show(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return serverutils.NewBadRequestError("invalid workbook id")
	}

	res, err := c.service.Show(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get workbook", res))
}

func (c *workbookController) Update(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return serverutils.NewBadRequestError("invalid workbook id")
	}

	var req dto.UpdateWorkbookRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.Id = id
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Update(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success update workbook", res))
}

func (c *workbookController) Delete(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return serverutils.NewBadRequestError("invalid workbook id")
	}

	if err := c.service.Delete(ctx.Context(), id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete workbook", nil))
}

func (c *workbookController) GrantPermission(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return serverutils.NewBadRequestError("invalid workbook id")
	}

	var req dto.GrantPermissionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.WorkbookId = id
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.service.GrantPermission(ctx.Context(), &req); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success grant permission", nil))
}

func (c *workbookController) GetPermissions(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return serverutils.NewBadRequestError("invalid workbook id")
	}

	res, err := c.service.GetPermissions(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get permissions", res))
}
