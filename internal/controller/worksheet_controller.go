package controller

import (
	"sheetroom-be/internal/dto"
	"sheetroom-be/internal/pkg/serverutils"
	"sheetroom-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IWorksheetController interface {
	RegisterRoutes(r fiber.Router)
	GetAll(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type worksheetController struct {
	service service.IWorksheetService
}

func NewWorksheetController(service service.IWorksheetService) IWorksheetController {
	return &worksheetController{service: service}
}

func (c *worksheetController) RegisterRoutes(r fiber.Router) {
	r.Get("/workbooks/:workbookId/worksheets", c.GetAll)
	r.Post("/workbooks/:workbookId/worksheets", c.Create)
	r.Get("/worksheets/:id", c.Show)
	r.Delete("/worksheets/:id", c.Delete)
}

func (c *worksheetController) GetAll(ctx *fiber.Ctx) error {
	workbookId, err := uuid.Parse(ctx.Params("workbookId"))
	if err != nil {
		return serverutils.NewBadRequestError("invalid workbook id")
	}

	res, err := c.service.GetAll(ctx.Context(), workbookId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get all worksheets", res))
}

func (c *worksheetController) Create(ctx *fiber.Ctx) error {
	workbookId, err := uuid.Parse(ctx.Params("workbookId"))
	if err != nil {
		return serverutils.NewBadRequestError("invalid workbook id")
	}

	var req dto.CreateWorksheetRequest
	// Default: append at the end unless the body pins an index.
	req.SheetIndex = -1
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.WorkbookId = workbookId
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Create(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create worksheet", res))
}

func (c *worksheetController) Show(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return serverutils.NewBadRequestError("invalid worksheet id")
	}

	res, err := c.service.Show(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get worksheet", res))
}

func (c *worksheetController) Delete(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return serverutils.NewBadRequestError("invalid worksheet id")
	}

	if err := c.service.Delete(ctx.Context(), id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete worksheet", nil))
}
