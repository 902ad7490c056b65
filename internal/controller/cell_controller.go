package controller

import (
	"strconv"

	"sheetroom-be/internal/dto"
	"sheetroom-be/internal/pkg/serverutils"
	"sheetroom-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ICellController interface {
	RegisterRoutes(r fiber.Router)
	GetCells(ctx *fiber.Ctx) error
	GetCell(ctx *fiber.Ctx) error
	Upsert(ctx *fiber.Ctx) error
	UpsertBatch(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	GetHistory(ctx *fiber.Ctx) error
}

type cellController struct {
	service service.ICellService
}

func NewCellController(service service.ICellService) ICellController {
	return &cellController{service: service}
}

func (c *cellController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/worksheets/:worksheetId")
	h.Get("/cells", c.GetCells)
	h.Post("/cells", c.Upsert)
	h.Post("/cells/batch", c.UpsertBatch)
	h.Get("/cells/:row/:col", c.GetCell)
	h.Delete("/cells/:row/:col", c.Delete)
	h.Get("/history", c.GetHistory)
}

func (c *cellController) GetCells(ctx *fiber.Ctx) error {
	worksheetId, err := uuid.Parse(ctx.Params("worksheetId"))
	if err != nil {
		return serverutils.NewBadRequestError("invalid worksheet id")
	}

	// room_id narrows to one partition; absent means every partition,
	// including the unbound one.
	var roomId *string
	if ctx.Request().URI().QueryArgs().Has("room_id") {
		value := ctx.Query("room_id")
		roomId = &value
	}

	res, err := c.service.GetCells(ctx.Context(), worksheetId, roomId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get cells", res))
}

func (c *cellController) GetCell(ctx *fiber.Ctx) error {
	worksheetId, err := uuid.Parse(ctx.Params("worksheetId"))
	if err != nil {
		return serverutils.NewBadRequestError("invalid worksheet id")
	}
	row, err := strconv.Atoi(ctx.Params("row"))
	if err != nil || row < 0 {
		return serverutils.NewBadRequestError("invalid row index")
	}
	col, err := strconv.Atoi(ctx.Params("col"))
	if err != nil || col < 0 {
		return serverutils.NewBadRequestError("invalid col index")
	}

	var roomId *string
	if ctx.Request().URI().QueryArgs().Has("room_id") {
		value := ctx.Query("room_id")
		roomId = &value
	}

	res, err := c.service.GetCell(ctx.Context(), worksheetId, row, col, roomId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get cell", res))
}

func (c *cellController) Upsert(ctx *fiber.Ctx) error {
	worksheetId, err := uuid.Parse(ctx.Params("worksheetId"))
	if err != nil {
		return serverutils.NewBadRequestError("invalid worksheet id")
	}

	var req dto.UpsertCellRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.WorksheetId = worksheetId
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.service.Upsert(ctx.Context(), &req); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success upsert cell", nil))
}

func (c *cellController) UpsertBatch(ctx *fiber.Ctx) error {
	worksheetId, err := uuid.Parse(ctx.Params("worksheetId"))
	if err != nil {
		return serverutils.NewBadRequestError("invalid worksheet id")
	}

	var req dto.UpsertCellsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.WorksheetId = worksheetId
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.service.UpsertBatch(ctx.Context(), &req); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success upsert cells", nil))
}

func (c *cellController) Delete(ctx *fiber.Ctx) error {
	worksheetId, err := uuid.Parse(ctx.Params("worksheetId"))
	if err != nil {
		return serverutils.NewBadRequestError("invalid worksheet id")
	}
	row, err := strconv.Atoi(ctx.Params("row"))
	if err != nil || row < 0 {
		return serverutils.NewBadRequestError("invalid row index")
	}
	col, err := strconv.Atoi(ctx.Params("col"))
	if err != nil || col < 0 {
		return serverutils.NewBadRequestError("invalid col index")
	}

	res, err := c.service.Delete(ctx.Context(), worksheetId, row, col)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success delete cell", res))
}

func (c *cellController) GetHistory(ctx *fiber.Ctx) error {
	worksheetId, err := uuid.Parse(ctx.Params("worksheetId"))
	if err != nil {
		return serverutils.NewBadRequestError("invalid worksheet id")
	}

	limit := ctx.QueryInt("limit", 0)
	if limit < 0 {
		limit = 0
	}

	res, err := c.service.GetHistory(ctx.Context(), worksheetId, limit)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get change history", res))
}
