package controller

import (
	"sheetroom-be/internal/dto"
	"sheetroom-be/internal/pkg/serverutils"
	"sheetroom-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IRoomController interface {
	RegisterRoutes(r fiber.Router)
	Transfer(ctx *fiber.Ctx) error
	PendingTransfers(ctx *fiber.Ctx) error
}

type roomController struct {
	service service.ITransferService
}

func NewRoomController(service service.ITransferService) IRoomController {
	return &roomController{service: service}
}

func (c *roomController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/rooms")
	h.Post("/transfer", c.Transfer)
	h.Get("/:roomId/pending-transfers", c.PendingTransfers)
}

func (c *roomController) Transfer(ctx *fiber.Ctx) error {
	var req dto.TransferRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Send(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success transfer cells", res))
}

func (c *roomController) PendingTransfers(ctx *fiber.Ctx) error {
	roomId := ctx.Params("roomId")

	res, err := c.service.DrainPending(ctx.Context(), roomId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get pending transfers", res))
}
